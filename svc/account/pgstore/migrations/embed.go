// Package migrations embeds the SQL schema of the Postgres account store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
