// Package metrics exposes Prometheus collectors for the HTTP layer, account
// lifecycle operations, notification delivery and rate limiting.
//
// Collectors are registered on a private registry so tests can build as many
// instances as they need. Handler serves that registry plus the Go runtime
// and process collectors.
package metrics
