// Package config loads typed configuration from environment variables.
//
// Each concern owns its config struct tagged for caarlos0/env; Load fills it,
// reading a .env file first when one is present. Successfully parsed values are
// cached per type, so packages may call Load for the same struct repeatedly
// without re-reading the environment.
//
//	var cfg httpserver.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
package config
