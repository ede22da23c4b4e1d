// Package config defines the application's typed configuration and loads it
// from environment variables (with optional .env bootstrap) via viper.
package config
