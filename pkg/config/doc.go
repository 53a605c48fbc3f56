// Package config loads typed configuration for basepack services.
//
// Load reads environment variables (optionally seeded from a .env file) into
// structs tagged for github.com/caarlos0/env. LoadFile decodes YAML files
// with gopkg.in/yaml.v3 for setups that keep provider chains in a file.
package config
