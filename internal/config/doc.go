// Package config loads, normalizes, and validates the imagesieve TOML
// configuration. Defaults live in defaults.go and the embedded
// sample_config.toml documents every knob.
package config
