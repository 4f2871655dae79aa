// Package config loads, normalizes, and validates btroute configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: which profile groups are enabled, arbitration tuning,
// the BlueZ and wired-jack monitors, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
