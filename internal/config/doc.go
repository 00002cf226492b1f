// Package config loads, normalizes, and validates overloader configuration data.
//
// It supplies repository defaults, reads TOML files, and honours environment
// fallbacks such as HEVY_API_KEY, WEBHOOK_TOKEN, PORT and GEMINI_API_KEY so the
// service can run from a bare environment without any file at all. The Config
// type centralizes every knob the daemon and CLI need.
//
// Always obtain settings through this package so downstream code receives
// trimmed credentials, canonical log formats, and clear validation errors.
package config
