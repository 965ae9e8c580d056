// Package config loads, normalizes, and validates gamedex configuration data.
//
// It supplies repository defaults rooted in the XDG base directories, expands
// user paths (including tilde shortcuts), and reads TOML files. The Config
// type centralizes every knob the CLI and library engine need: data and image
// directories, catalog scraper timing, provider selection, and external API
// credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
