// Package config loads, normalizes, and validates freestyle configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SUPABASE_URL and NTFY_TOPIC. The Config type is the single place every
// component reads its directories, timeouts, and mastering targets from, so
// no package computes paths of its own.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
