// Package config loads, normalizes, and validates ripfeed configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the RIPFEED_OPTICAL_DRIVE
// environment fallback. The Config type centralizes every knob the reader,
// the pipeline and the CLI need: state, log and output directories, queue
// capacities, the polling interval used for queues without a blocking push,
// and scan persistence.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
