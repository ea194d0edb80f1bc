// Package config loads, normalizes, and validates isccd configuration data.
//
// It supplies repository defaults, overlays OMERO_ISCC_* environment
// variables, reads TOML files, and expands user paths (including tilde
// shortcuts). Command-line flags are applied on top by the CLI, giving the
// precedence flags > file > environment > defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
