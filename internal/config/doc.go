// Package config loads, normalizes, and validates launcher configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives values other sections depend on,
// such as the replay directory danser watches. One section exists per managed
// application, each carrying the enablement flag, install path, executable
// name, and optional public download URL.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
