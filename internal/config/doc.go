// Package config loads and validates the bello configuration file.
//
// Configuration is TOML, resolved from an explicit path, then
// ~/.config/bello/config.toml, then ./bello.toml. All path fields are
// expanded (~ resolution) and normalized to absolute paths at load time.
package config
