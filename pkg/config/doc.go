// Package config loads the daemon's YAML configuration. Every field is
// optional; Load fills defaults and validates, and a missing file is
// the same as an empty one.
package config
