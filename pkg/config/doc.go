// Package config defines the saturn configuration structure and its
// loading pipeline: YAML file, then defaults, then SATURN_* environment
// overrides, then validation. Every command runs with a valid Config;
// a missing file falls back to pure defaults.
package config
