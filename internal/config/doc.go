// Package config loads and validates the server's settings from defaults,
// an optional config.yaml, and RELAY_-prefixed environment variables, in
// increasing order of precedence.
package config
