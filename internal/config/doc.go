// Package config handles configuration loading and validation.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then FINBATCH_* environment variables, then command-line flags merged on
// top. The auth token is deliberately excluded from the file layer and is
// only picked up from the environment or flags.
package config
