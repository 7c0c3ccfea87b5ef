// Package config handles configuration management for winify.
//
// Configuration is layered with koanf, later layers overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/winify/config.toml or --config
//  3. WINIFY_* environment variables, with "__" separating sections
//     (WINIFY_EXTENSION__RETRY_WAIT=5s sets extension.retry_wait)
//  4. command-line overrides
//
// The merged tree is decoded into Config and validated before use.
package config
