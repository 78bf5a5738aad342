// Package config loads and merges promptmd configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PROMPTMD_PROVIDER, PROMPTMD_MODEL, PROMPTMD_FORMAT, etc.)
//  3. Project file (promptmd.config.json, .yaml or .yml in the project root)
//  4. Global file ($XDG_CONFIG_HOME/promptmd/config.json)
//  5. Built-in defaults
//
// The merged [Config] supplies the user-level defaults that every prompt file
// falls back to via [Config.UserConfig].
package config
