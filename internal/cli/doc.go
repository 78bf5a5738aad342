// Package cli wires together the Cobra command tree for the promptmd binary.
//
// It defines the root command and all subcommands (parse, list, outline,
// check, run, serve, config, models, cache, hook, version), binds flags, loads
// configuration and returns deterministic exit codes for CI gating:
// 0 success, 1 check warnings under --strict, 2 usage, 3 auth, 4 runtime.
package cli
