// Package logging constructs the zap logger shared by promptmd commands.
//
// Logs are written to stderr. The default level is warn (info for serve); --verbose enables
// debug output. Set PROMPTMD_LOG_FORMAT=json for machine-readable logs.
package logging
