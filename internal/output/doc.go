// Package output formats prompt parse and check results for display or
// machine consumption.
//
// Five formats are supported:
//   - text     - human-readable terminal output (default)
//   - json     - array of results
//   - yaml     - the same structure as YAML
//   - markdown - canonical prompt documents that re-parse to the same config
//   - sarif    - SARIF v2.1.0 of check warnings, for CI code-scanning upload
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteResults] to write to a file or stdout in one step.
package output
