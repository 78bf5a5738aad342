// Package redact scrubs secret-looking strings from prompt text before it
// is sent to a model provider or written to the response cache.
//
// Detection is heuristic: a fixed list of regular expressions covers API
// keys, bearer tokens, JWTs, private key headers and quoted credential
// assignments. Matches are replaced with "[REDACTED]".
package redact
