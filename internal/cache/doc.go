// Package cache provides a file-based cache for prompt run responses.
//
// Cache entries are keyed by a SHA-256 hash of the provider name, model, and
// the serialized chat request (after placeholder rendering and secret
// redaction). Each entry stores the response text, token usage, a creation
// timestamp and a TTL in seconds. Expired entries are skipped on read and
// removed during cache-clear operations.
//
// The default cache directory is $XDG_CACHE_HOME/promptmd (or the
// OS-appropriate equivalent).
package cache
