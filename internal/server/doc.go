// Package server exposes prompt parsing over HTTP.
//
// Routes:
//
//	GET  /health          liveness
//	POST /api/parse       body is a prompt document; returns the resolved config
//	GET  /api/files       prompt files discovered under the root
//	GET  /api/files/{p}   resolved config for one file under the root
//	GET  /api/check/{p}   check warnings for one file under the root
//
// The parse routes accept ?levels=#,## to override the heading levels.
// Paths are confined to the configured root. Errors are JSON objects of the
// form {"error": "..."}.
package server
