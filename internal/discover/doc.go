// Package discover finds prompt files beneath a project root.
//
// Inside a git work tree the file list comes from `git ls-files`, which
// honours .gitignore. Outside one, or when gitignore handling is disabled,
// the directory tree is walked. Either way .git and node_modules are
// skipped and the extension, include and exclude filters are applied to
// root-relative slash paths.
package discover
