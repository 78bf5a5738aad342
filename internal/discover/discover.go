package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls which prompt files are discovered.
type Options struct {
	Root             string
	Exts             []string
	Include          []string
	Exclude          []string
	RespectGitIgnore bool
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{".git": true, "node_modules": true}

// Files returns the prompt files under opts.Root as sorted slash-separated
// paths relative to the root. When RespectGitIgnore is set and the root is
// inside a git work tree, the listing comes from git so ignored files are
// skipped; otherwise the tree is walked directly.
func Files(ctx context.Context, opts Options) ([]string, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("prompt root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("prompt root %s is not a directory", root)
	}

	var candidates []string
	if opts.RespectGitIgnore && IsRepo(ctx, root) {
		candidates, err = gitFiles(ctx, root)
	} else {
		candidates, err = walkFiles(ctx, root)
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, rel := range candidates {
		if !Keep(rel, opts) {
			continue
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}

// Keep reports whether a root-relative path passes the extension, include
// and exclude filters.
func Keep(rel string, opts Options) bool {
	rel = filepath.ToSlash(rel)
	if inSkippedDir(rel) {
		return false
	}
	if !HasExt(rel, opts.Exts) {
		return false
	}
	if len(opts.Include) > 0 && !MatchesAny(rel, opts.Include) {
		return false
	}
	if len(opts.Exclude) > 0 && MatchesAny(rel, opts.Exclude) {
		return false
	}
	return true
}

// HasExt reports whether name ends with one of exts, case-insensitively.
// An empty list accepts every name.
func HasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func inSkippedDir(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if skipDirs[p] {
			return true
		}
	}
	return false
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" matches any number of directories, a trailing "/**"
// matches everything below a directory, and a pattern without a slash is
// also tried against the base name.
func MatchesAny(name string, patterns []string) bool {
	name = filepath.ToSlash(name)
	for _, pattern := range patterns {
		if matchGlob(pattern, name) {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := path.Match(pattern, path.Base(name)); ok {
				return true
			}
		}
	}
	return false
}

func matchGlob(pattern, name string) bool {
	if ok, err := path.Match(pattern, name); err == nil && ok {
		return true
	}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		for {
			if matchGlob(rest, name) {
				return true
			}
			i := strings.IndexByte(name, '/')
			if i < 0 {
				return false
			}
			name = name[i+1:]
		}
	}
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		for i := 0; i < len(name); i++ {
			if name[i] == '/' && matchGlob(dir, name[:i]) {
				return true
			}
		}
	}
	return false
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(ctx context.Context, dir string) bool {
	out, err := gitOutput(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RepoRoot returns the top-level directory of the git work tree holding dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// gitFiles lists tracked and untracked-but-not-ignored files under root.
func gitFiles(ctx context.Context, root string) ([]string, error) {
	out, err := gitOutput(ctx, root, "ls-files", "--cached", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	seen := make(map[string]bool)
	var files []string
	for _, rel := range strings.Split(out, "\x00") {
		if rel == "" || seen[rel] {
			continue
		}
		seen[rel] = true
		// Tracked files deleted from the work tree are still listed by --cached.
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			continue
		}
		files = append(files, rel)
	}
	return files, nil
}

func walkFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
