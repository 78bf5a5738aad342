package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/promptmd/internal/config"
	"github.com/dshills/promptmd/internal/discover"
)

// collectFiles expands the command arguments into prompt file paths. Files
// are taken as given; directories are searched with the configured
// extensions and globs. No arguments means the configured root.
func collectFiles(ctx context.Context, cfg config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		root := cfg.RootPath
		if root == "" {
			root = "."
		}
		args = []string{root}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		found, err := discover.Files(ctx, discoverOptions(cfg, arg))
		if err != nil {
			return nil, err
		}
		for _, rel := range found {
			add(filepath.Join(arg, filepath.FromSlash(rel)))
		}
	}
	return files, nil
}

func discoverOptions(cfg config.Config, root string) discover.Options {
	return discover.Options{
		Root:             root,
		Exts:             cfg.Exts,
		Include:          cfg.Includes,
		Exclude:          cfg.Excludes,
		RespectGitIgnore: cfg.GitIgnore(),
	}
}

func readPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}
	return string(data), nil
}
