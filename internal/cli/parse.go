package cli

import (
	"context"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/promptmd/internal/config"
	"github.com/dshills/promptmd/internal/mdconfig"
	"github.com/dshills/promptmd/internal/outline"
	"github.com/dshills/promptmd/internal/output"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|dir]...",
	Short: "Resolve prompt files and print their configuration",
	Long: "Parse each prompt file, merge it with the user configuration and print the " +
		"resolved result. Directories are searched for prompt files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		files, err := collectFiles(ctx, cfg, args)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		results, err := parseFiles(ctx, cfg, files)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		if err := output.WriteResults(results, cfg.Format, flagOut); err != nil {
			fail(ExitRuntimeError, "writing output: %v", err)
			return nil
		}
		for _, r := range results {
			if r.Err != "" {
				exitCode = ExitRuntimeError
			}
		}
		return nil
	},
}

// parseFiles resolves every file concurrently. Results keep the order of
// files; a file that cannot be read carries its error instead of a config.
func parseFiles(ctx context.Context, cfg config.Config, files []string) ([]output.Result, error) {
	parser := &mdconfig.Parser{Levels: cfg.Levels, Logger: logger}
	user := cfg.UserConfig()
	results := make([]output.Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = output.Result{Path: path}
			resolved, err := parser.ParseFile(path, user)
			if err != nil {
				logger.Debug("parse failed", zap.String("path", path), zap.Error(err))
				results[i].Err = err.Error()
				return nil
			}
			results[i].Config = &resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkFiles runs the document checks concurrently, in the same shape as
// parseFiles.
func checkFiles(ctx context.Context, cfg config.Config, files []string) ([]output.Result, error) {
	levels := cfg.Levels
	results := make([]output.Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = output.Result{Path: path}
			data, err := readPrompt(path)
			if err != nil {
				results[i].Err = err.Error()
				return nil
			}
			results[i].Warnings = outline.Check(data, levels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
