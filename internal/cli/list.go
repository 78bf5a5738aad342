package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]...",
	Short: "List prompt files under the project root",
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
		if files == nil {
			files = []string{}
		}
		if err := withOutput(func(w io.Writer) error { return writeList(w, cfg.Format, files) }); err != nil {
			fail(ExitRuntimeError, "writing output: %v", err)
		}
		return nil
	},
}

func writeList(w io.Writer, format string, files []string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(files); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, f := range files {
			if _, err := fmt.Fprintln(w, f); err != nil {
				return err
			}
		}
		return nil
	}
}

// withOutput runs fn against --out or stdout.
func withOutput(fn func(w io.Writer) error) error {
	if flagOut == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(flagOut)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
