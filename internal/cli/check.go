package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/promptmd/internal/output"
)

var flagStrict bool

var checkCmd = &cobra.Command{
	Use:   "check [file|dir]...",
	Short: "Lint prompt files for likely authoring mistakes",
	Long: "Report documents whose JSON block or prompt headings will not be read the way " +
		"they look. With --strict, any warning exits with status 1.",
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
		results, err := checkFiles(ctx, cfg, files)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		format := cfg.Format
		if format == "markdown" || format == "md" {
			fmt.Fprintln(os.Stderr, "markdown output does not apply to check; using text")
			format = "text"
		}
		if err := output.WriteResults(results, format, flagOut); err != nil {
			fail(ExitRuntimeError, "writing output: %v", err)
			return nil
		}

		for _, r := range results {
			if r.Err != "" {
				exitCode = ExitRuntimeError
				return nil
			}
		}
		if flagStrict && output.WarningCount(results) > 0 {
			exitCode = ExitWarnings
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&flagStrict, "strict", false, "Exit with status 1 when any warning is reported")
}
