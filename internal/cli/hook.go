package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> promptmd pre-commit hook >>>"
	hookMarkerEnd   = "# <<< promptmd pre-commit hook <<<"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install [dir]...",
	Short: "Lint prompt files with promptmd check before every commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		format := flagFormat
		if format == "" {
			format = "text"
		}
		section := generateHookScript(format, args)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fail(ExitRuntimeError, "reading hook file: %v", err)
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fail(ExitRuntimeError, "creating hooks directory: %v", err)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(ExitRuntimeError, "writing hook file: %v", err)
			return nil
		}

		fmt.Fprintf(os.Stdout, "Installed promptmd pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove promptmd pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stdout, "No pre-commit hook found.")
				return nil
			}
			fail(ExitRuntimeError, "reading hook file: %v", err)
			return nil
		}

		content := removeHookSection(string(existing))

		// Only the shebang left: delete the file.
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fail(ExitRuntimeError, "removing hook file: %v", err)
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed promptmd pre-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(ExitRuntimeError, "writing hook file: %v", err)
			return nil
		}

		fmt.Fprintf(os.Stdout, "Removed promptmd section from %s\n", hookPath)
		return nil
	},
}

func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-path", "hooks").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse failed)")
	}
	return filepath.Join(strings.TrimSpace(string(out)), "pre-commit"), nil
}

func generateHookScript(format string, dirs []string) string {
	args := "check --strict --format " + format
	for _, d := range dirs {
		args += " " + shellQuote(d)
	}
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString("promptmd " + args + "\n")
	b.WriteString("PROMPTMD_EXIT=$?\n")
	b.WriteString("if [ $PROMPTMD_EXIT -eq 1 ]; then\n")
	b.WriteString("  echo \"promptmd: prompt file warnings, commit blocked\"\n")
	b.WriteString("  exit 1\n")
	b.WriteString("elif [ $PROMPTMD_EXIT -ge 2 ]; then\n")
	b.WriteString("  echo \"promptmd: check failed (exit $PROMPTMD_EXIT), allowing commit\"\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
}
