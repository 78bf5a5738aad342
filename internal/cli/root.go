package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/promptmd/internal/config"
	"github.com/dshills/promptmd/internal/logging"
)

const version = "0.1.0"

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitWarnings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// Persistent flags shared by every command.
var (
	flagProvider  string
	flagModel     string
	flagFormat    string
	flagOut       string
	flagLevels    string
	flagProject   string
	flagVerbose   bool
	flagMaxTokens int
)

var rootCmd = &cobra.Command{
	Use:   "promptmd",
	Short: "Markdown prompt file toolkit",
	Long: "promptmd reads .gpt.md prompt files, resolves their model settings and prompt " +
		"sections against user defaults, and can lint, serve or run them.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(flagVerbose, logging.JSONFromEnv())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// logger is replaced in PersistentPreRunE; commands executed directly in
// tests keep the nop logger.
var logger = zap.NewNop()

// Run executes the root command and returns an exit code.
func Run() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	logger.Sync()
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports err on stderr and records the exit code.
func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exitCode = code
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagLevels != "" {
		m["levels"] = flagLevels
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = strconv.Itoa(flagMaxTokens)
	}
	return m
}

func projectDir() string {
	if flagProject != "" {
		return flagProject
	}
	return "."
}

func loadConfig() (config.Config, error) {
	return config.Load(buildOverrides(), projectDir())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print promptmd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "promptmd version %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagProvider, "provider", "", "Default provider (anthropic, openai, ollama)")
	pf.StringVar(&flagModel, "model", "", "Default model name")
	pf.IntVar(&flagMaxTokens, "max-tokens", 0, "Default max tokens")
	pf.StringVar(&flagFormat, "format", "", "Output format (text, json, yaml, markdown, sarif)")
	pf.StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	pf.StringVar(&flagLevels, "levels", "", "Heading markers for prompt sections (comma-separated, default #,##)")
	pf.StringVar(&flagProject, "project", "", "Project directory holding promptmd.config.* (default: current directory)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)
}
