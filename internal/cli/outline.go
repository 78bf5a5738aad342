package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/promptmd/internal/outline"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the heading outline of a prompt file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, err := readPrompt(args[0])
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		headings := outline.Headings(doc)
		if headings == nil {
			headings = []outline.Heading{}
		}
		if err := withOutput(func(w io.Writer) error { return writeOutline(w, cfg.Format, headings) }); err != nil {
			fail(ExitRuntimeError, "writing output: %v", err)
		}
		return nil
	},
}

func writeOutline(w io.Writer, format string, headings []outline.Heading) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(headings)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(headings); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, h := range headings {
			indent := strings.Repeat("  ", max(h.Level-1, 0))
			marker := h.Marker
			if marker == "" {
				// setext heading
				marker = strings.Repeat("#", h.Level) + "*"
			}
			if _, err := fmt.Fprintf(w, "%4d  %s%s %s\n", h.Line, indent, marker, h.Title); err != nil {
				return err
			}
		}
		return nil
	}
}
