package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/promptmd/internal/mdconfig"
)

// TextWriter outputs a human-readable summary per file.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, results []Result) error {
	ew := &errWriter{w: w}

	for i, r := range results {
		if i > 0 {
			ew.println(strings.Repeat("─", 60))
		}
		ew.println(r.Path)
		if r.Err != "" {
			ew.printf("  error: %s\n", r.Err)
			continue
		}
		if r.Config != nil {
			writeConfig(ew, *r.Config)
		}
		if len(r.Warnings) > 0 {
			ew.printf("  warnings: %d\n", len(r.Warnings))
			for _, wn := range r.Warnings {
				ew.printf("    %s\n", wn)
			}
		} else if r.Config == nil {
			ew.println("  ok")
		}
	}

	if n := WarningCount(results); len(results) > 1 || n > 0 {
		ew.printf("\n%d file(s), %d warning(s)\n", len(results), n)
	}
	return ew.err
}

func writeConfig(ew *errWriter, cfg mdconfig.FileConfig) {
	if cfg.Title != "" {
		ew.printf("  title:    %s\n", cfg.Title)
	}
	ew.printf("  model:    %s\n", modelSummary(cfg.Model))
	if len(cfg.Tags) > 0 {
		ew.printf("  tags:     %s\n", strings.Join(cfg.Tags, ", "))
	}
	if len(cfg.Forms) > 0 {
		names := make([]string, 0, len(cfg.Forms))
		for name := range cfg.Forms {
			names = append(names, name)
		}
		sort.Strings(names)
		ew.printf("  forms:    %s\n", strings.Join(names, ", "))
	}
	if len(cfg.Messages) > 0 {
		ew.printf("  messages: %d\n", len(cfg.Messages))
	}
	writePrompt(ew, "system prompt", cfg.SystemPrompt)
	writePrompt(ew, "user prompt", cfg.UserPrompt)
}

func writePrompt(ew *errWriter, label, text string) {
	if strings.TrimSpace(text) == "" {
		ew.printf("  %s: (empty)\n", label)
		return
	}
	ew.printf("  %s:\n", label)
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		ew.printf("    | %s\n", line)
	}
}

func modelSummary(m mdconfig.ModelConfig) string {
	var b strings.Builder
	b.WriteString(m.Type)
	if m.ModelName != "" {
		b.WriteString("/")
		b.WriteString(m.ModelName)
	}
	var params []string
	if m.MaxTokens > 0 {
		params = append(params, "maxTokens "+strconv.Itoa(m.MaxTokens))
	}
	for _, p := range []struct {
		name string
		v    *float64
	}{
		{"temperature", m.Temperature},
		{"topP", m.TopP},
		{"frequencyPenalty", m.FrequencyPenalty},
		{"presencePenalty", m.PresencePenalty},
	} {
		if p.v != nil {
			params = append(params, fmt.Sprintf("%s %g", p.name, *p.v))
		}
	}
	if len(params) > 0 {
		b.WriteString(" (" + strings.Join(params, ", ") + ")")
	}
	return b.String()
}
