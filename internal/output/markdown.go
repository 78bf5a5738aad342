package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/promptmd/internal/mdconfig"
)

// MarkdownWriter re-emits each resolved config as a canonical prompt
// document. Parsing the output yields the same settings and prompts; prompt
// text gains a trailing newline if it lacked one.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, results []Result) error {
	ew := &errWriter{w: w}
	multi := len(results) > 1
	for i, r := range results {
		if multi {
			if i > 0 {
				ew.println("")
			}
			ew.printf("<!-- %s -->\n", r.Path)
		}
		if r.Err != "" {
			ew.printf("<!-- error: %s -->\n", r.Err)
			continue
		}
		if r.Config == nil {
			continue
		}
		doc, err := Document(*r.Config)
		if err != nil {
			return err
		}
		ew.printf("%s", doc)
	}
	return ew.err
}

// Document renders cfg as a prompt document: a leading json block with the
// settings, then System Prompt and User Prompt sections.
func Document(cfg mdconfig.FileConfig) (string, error) {
	data, err := json.MarshalIndent(documentSettings(cfg), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling settings: %w", err)
	}

	var b strings.Builder
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n\n")
	writeSection(&b, "System Prompt", cfg.SystemPrompt, false)
	writeSection(&b, "User Prompt", cfg.UserPrompt, true)
	return b.String(), nil
}

// documentSettings drops the prompt keys; headings carry them.
func documentSettings(cfg mdconfig.FileConfig) map[string]any {
	out := map[string]any{"model": cfg.Model}
	if cfg.Title != "" {
		out["title"] = cfg.Title
	}
	if len(cfg.Messages) > 0 {
		out["messages"] = cfg.Messages
	}
	if len(cfg.Forms) > 0 {
		out["forms"] = cfg.Forms
	}
	if len(cfg.Tags) > 0 {
		out["tags"] = cfg.Tags
	}
	return out
}

// writeSection emits a heading and its body. Every body line gains a
// newline when parsed, including the last line of the file, so the final
// section drops one trailing newline.
func writeSection(b *strings.Builder, title, text string, last bool) {
	b.WriteString("# " + title)
	if last {
		if text != "" {
			b.WriteString("\n" + strings.TrimSuffix(text, "\n"))
		}
		return
	}
	b.WriteString("\n" + text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
}
