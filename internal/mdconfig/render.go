package mdconfig

import (
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}\}`)

// Placeholders returns the distinct {{name}} references in text, in order of
// first appearance.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes {{name}} placeholders in the prompt texts. A value in
// values wins over the form's defaultValue; unresolved placeholders are kept.
func Render(cfg FileConfig, values map[string]string) FileConfig {
	out := cfg
	out.Messages = cloneMessages(cfg.Messages)
	out.Forms = cloneForms(cfg.Forms)
	out.Tags = cloneStrings(cfg.Tags)

	lookup := func(name string) (string, bool) {
		if v, ok := values[name]; ok {
			return v, true
		}
		if f, ok := cfg.Forms[name]; ok && f.DefaultValue != "" {
			return f.DefaultValue, true
		}
		return "", false
	}
	out.UserPrompt = substitute(cfg.UserPrompt, lookup)
	out.SystemPrompt = substitute(cfg.SystemPrompt, lookup)
	for i := range out.Messages {
		out.Messages[i].Text = substitute(out.Messages[i].Text, lookup)
	}
	return out
}

func substitute(text string, lookup func(string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := lookup(name); ok {
			return v
		}
		return match
	})
}
