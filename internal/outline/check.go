package outline

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/dshills/promptmd/internal/mdconfig"
)

// Warning codes reported by Check.
const (
	CodeJSONInvalid           = "json-invalid"
	CodeJSONNotTop            = "json-not-top"
	CodePromptWrongLevel      = "prompt-wrong-level"
	CodePromptMissing         = "prompt-missing"
	CodeUnknownKey            = "unknown-key"
	CodePlaceholderUndeclared = "placeholder-undeclared"
)

// Warning is a problem that makes a document parse differently than its
// author probably intended. Line is 0 for document-level warnings.
type Warning struct {
	Line    int    `json:"line" yaml:"line"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Line == 0 {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%d: %s: %s", w.Line, w.Code, w.Message)
}

// Check lints doc against the heading levels prompt sections are read from.
// It reports only; parsing the same document is unaffected.
func Check(doc string, levels []string) []Warning {
	if len(levels) == 0 {
		levels = mdconfig.DefaultLevels
	}
	d := parse(doc)
	var warnings []Warning

	warnings = append(warnings, checkJSON(d, doc)...)
	warnings = append(warnings, checkSections(d, doc, levels)...)

	p := mdconfig.Parser{Levels: levels}
	warnings = append(warnings, checkPlaceholders(doc, p.FileConfig(doc))...)

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Line < warnings[j].Line
	})
	return warnings
}

func checkJSON(d document, doc string) []Warning {
	var warnings []Warning
	fences := d.fencedJSON()
	block, top := mdconfig.ExtractJSONBlock(doc)
	if top {
		raw, err := mdconfig.DecodeRaw(block)
		if err != nil {
			warnings = append(warnings, Warning{
				Line:    firstLine(fences),
				Code:    CodeJSONInvalid,
				Message: fmt.Sprintf("leading json block is ignored: %v", err),
			})
		}
		for _, key := range mdconfig.UnknownKeys(raw) {
			warnings = append(warnings, Warning{
				Line:    firstLine(fences),
				Code:    CodeUnknownKey,
				Message: fmt.Sprintf("key %q is not a prompt setting", key),
			})
		}
		if len(fences) > 0 {
			fences = fences[1:]
		}
	}
	for _, line := range fences {
		warnings = append(warnings, Warning{
			Line:    line,
			Code:    CodeJSONNotTop,
			Message: "only a json block at the very top of the file is read",
		})
	}
	return warnings
}

var promptSections = []string{mdconfig.SectionUserPrompt, mdconfig.SectionSystemPrompt}

func checkSections(d document, doc string, levels []string) []Warning {
	var warnings []Warning
	for _, h := range d.headings() {
		if !isSectionTitle(h.Title) || slices.Contains(levels, h.Marker) {
			continue
		}
		msg := fmt.Sprintf("%q heading uses %q but sections are read from %s",
			h.Title, h.Marker, strings.Join(levels, ", "))
		if h.Marker == "" {
			msg = fmt.Sprintf("%q is a setext heading; use %s %s", h.Title, levels[0], h.Title)
		}
		warnings = append(warnings, Warning{Line: h.Line, Code: CodePromptWrongLevel, Message: msg})
	}
	if mdconfig.LocateSection(mdconfig.SectionUserPrompt, levels, doc).Len() == 0 {
		warnings = append(warnings, Warning{
			Code:    CodePromptMissing,
			Message: fmt.Sprintf("no User Prompt section at %s", strings.Join(levels, ", ")),
		})
	}
	return warnings
}

var sectionTitles = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(promptSections))
	for _, name := range promptSections {
		m[name] = regexp.MustCompile(`^\s*(?:` + mdconfig.TitlePattern(name).String() + `)\s*$`)
	}
	return m
}()

func isSectionTitle(title string) bool {
	for _, name := range promptSections {
		if sectionTitles[name].MatchString(title) {
			return true
		}
	}
	return false
}

func checkPlaceholders(doc string, file mdconfig.FileConfig) []Warning {
	texts := []string{file.SystemPrompt, file.UserPrompt}
	for _, m := range file.Messages {
		texts = append(texts, m.Text)
	}

	var warnings []Warning
	seen := make(map[string]bool)
	for _, t := range texts {
		for _, name := range mdconfig.Placeholders(t) {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := file.Forms[name]; ok {
				continue
			}
			warnings = append(warnings, Warning{
				Line:    placeholderLine(doc, name),
				Code:    CodePlaceholderUndeclared,
				Message: fmt.Sprintf("{{%s}} has no entry in forms and will be sent verbatim", name),
			})
		}
	}
	return warnings
}

func placeholderLine(doc, name string) int {
	for i, line := range strings.Split(doc, "\n") {
		if slices.Contains(mdconfig.Placeholders(line), name) {
			return i + 1
		}
	}
	return 0
}

func firstLine(lines []int) int {
	if len(lines) == 0 {
		return 1
	}
	return lines[0]
}
