package mdconfig

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Section names read from headings.
const (
	SectionUserPrompt   = "userPrompt"
	SectionSystemPrompt = "systemPrompt"
)

// DefaultLevels are the heading markers searched for prompt sections.
var DefaultLevels = []string{"#", "##"}

// Parser turns prompt documents into resolved configurations. The zero value
// is ready to use. A Parser holds no per-call state and is safe for
// concurrent use.
type Parser struct {
	// Resolve merges user defaults with the per-file config. Defaults to Resolve.
	Resolve ResolveFunc
	// Levels are the heading markers prompt sections may use. Defaults to DefaultLevels.
	Levels []string
	// Logger receives debug output about recovered document problems.
	Logger *zap.Logger
}

// Parse uses a zero Parser.
func Parse(doc string, user UserConfig) FileConfig {
	var p Parser
	return p.Parse(doc, user)
}

// Parse extracts the per-file configuration from doc and resolves it against
// user. It never fails: malformed JSON and missing sections degrade to
// defaults.
func (p *Parser) Parse(doc string, user UserConfig) FileConfig {
	file := p.FileConfig(doc)
	resolve := p.Resolve
	if resolve == nil {
		resolve = Resolve
	}
	return resolve(user, file)
}

// FileConfig returns the per-file configuration before resolution. Prompt
// text found under headings replaces any same-named JSON keys.
func (p *Parser) FileConfig(doc string) FileConfig {
	raw := map[string]any{}
	if block, ok := ExtractJSONBlock(doc); ok {
		parsed, err := DecodeRaw(block)
		if err != nil {
			p.logger().Debug("ignoring malformed json block", zap.Error(err))
		} else {
			raw = parsed
		}
	}
	file := Normalize(raw)

	levels := p.levels()
	file.UserPrompt, _ = LocateSection(SectionUserPrompt, levels, doc).First()
	file.SystemPrompt, _ = LocateSection(SectionSystemPrompt, levels, doc).First()
	return file
}

// ParseFile reads path and parses it. Only the read can fail.
func (p *Parser) ParseFile(path string, user UserConfig) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("reading prompt file: %w", err)
	}
	return p.Parse(string(data), user), nil
}

// ParseFile uses a zero Parser.
func ParseFile(path string, user UserConfig) (FileConfig, error) {
	var p Parser
	return p.ParseFile(path, user)
}

func (p *Parser) levels() []string {
	if len(p.Levels) == 0 {
		return DefaultLevels
	}
	return p.Levels
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
