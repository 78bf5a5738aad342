package mdconfig

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonBlockPattern matches a ```json fence at the top of the document, up to
// the first closing fence. A leading byte order mark counts as whitespace.
var jsonBlockPattern = regexp.MustCompile("(?is)\\A[" + spaceClass + "]*?```json(.*?)```")

// ExtractJSONBlock returns the trimmed body of the leading json fenced block.
func ExtractJSONBlock(doc string) (string, bool) {
	m := jsonBlockPattern.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ParseRaw decodes text as a JSON object. Anything that is not a valid object
// yields an empty map; hand-written documents must degrade, not fail.
func ParseRaw(text string) map[string]any {
	raw, err := DecodeRaw(text)
	if err != nil {
		return map[string]any{}
	}
	return raw
}

// DecodeRaw is ParseRaw with the decode error reported.
func DecodeRaw(text string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	return raw, nil
}
