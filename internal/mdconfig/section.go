package mdconfig

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// spaceClass is the body of a character class matching any Unicode space
// separator, the byte order mark and the ASCII whitespace bytes, \v included.
// RE2's \s alone is ASCII only.
const spaceClass = `\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}`

// isSpace is the rune form of spaceClass.
func isSpace(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

// TitlePattern builds the case-insensitive matcher for a camelCase section
// name. "userPrompt" matches "User Prompt", "user_prompt", "USER-PROMPT" and
// "UserPrompt".
func TitlePattern(name string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + titleSource(name))
}

func titleSource(name string) string {
	words := splitCamel(name)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `[`+spaceClass+`_-]*`)
}

// splitCamel splits before every uppercase letter except the first rune.
func splitCamel(name string) []string {
	var words []string
	start := 0
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, name[start:i])
			start = i
		}
	}
	return append(words, name[start:])
}

// Query names a section and the heading markers it may appear under.
type Query struct {
	Name   string
	Levels []string

	heading *regexp.Regexp
}

// NewQuery compiles a query for name at the given markers, e.g. "#", "##".
func NewQuery(name string, levels ...string) Query {
	alts := make([]string, len(levels))
	for i, l := range levels {
		alts[i] = regexp.QuoteMeta(l)
	}
	sp := `[` + spaceClass + `]`
	src := `(?i)^` + sp + `*(` + strings.Join(alts, "|") + `)` + sp + `+(` + titleSource(name) + `)` + sp + `*$`
	return Query{
		Name:    name,
		Levels:  append([]string(nil), levels...),
		heading: regexp.MustCompile(src),
	}
}

// matchHeading reports the marker when line is a heading for this query.
func (q Query) matchHeading(line string) (string, bool) {
	if len(q.Levels) == 0 {
		return "", false
	}
	m := q.heading.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	for _, l := range q.Levels {
		if strings.EqualFold(l, m[1]) {
			return l, true
		}
	}
	return m[1], true
}

// closesSection reports whether line is a heading at the level of marker or
// above it. For "##" that is any "## x" or "# x" line; "### x" is not.
func closesSection(marker, line string) bool {
	s := strings.TrimLeftFunc(line, isSpace)
	if !repeated(marker) {
		return headingWith(s, marker)
	}
	for n := len(marker); n > 0; n-- {
		if headingWith(s, marker[:n]) {
			return true
		}
	}
	return false
}

// headingWith reports whether s starts with exactly marker followed by space.
func headingWith(s, marker string) bool {
	if !strings.HasPrefix(s, marker) {
		return false
	}
	r, size := utf8.DecodeRuneInString(s[len(marker):])
	return size > 0 && isSpace(r)
}

// repeated reports whether marker is one byte repeated, like "###".
func repeated(marker string) bool {
	return marker != "" && strings.Count(marker, marker[:1]) == len(marker)
}

// SectionMatch maps heading markers to the body text found under them,
// remembering the order in which markers were first seen.
type SectionMatch struct {
	levels []string
	order  []string
	bodies map[string]*strings.Builder
}

func newSectionMatch(levels []string) *SectionMatch {
	return &SectionMatch{
		levels: levels,
		bodies: make(map[string]*strings.Builder),
	}
}

func (m *SectionMatch) open(marker string) {
	if _, ok := m.bodies[marker]; ok {
		return
	}
	m.order = append(m.order, marker)
	m.bodies[marker] = &strings.Builder{}
}

func (m *SectionMatch) appendLine(marker, line string) {
	b := m.bodies[marker]
	b.WriteString(line)
	b.WriteByte('\n')
}

// Len is the number of markers that matched.
func (m *SectionMatch) Len() int { return len(m.order) }

// Markers returns matched markers in document order of first match.
func (m *SectionMatch) Markers() []string {
	return append([]string(nil), m.order...)
}

// Body returns the text collected under marker.
func (m *SectionMatch) Body(marker string) (string, bool) {
	b, ok := m.bodies[marker]
	if !ok {
		return "", false
	}
	return b.String(), true
}

// First returns the body for the first requested level that matched.
func (m *SectionMatch) First() (string, bool) {
	for _, l := range m.levels {
		if body, ok := m.Body(l); ok {
			return body, true
		}
	}
	return "", false
}

// sectionState is INACTIVE when marker is empty, ACTIVE(marker) otherwise.
type sectionState struct {
	marker string
}

func (s sectionState) active() bool { return s.marker != "" }

// step advances the scanner by one line and reports whether the line is body
// text for the active section.
func (s *sectionState) step(q Query, line string) (body bool) {
	if marker, ok := q.matchHeading(line); ok {
		s.marker = marker
		return false
	}
	if s.active() && closesSection(s.marker, line) {
		s.marker = ""
	}
	return s.active()
}

// Locate scans doc and collects the text under every heading that matches q.
// A section ends at the next heading of the same or a higher level; deeper
// headings are part of the body. Closing on a higher level is deliberate and
// differs from a same-level-only rule: a "# Next" line must end a "## sub"
// section, or every later top-level section leaks into it.
func (q Query) Locate(doc string) *SectionMatch {
	result := newSectionMatch(q.Levels)
	var st sectionState
	for _, line := range strings.Split(doc, "\n") {
		body := st.step(q, line)
		if !st.active() {
			continue
		}
		if !body {
			result.open(st.marker)
			continue
		}
		result.appendLine(st.marker, line)
	}
	return result
}

// LocateSection is shorthand for NewQuery(name, levels...).Locate(doc).
func LocateSection(name string, levels []string, doc string) *SectionMatch {
	return NewQuery(name, levels...).Locate(doc)
}
