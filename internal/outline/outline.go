package outline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is a top-level markdown heading.
type Heading struct {
	Level  int    `json:"level" yaml:"level"`
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Title  string `json:"title" yaml:"title"`
	Line   int    `json:"line" yaml:"line"`
}

// document is a parsed markdown source with a line index.
type document struct {
	src  []byte
	root ast.Node
}

func parse(doc string) document {
	src := []byte(doc)
	md := goldmark.New()
	return document{src: src, root: md.Parser().Parse(text.NewReader(src))}
}

// Headings lists the document's top-level headings in order. Headings nested
// in lists or block quotes are not prompt sections and are skipped.
func Headings(doc string) []Heading {
	return parse(doc).headings()
}

func (d document) headings() []Heading {
	var out []Heading
	for n := d.root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		heading := Heading{
			Level: h.Level,
			Title: strings.TrimSpace(string(h.Text(d.src))),
		}
		if lines := h.Lines(); lines.Len() > 0 {
			start := lines.At(0).Start
			heading.Line = d.lineAt(start)
			heading.Marker = atxMarker(d.lineText(start))
		}
		out = append(out, heading)
	}
	return out
}

// fencedJSON returns the line of every top-level ```json fence.
func (d document) fencedJSON() []int {
	var lines []int
	for n := d.root.FirstChild(); n != nil; n = n.NextSibling() {
		f, ok := n.(*ast.FencedCodeBlock)
		if !ok || f.Info == nil {
			continue
		}
		if !strings.EqualFold(string(f.Language(d.src)), "json") {
			continue
		}
		lines = append(lines, d.lineAt(f.Info.Segment.Start))
	}
	return lines
}

// lineAt converts a byte offset to a 1-based line number.
func (d document) lineAt(off int) int {
	if off > len(d.src) {
		off = len(d.src)
	}
	return bytes.Count(d.src[:off], []byte("\n")) + 1
}

// lineText returns the full source line holding off.
func (d document) lineText(off int) string {
	start := bytes.LastIndexByte(d.src[:off], '\n') + 1
	end := bytes.IndexByte(d.src[off:], '\n')
	if end < 0 {
		return string(d.src[start:])
	}
	return string(d.src[start : off+end])
}

// atxMarker returns the run of '#' opening line, or "" for setext headings.
func atxMarker(line string) string {
	line = strings.TrimLeft(line, " ")
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return line[:n]
}
