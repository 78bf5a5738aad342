package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/promptmd/internal/mdconfig"
	"github.com/dshills/promptmd/internal/outline"
)

// Result is the outcome of processing one prompt file. Config is nil when
// only checks were run or the file could not be read.
type Result struct {
	Path     string               `json:"path" yaml:"path"`
	Config   *mdconfig.FileConfig `json:"config,omitempty" yaml:"config,omitempty"`
	Warnings []outline.Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Err      string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// Writer writes results in a specific format.
type Writer interface {
	Write(w io.Writer, results []Result) error
}

// Formats lists the accepted --format values.
var Formats = []string{"text", "json", "yaml", "markdown", "sarif"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "yaml", "yml":
		return &YAMLWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResults writes the results to the specified output (file path or stdout).
func WriteResults(results []Result, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, results)
}

// WarningCount totals the warnings across results.
func WarningCount(results []Result) int {
	n := 0
	for _, r := range results {
		n += len(r.Warnings)
	}
	return n
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
