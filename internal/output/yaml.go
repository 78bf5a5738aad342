package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter outputs the results as a YAML sequence.
type YAMLWriter struct{}

func (y *YAMLWriter) Write(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}
