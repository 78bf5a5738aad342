package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter outputs the results as a JSON array.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
