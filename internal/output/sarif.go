package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/promptmd/internal/outline"
)

// SARIFWriter outputs check warnings in SARIF v2.1.0 format.
type SARIFWriter struct {
	Version string
}

func (s *SARIFWriter) Write(w io.Writer, results []Result) error {
	sarif := buildSARIF(results, s.Version)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// ruleDescriptions documents each warning code.
var ruleDescriptions = map[string]string{
	outline.CodeJSONInvalid:           "Leading json block does not parse",
	outline.CodeJSONNotTop:            "json block is not at the top of the file",
	outline.CodePromptWrongLevel:      "Prompt heading is at a level that is not read",
	outline.CodePromptMissing:         "No User Prompt section",
	outline.CodeUnknownKey:            "Unrecognized settings key",
	outline.CodePlaceholderUndeclared: "Placeholder without a form entry",
	"read-error":                      "Prompt file could not be read",
}

func buildSARIF(results []Result, version string) sarifLog {
	rules := []sarifRule{}
	seen := make(map[string]bool)
	addRule := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		rules = append(rules, sarifRule{
			ID:               id,
			ShortDescription: sarifMessage{Text: ruleDescriptions[id]},
			DefaultConfig:    sarifDefaultConfig{Level: codeToLevel(id)},
		})
	}

	sarifResults := []sarifResult{}
	for _, r := range results {
		if r.Err != "" {
			addRule("read-error")
			sarifResults = append(sarifResults, sarifResult{
				RuleID:    "read-error",
				Level:     "error",
				Message:   sarifMessage{Text: r.Err},
				Locations: []sarifLocation{location(r.Path, 0)},
			})
		}
		for _, w := range r.Warnings {
			addRule(w.Code)
			sarifResults = append(sarifResults, sarifResult{
				RuleID:    w.Code,
				Level:     codeToLevel(w.Code),
				Message:   sarifMessage{Text: w.Message},
				Locations: []sarifLocation{location(r.Path, w.Line)},
			})
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "promptmd",
						Version:        version,
						InformationURI: "https://github.com/dshills/promptmd",
						Rules:          rules,
					},
				},
				Results: sarifResults,
			},
		},
	}
}

func location(path string, line int) sarifLocation {
	loc := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: path},
	}}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line}
	}
	return loc
}

// codeToLevel maps a warning code to a SARIF level.
func codeToLevel(code string) string {
	switch code {
	case outline.CodeJSONInvalid, "read-error":
		return "error"
	case outline.CodeUnknownKey, outline.CodePlaceholderUndeclared:
		return "note"
	default:
		return "warning"
	}
}
