package output

import (
	"encoding/json"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// SARIF 2.1.0 document structures, limited to the fields leaplint emits.

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
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	Name             string        `json:"name,omitempty"`
	ShortDescription *sarifMessage `json:"shortDescription,omitempty"`
	HelpURI          string        `json:"helpUri,omitempty"`
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
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func (r *Renderer) renderSARIF(result lint.Result, engineVersion string) error {
	run := sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:           "leaplint",
				Version:        engineVersion,
				InformationURI: "https://github.com/leapstack-labs/leaplint",
				Rules:          sarifRules(result.Diagnostics),
			},
		},
		Results: make([]sarifResult, 0, len(result.Diagnostics)),
	}

	for _, d := range result.Diagnostics {
		res := sarifResult{
			RuleID:  d.RuleID,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: message(d)},
		}
		if d.Path != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: d.Path},
				},
			}
			if d.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   d.Line,
					StartColumn: d.Column,
				}
			}
			res.Locations = []sarifLocation{loc}
		}
		run.Results = append(run.Results, res)
	}

	doc := sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs:    []sarifRun{run},
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// sarifRules lists each rule referenced by the results exactly once, in
// registry order when known.
func sarifRules(diagnostics []lint.Diagnostic) []sarifRule {
	seen := make(map[string]bool)
	var rules []sarifRule
	for _, d := range diagnostics {
		if seen[d.RuleID] {
			continue
		}
		seen[d.RuleID] = true
		rule := sarifRule{ID: d.RuleID}
		if def, ok := lint.Get(d.RuleID); ok {
			rule.Name = def.Name
			rule.ShortDescription = &sarifMessage{Text: def.Description}
			rule.HelpURI = def.DocURL
		}
		rules = append(rules, rule)
	}
	if rules == nil {
		rules = []sarifRule{}
	}
	return rules
}

func sarifLevel(s core.Severity) string {
	switch s {
	case core.SeverityError:
		return "error"
	case core.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
