package references

import (
	"fmt"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:           "RF06",
		Name:         "references.self",
		Group:        "references",
		Description:  "Model that references itself",
		Severity:     core.SeverityError,
		CheckProject: checkSelfReference,
	})
}

// checkSelfReference flags the degenerate one-node cycle directly, without
// running the general cycle search.
func checkSelfReference(project *lint.Project, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, name := range project.Graph.SelfReferential() {
		path := name
		if m := modelByName(project, name); m != nil {
			path = m.Path
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "RF06",
			Severity: core.SeverityError,
			Category: "references",
			Message:  fmt.Sprintf("model %q references itself", name),
			Path:     path,
		})
	}
	return diagnostics
}

// modelByName returns the first model with the given canonical name.
func modelByName(project *lint.Project, name string) *core.Model {
	for _, m := range project.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}
