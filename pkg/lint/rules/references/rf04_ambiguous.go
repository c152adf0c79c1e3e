package references

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/lint/rules/internal/ruleutil"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:           "RF04",
		Name:         "references.ambiguous",
		Group:        "references",
		Description:  "Short reference that could denote more than one model",
		Severity:     core.SeverityError,
		CheckProject: checkAmbiguous,
	})
}

// checkAmbiguous flags references by short name where two or more models
// share that short name but have different canonical names.
func checkAmbiguous(project *lint.Project, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, model := range project.Models {
		for _, ref := range model.Refs {
			if !project.Graph.Ambiguous(ref) {
				continue
			}
			line, col := ruleutil.Locate(model.Raw, ref)
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "RF04",
				Severity: core.SeverityError,
				Category: "references",
				Message: fmt.Sprintf("reference %q is ambiguous: it can denote %s",
					ref, strings.Join(project.Graph.Targets(ref), ", ")),
				Path:   model.Path,
				Line:   line,
				Column: col,
				Fix:    "qualify the reference with its schema",
			})
		}
	}
	return diagnostics
}
