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
		ID:           "RF01",
		Name:         "references.undefined",
		Group:        "references",
		Description:  "Reference to a model that does not exist",
		Severity:     core.SeverityError,
		CheckProject: checkUndefined,
	})
}

// checkUndefined flags declared references that resolve to no known model.
// When a known name is within edit distance of the reference, it is offered
// as a fix.
func checkUndefined(project *lint.Project, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, model := range project.Models {
		for _, ref := range model.Refs {
			if project.Graph.Resolves(ref) {
				continue
			}
			line, col := ruleutil.Locate(model.Raw, ref)
			d := lint.Diagnostic{
				RuleID:   "RF01",
				Severity: core.SeverityError,
				Category: "references",
				Message:  fmt.Sprintf("model %q references unknown model %q", model.Name, ref),
				Path:     model.Path,
				Line:     line,
				Column:   col,
			}
			if offset := strings.Index(model.Raw, ref); offset >= 0 {
				d.Snippet = ruleutil.Snippet(model.Raw, offset)
			}
			if suggestion := project.Graph.Closest(ref); suggestion != "" {
				d.Fix = fmt.Sprintf("did you mean %q?", suggestion)
			}
			diagnostics = append(diagnostics, d)
		}
	}
	return diagnostics
}
