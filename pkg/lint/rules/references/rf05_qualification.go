package references

import (
	"fmt"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/lint/rules/internal/ruleutil"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:           "RF05",
		Name:         "references.qualification",
		Group:        "references",
		Description:  "Fully qualified reference whose qualifier is redundant",
		Severity:     core.SeverityInfo,
		CheckProject: checkQualification,
	})
}

// checkQualification flags qualified references whose short form already
// denotes exactly one model, so the qualifier can be dropped.
func checkQualification(project *lint.Project, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, model := range project.Models {
		for _, ref := range model.Refs {
			if !project.Graph.Shortenable(ref) {
				continue
			}
			line, col := ruleutil.Locate(model.Raw, ref)
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "RF05",
				Severity: core.SeverityInfo,
				Category: "references",
				Message:  fmt.Sprintf("reference %q can be shortened to %q", ref, core.ShortName(ref)),
				Path:     model.Path,
				Line:     line,
				Column:   col,
				Fix:      fmt.Sprintf("use %q", core.ShortName(ref)),
			})
		}
	}
	return diagnostics
}
