package references

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:           "RF07",
		Name:         "references.cycle",
		Group:        "references",
		Description:  "Model that participates in a reference cycle",
		Severity:     core.SeverityError,
		CheckProject: checkCycles,
	})
}

// checkCycles flags every model transitively involved in a reference cycle.
func checkCycles(project *lint.Project, _ *lint.Policy) []lint.Diagnostic {
	participants := project.Graph.Cycles()
	if len(participants) == 0 {
		return nil
	}

	names := make([]string, 0, len(participants))
	for name := range participants {
		names = append(names, name)
	}
	sort.Strings(names)

	var diagnostics []lint.Diagnostic
	for _, name := range names {
		path := name
		if m := modelByName(project, name); m != nil {
			path = m.Path
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "RF07",
			Severity: core.SeverityError,
			Category: "references",
			Message:  fmt.Sprintf("model %q is part of a reference cycle", name),
			Path:     path,
		})
	}
	return diagnostics
}
