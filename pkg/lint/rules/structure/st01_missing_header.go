package structure

import (
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "ST01",
		Name:        "structure.missing_header",
		Group:       "structure",
		Description: "Model file without a header field block",
		Severity:    core.SeverityInfo,
		Kinds:       []core.ProjectKind{core.KindDbt},
		CheckFile:   checkMissingHeader,
	})
}

// checkMissingHeader flags model files that declare no header fields.
// Non-model files are ignored.
func checkMissingHeader(file core.File, model *core.Model, _ *lint.Policy) []lint.Diagnostic {
	if model == nil || len(model.Fields) > 0 {
		return nil
	}
	return []lint.Diagnostic{{
		RuleID:   "ST01",
		Severity: core.SeverityInfo,
		Category: "structure",
		Message:  "model file has no header field block",
		Path:     file.Path,
		Line:     1,
		Column:   1,
		Fix:      "add a leading comment block with at least a name field",
	}}
}
