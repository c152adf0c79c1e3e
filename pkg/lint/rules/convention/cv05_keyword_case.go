package convention

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lexer"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/token"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "CV05",
		Name:        "convention.keyword_case",
		Group:       "convention",
		Description: "Inconsistent keyword casing within a file",
		Severity:    core.SeverityWarning,
		CheckFile:   checkKeywordCase,
	})
}

// checkKeywordCase flags keywords whose casing differs from the first
// consistently cased keyword in the file. Mixed-case keywords are always
// flagged.
func checkKeywordCase(file core.File, _ *core.Model, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	expect := ""

	for _, tok := range lexer.Tokenize(file.Text) {
		if tok.Kind != token.Keyword {
			continue
		}
		var style string
		switch tok.Text {
		case strings.ToUpper(tok.Text):
			style = "upper"
		case strings.ToLower(tok.Text):
			style = "lower"
		default:
			diagnostics = append(diagnostics, keywordCaseDiag(file.Path, tok,
				fmt.Sprintf("keyword %q mixes upper and lower case", tok.Text)))
			continue
		}
		if expect == "" {
			expect = style
			continue
		}
		if style != expect {
			diagnostics = append(diagnostics, keywordCaseDiag(file.Path, tok,
				fmt.Sprintf("keyword %q does not match the file's %scase style", tok.Text, expect)))
		}
	}
	return diagnostics
}

func keywordCaseDiag(path string, tok token.Token, msg string) lint.Diagnostic {
	return lint.Diagnostic{
		RuleID:   "CV05",
		Severity: core.SeverityWarning,
		Category: "convention",
		Message:  msg,
		Path:     path,
		Line:     tok.Line,
		Column:   tok.Column,
		Snippet:  tok.Text,
	}
}
