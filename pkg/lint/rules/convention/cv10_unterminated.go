package convention

import (
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lexer"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/token"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "CV10",
		Name:        "convention.unterminated_literal",
		Group:       "convention",
		Description: "String literal or quoted identifier missing its terminator",
		Severity:    core.SeverityError,
		CheckFile:   checkUnterminated,
	})
}

// checkUnterminated flags string literals and quoted identifiers that ran to
// end of input without a closing quote. The lexer leaves them in the stream;
// reporting the missing terminator is this rule's job.
func checkUnterminated(file core.File, _ *core.Model, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, tok := range lexer.Tokenize(file.Text) {
		if tok.Kind != token.String && tok.Kind != token.QuotedIdent {
			continue
		}
		if isTerminated(tok.Text) {
			continue
		}
		kind := "string literal"
		if tok.Kind == token.QuotedIdent {
			kind = "quoted identifier"
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "CV10",
			Severity: core.SeverityError,
			Category: "convention",
			Message:  "unterminated " + kind,
			Path:     file.Path,
			Line:     tok.Line,
			Column:   tok.Column,
		})
	}
	return diagnostics
}

// isTerminated replays the quote-escape scan over a token's text: doubled
// quotes are escapes, and the token is terminated only if a lone closing
// quote was reached.
func isTerminated(text string) bool {
	if len(text) < 2 {
		return false
	}
	quote := text[0]
	i := 1
	for i < len(text) {
		if text[i] != quote {
			i++
			continue
		}
		if i+1 < len(text) && text[i+1] == quote {
			i += 2
			continue
		}
		return i == len(text)-1
	}
	return false
}
