package convention

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lexer"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/token"
)

// blockedWords are identifiers that signal throwaway or leftover objects.
var blockedWords = map[string]bool{
	"tmp":     true,
	"temp":    true,
	"dummy":   true,
	"test":    true,
	"scratch": true,
	"old":     true,
}

func init() {
	lint.Register(lint.RuleDef{
		ID:          "CV09",
		Name:        "convention.blocked_words",
		Group:       "convention",
		Description: "Identifier using a blocked word",
		Severity:    core.SeverityWarning,
		CheckFile:   checkBlockedWords,
	})
}

// checkBlockedWords flags identifiers that are, or end with, a blocked word.
func checkBlockedWords(file core.File, _ *core.Model, _ *lint.Policy) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, tok := range lexer.Meaningful(lexer.Tokenize(file.Text)) {
		if tok.Kind != token.Ident {
			continue
		}
		if word, ok := blockedPart(tok.Text); ok {
			diagnostics = append(diagnostics, lint.Diagnostic{
				RuleID:   "CV09",
				Severity: core.SeverityWarning,
				Category: "convention",
				Message:  fmt.Sprintf("identifier %q uses blocked word %q", tok.Text, word),
				Path:     file.Path,
				Line:     tok.Line,
				Column:   tok.Column,
				Snippet:  tok.Text,
			})
		}
	}
	return diagnostics
}

// blockedPart returns the blocked word an identifier matches, checking the
// whole name and its underscore-separated first and last segments.
func blockedPart(ident string) (string, bool) {
	lower := strings.ToLower(ident)
	if blockedWords[lower] {
		return lower, true
	}
	parts := strings.Split(lower, "_")
	if len(parts) > 1 {
		if blockedWords[parts[0]] {
			return parts[0], true
		}
		if last := parts[len(parts)-1]; blockedWords[last] {
			return last, true
		}
	}
	return "", false
}
