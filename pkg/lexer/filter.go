package lexer

import (
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/token"
)

// Meaningful returns the tokens that carry SQL meaning, dropping whitespace,
// newlines, and comments. Template tokens are kept.
func Meaningful(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind.IsTrivia() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SplitHeader splits text into a leading header block and the body.
// The header is the run of leading lines that are blank or start with a
// comment; the first non-blank, non-comment line begins the body.
func SplitHeader(text string) (header, body string) {
	offset := 0
	rest := text
	for len(rest) > 0 {
		line := rest
		lineLen := len(rest)
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i]
			lineLen = i + 1
		}
		trimmed := strings.TrimLeft(line, " \t\r")
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") && !strings.HasPrefix(trimmed, "/*") {
			break
		}
		offset += lineLen
		rest = rest[lineLen:]
	}
	return text[:offset], text[offset:]
}
