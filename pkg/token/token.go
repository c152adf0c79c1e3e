// Package token defines the lexical token types produced by the SQL lexer.
//
// Tokens are lossless: every byte of the input, including whitespace,
// comments, and templating regions, belongs to exactly one token.
package token

// Kind classifies a lexical token.
type Kind int

// Token kinds.
const (
	Unknown Kind = iota

	// Words and literals
	Keyword     // SELECT, FROM, JOIN, ...
	Ident       // customers, stg_orders
	QuotedIdent // "order id", `col`
	String      // 'it''s'
	Number      // 123, 45.67, 1e-10

	// Operators and punctuation
	Operator   // +, -, <=, <>, ||, ...
	ParenOpen  // (
	ParenClose // )
	Comma      // ,
	Semicolon  // ;
	Dot        // .

	// Trivia
	LineComment  // -- comment
	BlockComment // /* comment */, nesting allowed
	Whitespace   // spaces and tabs
	Newline      // \n or \r\n

	// Templating regions, kept opaque
	TemplateExpr    // {{ ... }}
	TemplateStmt    // {% ... %}
	TemplateComment // {# ... #}
)

var kindNames = map[Kind]string{
	Unknown:         "UNKNOWN",
	Keyword:         "KEYWORD",
	Ident:           "IDENT",
	QuotedIdent:     "QUOTED_IDENT",
	String:          "STRING",
	Number:          "NUMBER",
	Operator:        "OPERATOR",
	ParenOpen:       "(",
	ParenClose:      ")",
	Comma:           ",",
	Semicolon:       ";",
	Dot:             ".",
	LineComment:     "LINE_COMMENT",
	BlockComment:    "BLOCK_COMMENT",
	Whitespace:      "WHITESPACE",
	Newline:         "NEWLINE",
	TemplateExpr:    "TEMPLATE_EXPR",
	TemplateStmt:    "TEMPLATE_STMT",
	TemplateComment: "TEMPLATE_COMMENT",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTrivia returns true for tokens that carry no SQL meaning.
func (k Kind) IsTrivia() bool {
	switch k {
	case Whitespace, Newline, LineComment, BlockComment:
		return true
	}
	return false
}

// IsComment returns true for line and block comments.
func (k Kind) IsComment() bool {
	return k == LineComment || k == BlockComment
}

// IsTemplate returns true for opaque templating tokens.
func (k Kind) IsTemplate() bool {
	switch k {
	case TemplateExpr, TemplateStmt, TemplateComment:
		return true
	}
	return false
}

// Token is a lexical token with its exact source span.
type Token struct {
	Kind   Kind
	Text   string // exact span of input, delimiters included
	Offset int    // 0-based byte offset
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

// Pos returns the token's position.
func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

// End returns the byte offset one past the token's last byte.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}
