package token

import (
	"sort"
	"strings"
)

// keywords is the fixed ANSI keyword list, lowercase and sorted so membership
// checks can use binary search.
var keywords = []string{
	"all", "and", "as", "asc", "between", "by", "case", "cast", "cross",
	"current", "delete", "desc", "distinct", "else", "end", "except", "exists",
	"false", "filter", "first", "following", "from", "full", "group", "groups",
	"having", "in", "inner", "insert", "intersect", "into", "is", "join",
	"last", "lateral", "left", "like", "limit", "not", "null", "nulls",
	"offset", "on", "or", "order", "outer", "over", "partition", "preceding",
	"qualify", "range", "recursive", "right", "row", "rows", "select", "set",
	"then", "true", "unbounded", "union", "update", "using", "values", "when",
	"where", "window", "with", "within",
}

// IsKeyword reports whether word is an ANSI keyword. Matching is
// case-insensitive.
func IsKeyword(word string) bool {
	lower := strings.ToLower(word)
	i := sort.SearchStrings(keywords, lower)
	return i < len(keywords) && keywords[i] == lower
}

// Keywords returns the keyword list in sorted order.
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}
