// Package ruleutil holds small helpers shared by rule implementations.
package ruleutil

import "strings"

// Locate returns the 1-based line and column of the first occurrence of
// needle in text, or (0, 0) if absent.
func Locate(text, needle string) (line, col int) {
	offset := strings.Index(text, needle)
	if offset < 0 {
		return 0, 0
	}
	return At(text, offset)
}

// At returns the 1-based line and column of a byte offset in text.
func At(text string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Snippet returns the full line of text containing the byte offset, without
// its trailing newline.
func Snippet(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : offset+end]
}
