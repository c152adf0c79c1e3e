// Package core defines the shared domain types for the linter: models, files,
// severities, and project kinds. It has no dependencies on the rule engine.
package core

import "strings"

// File is one discovered project file.
type File struct {
	// Path is the path relative to the project root
	Path string
	// Text is the full file content
	Text string
	// ContentHash is the hex sha256 of Text
	ContentHash string
}

// Model represents one SQL transformation file.
// Models are read-only for the engine; their lifetime is one run.
type Model struct {
	// Name is the canonical model name, possibly dotted ("schema.model")
	Name string
	// Path is the file path relative to the project root
	Path string
	// ContentHash is the hex sha256 of the raw content
	ContentHash string
	// Fields holds the parsed "key: value" header fields
	Fields map[string]string
	// Refs are the declared reference names, in declaration order
	Refs []string
	// Raw is the full file content
	Raw string
}

// ShortName returns the last dot-separated segment of the model name.
func (m *Model) ShortName() string {
	return ShortName(m.Name)
}

// ShortName returns the last dot-separated segment of a model name.
func ShortName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsQualified returns true if the name carries a schema qualifier.
func IsQualified(name string) bool {
	return strings.ContainsRune(name, '.')
}
