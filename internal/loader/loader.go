// Package loader discovers SQL model files and derives model records from
// them: header fields, declared references, and content hashes. It is the
// default front end for the engine; any equivalent supplier of files and
// models can replace it.
package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lexer"
)

// headerFieldPattern matches one "-- key: value" header line.
var headerFieldPattern = regexp.MustCompile(`^\s*--\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*?)\s*$`)

// refPattern matches {{ ref('name') }} templated calls.
var refPattern = regexp.MustCompile(`\{\{\s*ref\(\s*['"]([^'"]+)['"]\s*\)\s*\}\}`)

// sourcePattern matches {{ source('schema', 'name') }} templated calls.
var sourcePattern = regexp.MustCompile(`\{\{\s*source\(\s*['"]([^'"]+)['"]\s*,\s*['"]([^'"]+)['"]\s*\)\s*\}\}`)

// Loader discovers project files.
type Loader struct {
	root   string
	logger *slog.Logger
}

// New creates a Loader rooted at the project directory.
func New(root string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{root: root, logger: logger}
}

// Discover walks the project for *.sql files, in sorted order, and returns
// file records plus the model records derived from them. Unreadable files
// are logged and skipped; discovery itself only fails if the root cannot be
// walked at all.
func (l *Loader) Discover() ([]core.File, []*core.Model, error) {
	var paths []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories hold caches and tool state.
			if path != l.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".sql") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(paths)

	var files []core.File
	var models []*core.Model
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		text := string(data)
		file := core.File{Path: rel, Text: text, ContentHash: HashContent(text)}
		files = append(files, file)
		models = append(models, ParseModel(file))
	}
	return files, models, nil
}

// HashContent returns the hex sha256 of text.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ParseModel derives a model record from a file: header fields from the
// leading "-- key: value" comment block, references from templated calls,
// and the canonical name from the header or the file path.
func ParseModel(file core.File) *core.Model {
	m := &core.Model{
		Path:        file.Path,
		ContentHash: file.ContentHash,
		Fields:      ParseHeaderFields(file.Text),
		Refs:        ParseRefs(file.Text),
		Raw:         file.Text,
	}
	m.Name = modelName(file.Path, m.Fields)
	return m
}

// ParseHeaderFields extracts "-- key: value" fields from the leading header
// block. Later duplicate keys overwrite earlier ones.
func ParseHeaderFields(text string) map[string]string {
	header, _ := lexer.SplitHeader(text)
	fields := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		if match := headerFieldPattern.FindStringSubmatch(line); match != nil {
			fields[strings.ToLower(match[1])] = match[2]
		}
	}
	return fields
}

// ParseRefs extracts declared reference names from ref() and source()
// templated calls, in declaration order, without duplicates.
func ParseRefs(text string) []string {
	var refs []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}

	type match struct {
		offset int
		name   string
	}
	var ordered []match
	for _, m := range refPattern.FindAllStringSubmatchIndex(text, -1) {
		ordered = append(ordered, match{offset: m[0], name: text[m[2]:m[3]]})
	}
	for _, m := range sourcePattern.FindAllStringSubmatchIndex(text, -1) {
		ordered = append(ordered, match{offset: m[0], name: text[m[2]:m[3]] + "." + text[m[4]:m[5]]})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].offset < ordered[j].offset })
	for _, m := range ordered {
		add(m.name)
	}
	return refs
}

// modelName derives the canonical name: the explicit header name wins, then
// the file's base name, qualified by an explicit header schema if present.
func modelName(path string, fields map[string]string) string {
	name := fields["name"]
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if schema := fields["schema"]; schema != "" && !strings.Contains(name, ".") {
		name = schema + "." + name
	}
	return name
}
