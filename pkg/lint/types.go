// Package lint is the rule-dispatch engine. It defines diagnostics, rule
// definitions, the effective policy, and the Runner that executes every
// enabled rule against a project.
package lint

import (
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/refgraph"
)

// Diagnostic represents one lint finding. Immutable once created.
type Diagnostic struct {
	RuleID   string
	Severity core.Severity
	Category string
	Message  string
	Path     string
	Line     int // 1-based; 0 when the finding has no location
	Column   int // 1-based
	Snippet  string // optional: the offending source fragment
	Fix      string // optional: suggested correction
	DocURL   string // optional: link to rule documentation
}

// less orders diagnostics by (path, line, column) for deterministic output.
func (d Diagnostic) less(other Diagnostic) bool {
	if d.Path != other.Path {
		return d.Path < other.Path
	}
	if d.Line != other.Line {
		return d.Line < other.Line
	}
	if d.Column != other.Column {
		return d.Column < other.Column
	}
	return d.RuleID < other.RuleID
}

// Project is the whole-project view handed to project-level checks.
type Project struct {
	Kind   core.ProjectKind
	Models []*core.Model
	Graph  *refgraph.Graph
}

// NewProject builds a Project, including its reference graph, from models.
func NewProject(kind core.ProjectKind, models []*core.Model) *Project {
	return &Project{
		Kind:   kind,
		Models: models,
		Graph:  refgraph.Build(models),
	}
}

// ModelByPath returns the model at the given path, if any.
func (p *Project) ModelByPath(path string) *core.Model {
	for _, m := range p.Models {
		if m.Path == path {
			return m
		}
	}
	return nil
}

// CheckFileFunc analyzes one file and returns diagnostics.
// The model is nil for non-model files.
type CheckFileFunc func(file core.File, model *core.Model, policy *Policy) []Diagnostic

// CheckProjectFunc analyzes the whole project and returns diagnostics.
type CheckProjectFunc func(project *Project, policy *Policy) []Diagnostic

// RuleDef is a rule definition. Rules are stateless values; all context
// arrives via the check function parameters. Either check may be nil.
type RuleDef struct {
	ID          string        // unique identifier, e.g. "RF01"
	Name        string        // human-readable name, e.g. "references.undefined"
	Group       string        // category, e.g. "references", "convention"
	Description string        // one-line description
	Severity    core.Severity // default severity
	Kinds       []core.ProjectKind // restrict to project kinds; empty = all
	DocURL      string        // optional documentation link

	CheckFile    CheckFileFunc
	CheckProject CheckProjectFunc
}

// AppliesTo returns true if the rule runs for the given project kind.
func (r RuleDef) AppliesTo(kind core.ProjectKind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ResultCache persists diagnostics for clean files between runs. Implemented
// by internal/cache; a nil cache disables caching.
type ResultCache interface {
	// IsCached returns true if path is cached under the given content hash.
	IsCached(path, hash string) bool
	// Get returns the stored diagnostics for a cached path.
	Get(path string) ([]Diagnostic, bool)
	// Update records the diagnostics for a path and hash.
	Update(path, hash string, diags []Diagnostic)
	// Flush persists the cache to disk.
	Flush()
}
