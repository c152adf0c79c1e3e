// Package refgraph resolves model references.
//
// A Graph is built once per run from all models and is read-only afterward.
// It answers existence and ambiguity queries, proposes fuzzy-matched
// corrections, and detects reference cycles.
package refgraph

import (
	"sort"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// MaxSuggestionDistance is the largest edit distance Closest will accept.
const MaxSuggestionDistance = 2

// Graph is the name registry plus the resolved reference edges.
type Graph struct {
	// names maps every short and canonical name to the canonical model
	// names it can denote, in first-seen order.
	names map[string][]string
	// refs maps canonical name -> declared reference names, in order.
	refs map[string][]string
	// canonical holds all canonical names in first-seen order.
	canonical []string
}

// Build constructs a Graph from all models of a run.
func Build(models []*core.Model) *Graph {
	g := &Graph{
		names: make(map[string][]string),
		refs:  make(map[string][]string),
	}
	for _, m := range models {
		if _, seen := g.refs[m.Name]; !seen {
			g.canonical = append(g.canonical, m.Name)
		}
		g.refs[m.Name] = append([]string(nil), m.Refs...)
		g.addName(m.Name, m.Name)
		if short := m.ShortName(); short != m.Name {
			g.addName(short, m.Name)
		}
	}
	return g
}

// addName records that name can denote canonical, once.
func (g *Graph) addName(name, canonical string) {
	for _, c := range g.names[name] {
		if c == canonical {
			return
		}
	}
	g.names[name] = append(g.names[name], canonical)
}

// Resolves returns true if name (short or canonical) denotes at least one
// known model.
func (g *Graph) Resolves(name string) bool {
	return len(g.names[name]) > 0
}

// Targets returns the canonical names a reference can denote.
func (g *Graph) Targets(name string) []string {
	return g.names[name]
}

// Ambiguous returns true if name is a short name denoting two or more
// distinct canonical models.
func (g *Graph) Ambiguous(name string) bool {
	return len(g.names[name]) >= 2
}

// Shortenable returns true if name is fully qualified but its short form
// denotes exactly one canonical model, so the qualifier is redundant.
func (g *Graph) Shortenable(name string) bool {
	if !core.IsQualified(name) {
		return false
	}
	targets := g.names[core.ShortName(name)]
	return len(targets) == 1 && targets[0] == name
}

// Closest returns the known name nearest to name within
// MaxSuggestionDistance edits, or "" if none qualifies. Ties keep the
// first-found minimum.
func (g *Graph) Closest(name string) string {
	best := ""
	bestDist := MaxSuggestionDistance + 1
	for _, candidate := range g.allNames() {
		if candidate == name {
			continue
		}
		d := editDistance(name, candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// allNames returns every registered name, canonical first, deterministically.
func (g *Graph) allNames() []string {
	seen := make(map[string]bool, len(g.names))
	var out []string
	for _, c := range g.canonical {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
		short := core.ShortName(c)
		if !seen[short] {
			seen[short] = true
			out = append(out, short)
		}
	}
	return out
}

// Canonical returns all canonical model names in first-seen order.
func (g *Graph) Canonical() []string {
	return g.canonical
}

// SelfReferential returns the canonical names that declare a reference to
// themselves, the degenerate one-node cycle.
func (g *Graph) SelfReferential() []string {
	var out []string
	for _, name := range g.canonical {
		for _, ref := range g.refs[name] {
			if ref == name || (core.ShortName(name) == ref && len(g.names[ref]) == 1 && g.names[ref][0] == name) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Cycles returns every canonical model that participates in at least one
// reference cycle. When a back edge is found, every node from the back
// edge's target through the current node is marked, so overlapping cycles
// are fully captured.
func (g *Graph) Cycles() map[string]bool {
	participants := make(map[string]bool)
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var dfs func(name string)
	dfs = func(name string) {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)

		for _, ref := range g.refs[name] {
			for _, target := range g.names[ref] {
				if !visited[target] {
					dfs(target)
				} else if onStack[target] {
					// Mark the whole segment from the back edge's
					// target through the current node.
					for i := len(stack) - 1; i >= 0; i-- {
						participants[stack[i]] = true
						if stack[i] == target {
							break
						}
					}
				}
			}
		}

		onStack[name] = false
		stack = stack[:len(stack)-1]
	}

	// Sorted roots keep traversal order deterministic.
	roots := append([]string(nil), g.canonical...)
	sort.Strings(roots)
	for _, name := range roots {
		if !visited[name] {
			dfs(name)
		}
	}
	return participants
}

// editDistance is the full dynamic-programming Levenshtein distance with
// unit-cost insert, delete, and substitute.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
	return matrix[len(a)][len(b)]
}
