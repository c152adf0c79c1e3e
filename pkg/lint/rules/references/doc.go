// Package references implements rules over the resolved model reference
// graph: undefined references, ambiguous short names, redundant qualifiers,
// self-references, and dependency cycles.
package references
