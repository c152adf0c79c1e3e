// Package rules provides the built-in lint rule implementations.
//
// Rules are organized by category:
//   - references: reference resolution across the model graph (RF01-RF07)
//   - convention: SQL conventions over the token stream (CV05-CV10)
//   - structure: model file structure (ST01)
//
// To register all rules with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/leaplint/pkg/lint/rules"
package rules
