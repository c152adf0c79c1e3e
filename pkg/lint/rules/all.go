package rules

// Import all rule subpackages to register them with the global registry.
import (
	_ "github.com/leapstack-labs/leaplint/pkg/lint/rules/convention"
	_ "github.com/leapstack-labs/leaplint/pkg/lint/rules/references"
	_ "github.com/leapstack-labs/leaplint/pkg/lint/rules/structure"
)
