package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// RuleSetting is one enable/severity override for a rule. Nil fields leave
// the lower-precedence decision in place.
type RuleSetting struct {
	Enabled  *bool
	Severity *core.Severity
}

// PathOverride applies rule settings to paths matching a glob pattern.
// Patterns use doublestar syntax ("models/staging/**").
type PathOverride struct {
	Pattern string
	Rules   map[string]RuleSetting
}

// Policy is the fully resolved enable/severity decision surface for all
// (rule, path) pairs. It is built by the caller before the engine runs and is
// read-only afterward.
type Policy struct {
	// Select limits the run to rules whose ID matches one of these
	// prefixes. Empty means all rules.
	Select []string
	// Exclude skips rules whose ID matches one of these prefixes.
	Exclude []string
	// Rules holds global per-rule overrides.
	Rules map[string]RuleSetting
	// Paths holds ordered path-pattern overrides. The last declared
	// matching pattern wins over earlier ones and over Rules.
	Paths []PathOverride

	// MaxDiagnostics caps the merged diagnostic list. 0 means unlimited.
	MaxDiagnostics int
	// Strict makes warnings fail the run.
	Strict bool
	// Kind gates kind-specific rules.
	Kind core.ProjectKind
}

// Enabled returns true if the rule runs for the given path.
func (p *Policy) Enabled(ruleID, path string) bool {
	if p == nil {
		return true
	}
	if matchesPrefix(p.Exclude, ruleID) {
		return false
	}
	if len(p.Select) > 0 && !matchesPrefix(p.Select, ruleID) {
		return false
	}
	if s, ok := p.pathSetting(ruleID, path); ok && s.Enabled != nil {
		return *s.Enabled
	}
	if s, ok := p.Rules[ruleID]; ok && s.Enabled != nil {
		return *s.Enabled
	}
	return true
}

// EffectiveSeverity returns the severity for a (rule, path) pair, falling
// back to the rule's coded default.
func (p *Policy) EffectiveSeverity(ruleID, path string, def core.Severity) core.Severity {
	if p == nil {
		return def
	}
	if s, ok := p.pathSetting(ruleID, path); ok && s.Severity != nil {
		return *s.Severity
	}
	if s, ok := p.Rules[ruleID]; ok && s.Severity != nil {
		return *s.Severity
	}
	return def
}

// pathSetting returns the winning path override setting for a (rule, path)
// pair. Later declarations win, so the scan runs back to front.
func (p *Policy) pathSetting(ruleID, path string) (RuleSetting, bool) {
	for i := len(p.Paths) - 1; i >= 0; i-- {
		ov := p.Paths[i]
		s, ok := ov.Rules[ruleID]
		if !ok {
			continue
		}
		matched, err := doublestar.Match(ov.Pattern, path)
		if err != nil || !matched {
			continue
		}
		return s, true
	}
	return RuleSetting{}, false
}

// matchesPrefix returns true if id starts with any of the prefixes.
func matchesPrefix(prefixes []string, id string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// IdentityHash returns a stable hex digest of the policy. Logically equal
// policies hash equally: map keys are serialized sorted at every nesting
// level, while ordered fields keep their declared order.
func (p *Policy) IdentityHash() string {
	h := sha256.New()
	if p == nil {
		return hex.EncodeToString(h.Sum(nil))
	}

	writeList := func(label string, items []string) {
		sorted := append([]string(nil), items...)
		sort.Strings(sorted)
		fmt.Fprintf(h, "%s:%q;", label, sorted)
	}
	writeList("select", p.Select)
	writeList("exclude", p.Exclude)

	writeSettings(h, p.Rules)
	for _, ov := range p.Paths {
		fmt.Fprintf(h, "path:%q;", ov.Pattern)
		writeSettings(h, ov.Rules)
	}

	fmt.Fprintf(h, "max:%d;strict:%t;kind:%s;", p.MaxDiagnostics, p.Strict, p.Kind)
	return hex.EncodeToString(h.Sum(nil))
}

// writeSettings serializes a settings map with sorted keys.
func writeSettings(w io.Writer, settings map[string]RuleSetting) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := settings[k]
		enabled, severity := "nil", "nil"
		if s.Enabled != nil {
			enabled = fmt.Sprintf("%t", *s.Enabled)
		}
		if s.Severity != nil {
			severity = s.Severity.String()
		}
		fmt.Fprintf(w, "rule:%s=%s/%s;", k, enabled, severity)
	}
}

// Off returns a RuleSetting that disables a rule.
func Off() RuleSetting {
	off := false
	return RuleSetting{Enabled: &off}
}

// At returns a RuleSetting that overrides severity.
func At(sev core.Severity) RuleSetting {
	return RuleSetting{Severity: &sev}
}

// OffAt returns a RuleSetting with both fields set.
func OffAt(enabled bool, sev core.Severity) RuleSetting {
	return RuleSetting{Enabled: &enabled, Severity: &sev}
}
