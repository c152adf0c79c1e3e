package lint

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/internal/testutil"
	"github.com/leapstack-labs/leaplint/pkg/core"
)

func fileDiag(ruleID string, sev core.Severity, path string, line int) Diagnostic {
	return Diagnostic{RuleID: ruleID, Severity: sev, Message: ruleID, Path: path, Line: line, Column: 1}
}

func testFiles(n int) []core.File {
	files := make([]core.File, n)
	for i := range files {
		files[i] = core.File{
			Path:        fmt.Sprintf("models/m%02d.sql", i),
			Text:        "select 1",
			ContentHash: fmt.Sprintf("hash%02d", i),
		}
	}
	return files
}

func TestRunnerBasic(t *testing.T) {
	rule := RuleDef{
		ID:       "T01",
		Severity: core.SeverityWarning,
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("T01", core.SeverityWarning, f.Path, 1)}
		},
	}
	r := NewRunner(&Policy{}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(testFiles(3), nil)

	assert.Len(t, res.Diagnostics, 3)
	assert.Equal(t, 3, res.Stats.FilesChecked)
	assert.Equal(t, 3, res.Stats.Warnings)
	assert.True(t, res.Stats.Passed)
}

func TestRunnerFaultIsolation(t *testing.T) {
	panicking := RuleDef{
		ID: "BAD",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			if f.Path == "models/m01.sql" {
				panic("boom")
			}
			return nil
		},
	}
	healthy := RuleDef{
		ID:       "OK",
		Severity: core.SeverityInfo,
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("OK", core.SeverityInfo, f.Path, 1)}
		},
	}
	r := NewRunner(&Policy{}, WithRules([]RuleDef{panicking, healthy}), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(testFiles(3), nil)

	var synthetic, ok int
	for _, d := range res.Diagnostics {
		switch d.RuleID {
		case InternalRuleID:
			synthetic++
			assert.Equal(t, core.SeverityWarning, d.Severity)
			assert.Contains(t, d.Message, "BAD")
		case "OK":
			ok++
		}
	}
	assert.Equal(t, 1, synthetic, "one synthetic diagnostic for the failing rule")
	assert.Equal(t, 3, ok, "sibling rule diagnostics are preserved on every file")
}

func TestRunnerProjectFaultIsolation(t *testing.T) {
	rule := RuleDef{
		ID: "PBAD",
		CheckProject: func(_ *Project, _ *Policy) []Diagnostic {
			panic("project boom")
		},
	}
	r := NewRunner(&Policy{}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(nil, nil)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, InternalRuleID, res.Diagnostics[0].RuleID)
}

func TestRunnerSortedOutput(t *testing.T) {
	rule := RuleDef{
		ID: "T01",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{
				fileDiag("T01", core.SeverityInfo, f.Path, 9),
				fileDiag("T01", core.SeverityInfo, f.Path, 2),
			}
		},
	}
	r := NewRunner(&Policy{}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)), WithWorkers(4))
	res := r.Run(testFiles(5), nil)

	for i := 1; i < len(res.Diagnostics); i++ {
		prev, cur := res.Diagnostics[i-1], res.Diagnostics[i]
		less := prev.Path < cur.Path || (prev.Path == cur.Path && prev.Line <= cur.Line)
		assert.True(t, less, "diagnostics out of order at %d", i)
	}
}

func TestRunnerDeterminism(t *testing.T) {
	rule := RuleDef{
		ID: "T01",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("T01", core.SeverityWarning, f.Path, 1)}
		},
	}
	run := func() []Diagnostic {
		r := NewRunner(&Policy{}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)), WithWorkers(8))
		return r.Run(testFiles(20), nil).Diagnostics
	}
	assert.Equal(t, run(), run())
}

func TestRunnerMaxDiagnostics(t *testing.T) {
	fileRule := RuleDef{
		ID: "T01",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("T01", core.SeverityWarning, f.Path, 1)}
		},
	}
	projectRule := RuleDef{
		ID: "P01",
		CheckProject: func(_ *Project, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("P01", core.SeverityError, "", 0)}
		},
	}
	r := NewRunner(&Policy{MaxDiagnostics: 5},
		WithRules([]RuleDef{fileRule, projectRule}), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(testFiles(20), nil)
	assert.Len(t, res.Diagnostics, 5)

	// With headroom under the cap, cross-file results are merged before
	// the truncation and survive.
	r = NewRunner(&Policy{MaxDiagnostics: 5},
		WithRules([]RuleDef{fileRule, projectRule}), WithLogger(testutil.NewTestLogger(t)))
	res = r.Run(testFiles(3), nil)
	require.Len(t, res.Diagnostics, 4)
	var sawProject bool
	for _, d := range res.Diagnostics {
		if d.RuleID == "P01" {
			sawProject = true
		}
	}
	assert.True(t, sawProject)
}

func TestRunnerUnlimitedWhenCapZero(t *testing.T) {
	rule := RuleDef{
		ID: "T01",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("T01", core.SeverityInfo, f.Path, 1)}
		},
	}
	r := NewRunner(&Policy{MaxDiagnostics: 0}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(testFiles(50), nil)
	assert.Len(t, res.Diagnostics, 50)
}

func TestRunnerPolicyDisablesRule(t *testing.T) {
	rule := RuleDef{
		ID: "T01",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("T01", core.SeverityWarning, f.Path, 1)}
		},
	}
	p := &Policy{Rules: map[string]RuleSetting{"T01": Off()}}
	r := NewRunner(p, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(testFiles(3), nil)
	assert.Empty(t, res.Diagnostics)
}

func TestRunnerKindGating(t *testing.T) {
	gated := RuleDef{
		ID:    "DBT1",
		Kinds: []core.ProjectKind{core.KindDbt},
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("DBT1", core.SeverityWarning, f.Path, 1)}
		},
	}

	r := NewRunner(&Policy{Kind: core.KindPlain}, WithRules([]RuleDef{gated}), WithLogger(testutil.NewTestLogger(t)))
	assert.Empty(t, r.Run(testFiles(2), nil).Diagnostics)

	r = NewRunner(&Policy{Kind: core.KindDbt}, WithRules([]RuleDef{gated}), WithLogger(testutil.NewTestLogger(t)))
	assert.Len(t, r.Run(testFiles(2), nil).Diagnostics, 2)
}

func TestRunnerStrictMode(t *testing.T) {
	rule := RuleDef{
		ID: "W1",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("W1", core.SeverityWarning, f.Path, 1)}
		},
	}
	r := NewRunner(&Policy{}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)))
	assert.True(t, r.Run(testFiles(1), nil).Stats.Passed)

	r = NewRunner(&Policy{Strict: true}, WithRules([]RuleDef{rule}), WithLogger(testutil.NewTestLogger(t)))
	assert.False(t, r.Run(testFiles(1), nil).Stats.Passed)
}

// memCache is a minimal in-memory ResultCache for runner tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
	diags   map[string][]Diagnostic
	updates int
	flushes int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string), diags: make(map[string][]Diagnostic)}
}

func (c *memCache) IsCached(path, hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[path] == hash
}

func (c *memCache) Get(path string) ([]Diagnostic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.diags[path]
	return d, ok
}

func (c *memCache) Update(path, hash string, diags []Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = hash
	c.diags[path] = diags
	c.updates++
}

func (c *memCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
}

func TestRunnerCachePartition(t *testing.T) {
	rule := RuleDef{
		ID: "T01",
		CheckFile: func(f core.File, _ *core.Model, _ *Policy) []Diagnostic {
			return []Diagnostic{fileDiag("T01", core.SeverityInfo, f.Path, 1)}
		},
	}
	cache := newMemCache()
	files := testFiles(4)
	cache.Update(files[0].Path, files[0].ContentHash, []Diagnostic{fileDiag("T01", core.SeverityInfo, files[0].Path, 1)})
	cache.updates = 0

	r := NewRunner(&Policy{}, WithRules([]RuleDef{rule}), WithCache(cache), WithLogger(testutil.NewTestLogger(t)))
	res := r.Run(files, nil)

	assert.Equal(t, 3, res.Stats.FilesChecked)
	assert.Equal(t, 1, res.Stats.FilesSkipped)
	assert.Len(t, res.Diagnostics, 4, "cached diagnostics are replayed")
	assert.Equal(t, 3, cache.updates, "only rechecked files are updated")
	assert.Equal(t, 1, cache.flushes)
}
