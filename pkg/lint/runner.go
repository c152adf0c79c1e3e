package lint

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// InternalRuleID is the reserved rule id for synthetic diagnostics produced
// at the fault-isolation boundary.
const InternalRuleID = "internal"

// Stats summarizes one run.
type Stats struct {
	FilesChecked int
	FilesSkipped int // served from the cache
	Errors       int
	Warnings     int
	Infos        int
	Elapsed      time.Duration
	Passed       bool
	ProjectKind  string
}

// Result is the outcome of a run: the ordered diagnostics plus statistics.
type Result struct {
	Diagnostics []Diagnostic
	Stats       Stats
}

// Runner executes every enabled rule against a project's files and models.
type Runner struct {
	policy  *Policy
	cache   ResultCache
	rules   []RuleDef
	logger  *slog.Logger
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache attaches a result cache.
func WithCache(c ResultCache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithWorkers sets the per-file worker pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRules overrides the registry rule set. Used for testing.
func WithRules(rules []RuleDef) Option {
	return func(r *Runner) { r.rules = rules }
}

// NewRunner creates a Runner over the registered rules.
func NewRunner(policy *Policy, opts ...Option) *Runner {
	r := &Runner{
		policy:  policy,
		rules:   All(),
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// fileOutcome holds one file's diagnostics from the parallel phase.
type fileOutcome struct {
	file  core.File
	diags []Diagnostic
}

// Run executes the two-phase check: per-file rules in parallel over uncached
// files, then project rules sequentially. The run always completes; rule
// faults become synthetic diagnostics rather than aborting.
func (r *Runner) Run(files []core.File, models []*core.Model) Result {
	start := time.Now()
	kind := core.KindUnknown
	if r.policy != nil && r.policy.Kind != "" {
		kind = r.policy.Kind
	}
	project := NewProject(kind, models)

	modelsByPath := make(map[string]*core.Model, len(models))
	for _, m := range models {
		modelsByPath[m.Path] = m
	}

	// Partition files through the cache.
	var toCheck []core.File
	var cached []Diagnostic
	skipped := 0
	for _, f := range files {
		if r.cache != nil && r.cache.IsCached(f.Path, f.ContentHash) {
			skipped++
			if diags, ok := r.cache.Get(f.Path); ok {
				cached = append(cached, diags...)
			}
			continue
		}
		toCheck = append(toCheck, f)
	}
	r.logger.Debug("partitioned files", "total", len(files), "cached", skipped)

	// Phase 1: per-file rules, files in parallel, rules per file in
	// sequence. Each goroutine writes only its own slot.
	outcomes := make([]fileOutcome, len(toCheck))
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, f := range toCheck {
		i, f := i, f
		g.Go(func() error {
			outcomes[i] = fileOutcome{file: f, diags: r.checkFile(f, modelsByPath[f.Path])}
			return nil
		})
	}
	_ = g.Wait()

	// Cache updates are applied single-threaded after the pool joins.
	maxDiags := 0
	if r.policy != nil {
		maxDiags = r.policy.MaxDiagnostics
	}
	merged := append([]Diagnostic(nil), cached...)
	for _, out := range outcomes {
		if r.cache != nil {
			r.cache.Update(out.file.Path, out.file.ContentHash, out.diags)
		}
		// The accumulation loop may stop early once the cap is hit;
		// project-level results below are still merged before the
		// final truncation.
		if maxDiags > 0 && len(merged) >= maxDiags {
			continue
		}
		merged = append(merged, out.diags...)
	}

	// Phase 2: project rules, strictly sequential.
	merged = append(merged, r.checkProject(project)...)

	if maxDiags > 0 && len(merged) > maxDiags {
		merged = merged[:maxDiags]
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].less(merged[j]) })

	stats := Stats{
		FilesChecked: len(toCheck),
		FilesSkipped: skipped,
		Elapsed:      time.Since(start),
		ProjectKind:  kind.String(),
	}
	for _, d := range merged {
		switch d.Severity {
		case core.SeverityError:
			stats.Errors++
		case core.SeverityWarning:
			stats.Warnings++
		default:
			stats.Infos++
		}
	}
	stats.Passed = stats.Errors == 0
	if r.policy != nil && r.policy.Strict {
		stats.Passed = stats.Errors == 0 && stats.Warnings == 0
	}

	if r.cache != nil {
		r.cache.Flush()
	}
	r.logger.Info("run complete",
		"files", stats.FilesChecked,
		"skipped", stats.FilesSkipped,
		"errors", stats.Errors,
		"warnings", stats.Warnings,
		"elapsed", stats.Elapsed,
	)
	return Result{Diagnostics: merged, Stats: stats}
}

// checkFile runs every enabled per-file rule against one file.
func (r *Runner) checkFile(f core.File, model *core.Model) []Diagnostic {
	var diags []Diagnostic
	for _, rule := range r.rules {
		if rule.CheckFile == nil || !rule.AppliesTo(r.kind()) {
			continue
		}
		if !r.policy.Enabled(rule.ID, f.Path) {
			continue
		}
		diags = append(diags, r.invokeFile(rule, f, model)...)
	}
	return diags
}

// checkProject runs every enabled project rule exactly once.
func (r *Runner) checkProject(project *Project) []Diagnostic {
	var diags []Diagnostic
	for _, rule := range r.rules {
		if rule.CheckProject == nil || !rule.AppliesTo(r.kind()) {
			continue
		}
		if !r.policy.Enabled(rule.ID, "") {
			continue
		}
		diags = append(diags, r.invokeProject(rule, project)...)
	}
	return diags
}

// invokeFile calls one per-file rule inside the fault-isolation boundary.
func (r *Runner) invokeFile(rule RuleDef, f core.File, model *core.Model) (diags []Diagnostic) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("rule panicked", "rule", rule.ID, "path", f.Path, "panic", rec)
			diags = []Diagnostic{faultDiagnostic(rule.ID, f.Path, rec)}
		}
	}()
	diags = rule.CheckFile(f, model, r.policy)
	r.applySeverity(rule, diags)
	return diags
}

// invokeProject calls one project rule inside the fault-isolation boundary.
func (r *Runner) invokeProject(rule RuleDef, project *Project) (diags []Diagnostic) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("rule panicked", "rule", rule.ID, "panic", rec)
			diags = []Diagnostic{faultDiagnostic(rule.ID, "", rec)}
		}
	}()
	diags = rule.CheckProject(project, r.policy)
	r.applySeverity(rule, diags)
	return diags
}

// applySeverity resolves each diagnostic's severity through the policy.
func (r *Runner) applySeverity(rule RuleDef, diags []Diagnostic) {
	for i := range diags {
		diags[i].Severity = r.policy.EffectiveSeverity(rule.ID, diags[i].Path, diags[i].Severity)
	}
}

// faultDiagnostic converts a rule failure into one synthetic warning.
func faultDiagnostic(ruleID, path string, rec any) Diagnostic {
	return Diagnostic{
		RuleID:   InternalRuleID,
		Severity: core.SeverityWarning,
		Category: "internal",
		Message:  fmt.Sprintf("rule %s failed: %v", ruleID, rec),
		Path:     path,
	}
}

func (r *Runner) kind() core.ProjectKind {
	if r.policy == nil || r.policy.Kind == "" {
		return core.KindUnknown
	}
	return r.policy.Kind
}
