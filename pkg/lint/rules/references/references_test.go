package references

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

func project(models ...*core.Model) *lint.Project {
	return lint.NewProject(core.KindDbt, models)
}

func model(name, path string, refs ...string) *core.Model {
	raw := "select * from "
	for _, r := range refs {
		raw += "{{ ref('" + r + "') }} "
	}
	return &core.Model{Name: name, Path: path, Refs: refs, Raw: raw}
}

func TestUndefinedReference(t *testing.T) {
	p := project(
		model("stg_orders", "models/stg_orders.sql"),
		model("orders", "models/orders.sql", "stg_order"),
	)

	diags := checkUndefined(p, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "RF01", diags[0].RuleID)
	assert.Equal(t, core.SeverityError, diags[0].Severity)
	assert.Equal(t, "models/orders.sql", diags[0].Path)
	assert.Contains(t, diags[0].Fix, "stg_orders", "fuzzy match suggested")
	assert.Greater(t, diags[0].Line, 0)
}

func TestUndefinedReferenceNoSuggestion(t *testing.T) {
	p := project(
		model("stg_orders", "models/stg_orders.sql"),
		model("orders", "models/orders.sql", "zzz_nothing_close"),
	)

	diags := checkUndefined(p, nil)
	require.Len(t, diags, 1)
	assert.Empty(t, diags[0].Fix)
}

func TestAmbiguousReference(t *testing.T) {
	p := project(
		model("staging.orders", "models/staging/orders.sql"),
		model("marts.orders", "models/marts/orders.sql"),
		model("report", "models/report.sql", "orders"),
	)

	diags := checkAmbiguous(p, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "RF04", diags[0].RuleID)
	assert.Contains(t, diags[0].Message, "staging.orders")
	assert.Contains(t, diags[0].Message, "marts.orders")
}

func TestQualificationShortenable(t *testing.T) {
	p := project(
		model("staging.orders", "models/staging/orders.sql"),
		model("report", "models/report.sql", "staging.orders"),
	)

	diags := checkQualification(p, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "RF05", diags[0].RuleID)
	assert.Contains(t, diags[0].Message, `"orders"`)
}

func TestQualificationAmbiguousShortNameNotFlagged(t *testing.T) {
	p := project(
		model("staging.orders", "models/staging/orders.sql"),
		model("marts.orders", "models/marts/orders.sql"),
		model("report", "models/report.sql", "staging.orders"),
	)
	assert.Empty(t, checkQualification(p, nil))
}

func TestSelfReference(t *testing.T) {
	p := project(model("orders", "models/orders.sql", "orders"))

	diags := checkSelfReference(p, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "RF06", diags[0].RuleID)
	assert.Equal(t, "models/orders.sql", diags[0].Path)
}

func TestCycleParticipants(t *testing.T) {
	p := project(
		model("a", "models/a.sql", "b"),
		model("b", "models/b.sql", "c"),
		model("c", "models/c.sql", "a"),
		model("d", "models/d.sql", "a"),
	)

	diags := checkCycles(p, nil)
	require.Len(t, diags, 3)
	var paths []string
	for _, d := range diags {
		assert.Equal(t, "RF07", d.RuleID)
		paths = append(paths, d.Path)
	}
	assert.ElementsMatch(t, []string{"models/a.sql", "models/b.sql", "models/c.sql"}, paths)
}
