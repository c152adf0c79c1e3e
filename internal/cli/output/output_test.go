package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

func sampleResult() lint.Result {
	return lint.Result{
		Diagnostics: []lint.Diagnostic{
			{
				RuleID:   "RF01",
				Severity: core.SeverityError,
				Category: "references",
				Message:  `model "orders" references unknown model "stg_order"`,
				Path:     "models/orders.sql",
				Line:     3,
				Column:   15,
				Fix:      `did you mean "stg_orders"?`,
			},
			{
				RuleID:   "CV05",
				Severity: core.SeverityWarning,
				Category: "convention",
				Message:  `keyword "from" does not match the file's uppercase style`,
				Path:     "models/orders.sql",
				Line:     4,
				Column:   1,
			},
		},
		Stats: lint.Stats{
			FilesChecked: 2,
			FilesSkipped: 1,
			Errors:       1,
			Warnings:     1,
			Elapsed:      12 * time.Millisecond,
			Passed:       false,
			ProjectKind:  "dbt",
		},
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":      ModeTable,
		"table": ModeTable,
		"text":  ModeTable,
		"JSON":  ModeJSON,
		"sarif": ModeSARIF,
	} {
		mode, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, mode, in)
	}

	_, err := ParseMode("xml")
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, ModeTable).Render(sampleResult(), "0.1.0"))

	out := buf.String()
	assert.Contains(t, out, "models/orders.sql:3:15")
	assert.Contains(t, out, "RF01")
	assert.Contains(t, out, `did you mean "stg_orders"?`)
	assert.Contains(t, out, "Checked 3 files (1 from cache)")
	assert.Contains(t, out, "FAIL")
}

func TestRenderTablePassed(t *testing.T) {
	var buf bytes.Buffer
	result := lint.Result{Stats: lint.Stats{FilesChecked: 1, Passed: true}}
	require.NoError(t, NewRenderer(&buf, ModeTable).Render(result, "0.1.0"))
	assert.Contains(t, buf.String(), "PASS")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, ModeJSON).Render(sampleResult(), "0.1.0"))

	var decoded jsonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Diagnostics, 2)
	assert.Equal(t, "RF01", decoded.Diagnostics[0].Rule)
	assert.Equal(t, "error", decoded.Diagnostics[0].Severity)
	assert.Equal(t, 3, decoded.Diagnostics[0].Line)
	assert.Equal(t, 1, decoded.Stats.FilesCached)
	assert.Equal(t, int64(12), decoded.Stats.ElapsedMS)
	assert.False(t, decoded.Stats.Passed)
	assert.Equal(t, "dbt", decoded.Stats.ProjectKind)
}

func TestRenderSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, ModeSARIF).Render(sampleResult(), "0.1.0"))

	var doc sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "leaplint", run.Tool.Driver.Name)
	assert.Equal(t, "0.1.0", run.Tool.Driver.Version)
	require.Len(t, run.Results, 2)

	assert.Equal(t, "RF01", run.Results[0].RuleID)
	assert.Equal(t, "error", run.Results[0].Level)
	require.Len(t, run.Results[0].Locations, 1)
	loc := run.Results[0].Locations[0].PhysicalLocation
	assert.Equal(t, "models/orders.sql", loc.ArtifactLocation.URI)
	require.NotNil(t, loc.Region)
	assert.Equal(t, 3, loc.Region.StartLine)

	assert.Equal(t, "warning", run.Results[1].Level)
}

func TestRenderSARIFInfoMapsToNote(t *testing.T) {
	result := lint.Result{
		Diagnostics: []lint.Diagnostic{{
			RuleID:   "RF05",
			Severity: core.SeverityInfo,
			Message:  "shortenable",
			Path:     "models/report.sql",
			Line:     1,
		}},
		Stats: lint.Stats{Passed: true},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, ModeSARIF).Render(result, "0.1.0"))

	var doc sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Runs[0].Results, 1)
	assert.Equal(t, "note", doc.Runs[0].Results[0].Level)
}
