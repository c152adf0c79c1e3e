package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

func TestMissingHeaderFlagged(t *testing.T) {
	file := core.File{Path: "models/orders.sql", Text: "select 1"}
	model := &core.Model{Name: "orders", Path: file.Path, Raw: file.Text}

	diags := checkMissingHeader(file, model, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "ST01", diags[0].RuleID)
	assert.Equal(t, core.SeverityInfo, diags[0].Severity)
	assert.Equal(t, 1, diags[0].Line)
}

func TestHeaderPresent(t *testing.T) {
	file := core.File{Path: "models/orders.sql", Text: "-- name: orders\nselect 1"}
	model := &core.Model{
		Name:   "orders",
		Path:   file.Path,
		Fields: map[string]string{"name": "orders"},
		Raw:    file.Text,
	}
	assert.Empty(t, checkMissingHeader(file, model, nil))
}

func TestNonModelFileIgnored(t *testing.T) {
	file := core.File{Path: "macros/helper.sql", Text: "select 1"}
	assert.Empty(t, checkMissingHeader(file, nil, nil))
}
