// Package output renders run results as a terminal table, machine-readable
// JSON, or SARIF for code-scanning integrations.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// Mode selects the output format.
type Mode string

// Supported output modes.
const (
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeSARIF Mode = "sarif"
)

// ParseMode validates a format string from a flag or config file.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeTable, "", "text":
		return ModeTable, nil
	case ModeJSON:
		return ModeJSON, nil
	case ModeSARIF:
		return ModeSARIF, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, or sarif)", s)
	}
}

// Renderer writes run results in a fixed mode.
type Renderer struct {
	out  io.Writer
	mode Mode
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, mode Mode) *Renderer {
	return &Renderer{out: out, mode: mode}
}

// Render writes the result in the renderer's mode.
func (r *Renderer) Render(result lint.Result, engineVersion string) error {
	switch r.mode {
	case ModeJSON:
		return r.renderJSON(result)
	case ModeSARIF:
		return r.renderSARIF(result, engineVersion)
	default:
		return r.renderTable(result)
	}
}

func (r *Renderer) renderTable(result lint.Result) error {
	if len(result.Diagnostics) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Location", "Severity", "Rule", "Message"})

		for _, d := range result.Diagnostics {
			t.AppendRow(table.Row{
				location(d),
				severityCell(d.Severity),
				d.RuleID,
				message(d),
			})
		}
		t.Render()
		fmt.Fprintln(r.out)
	}

	s := result.Stats
	fmt.Fprintf(r.out, "Checked %d files (%d from cache) in %s: %d errors, %d warnings, %d notes\n",
		s.FilesChecked+s.FilesSkipped, s.FilesSkipped, s.Elapsed.Round(time.Millisecond),
		s.Errors, s.Warnings, s.Infos)
	if s.Passed {
		fmt.Fprintln(r.out, text.FgGreen.Sprint("PASS"))
	} else {
		fmt.Fprintln(r.out, text.FgRed.Sprint("FAIL"))
	}
	return nil
}

func location(d lint.Diagnostic) string {
	if d.Line == 0 {
		return d.Path
	}
	return fmt.Sprintf("%s:%d:%d", d.Path, d.Line, d.Column)
}

func message(d lint.Diagnostic) string {
	if d.Fix == "" {
		return d.Message
	}
	return d.Message + " (" + d.Fix + ")"
}

func severityCell(s core.Severity) string {
	switch s {
	case core.SeverityError:
		return text.FgRed.Sprint("error")
	case core.SeverityWarning:
		return text.FgYellow.Sprint("warning")
	default:
		return text.FgCyan.Sprint("info")
	}
}

// jsonDiagnostic mirrors lint.Diagnostic with stable lowercase keys.
type jsonDiagnostic struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Path     string `json:"path"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
	Fix      string `json:"fix,omitempty"`
}

type jsonResult struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Stats       jsonStats        `json:"stats"`
}

type jsonStats struct {
	FilesChecked int    `json:"files_checked"`
	FilesCached  int    `json:"files_cached"`
	Errors       int    `json:"errors"`
	Warnings     int    `json:"warnings"`
	Infos        int    `json:"infos"`
	ElapsedMS    int64  `json:"elapsed_ms"`
	Passed       bool   `json:"passed"`
	ProjectKind  string `json:"project_kind"`
}

func (r *Renderer) renderJSON(result lint.Result) error {
	out := jsonResult{
		Diagnostics: make([]jsonDiagnostic, 0, len(result.Diagnostics)),
		Stats: jsonStats{
			FilesChecked: result.Stats.FilesChecked,
			FilesCached:  result.Stats.FilesSkipped,
			Errors:       result.Stats.Errors,
			Warnings:     result.Stats.Warnings,
			Infos:        result.Stats.Infos,
			ElapsedMS:    result.Stats.Elapsed.Milliseconds(),
			Passed:       result.Stats.Passed,
			ProjectKind:  result.Stats.ProjectKind,
		},
	}
	for _, d := range result.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Rule:     d.RuleID,
			Severity: d.Severity.String(),
			Category: d.Category,
			Message:  d.Message,
			Path:     d.Path,
			Line:     d.Line,
			Column:   d.Column,
			Snippet:  d.Snippet,
			Fix:      d.Fix,
		})
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
