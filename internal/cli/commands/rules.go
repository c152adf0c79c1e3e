package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplint/pkg/lint"
	_ "github.com/leapstack-labs/leaplint/pkg/lint/rules" // register built-in rules
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	var (
		group  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available rules",
		Long: `List every registered rule with its group, default severity, and
description, or show one rule in detail.`,
		Example: `  # List all rules
  leaplint rules

  # Show one rule
  leaplint rules RF01

  # Only convention rules, as JSON
  leaplint rules --group convention --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], format)
			}
			return listRules(cmd, group, format)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Filter by group")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json")

	return cmd
}

// ruleInfo is the serializable view of a rule definition.
type ruleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Group       string `json:"group"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Kinds       string `json:"kinds,omitempty"`
	DocURL      string `json:"doc_url,omitempty"`
}

func toInfo(def lint.RuleDef) ruleInfo {
	info := ruleInfo{
		ID:          def.ID,
		Name:        def.Name,
		Group:       def.Group,
		Severity:    def.Severity.String(),
		Description: def.Description,
		DocURL:      def.DocURL,
	}
	if len(def.Kinds) > 0 {
		var kinds []string
		for _, k := range def.Kinds {
			kinds = append(kinds, k.String())
		}
		info.Kinds = strings.Join(kinds, ", ")
	}
	return info
}

func listRules(cmd *cobra.Command, group, format string) error {
	var rules []ruleInfo
	for _, def := range lint.All() {
		if group != "" && def.Group != group {
			continue
		}
		rules = append(rules, toInfo(def))
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rules)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Severity", "Description"})
	for _, r := range rules {
		t.AppendRow(table.Row{r.ID, r.Name, r.Severity, r.Description})
	}
	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d rules\n", len(rules))
	return nil
}

func showRule(cmd *cobra.Command, ruleID, format string) error {
	def, ok := lint.Get(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := toInfo(def)

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s - %s\n\n", info.ID, info.Name)
	fmt.Fprintf(out, "  Group:    %s\n", info.Group)
	fmt.Fprintf(out, "  Severity: %s\n", info.Severity)
	if info.Kinds != "" {
		fmt.Fprintf(out, "  Kinds:    %s\n", info.Kinds)
	}
	fmt.Fprintf(out, "\n  %s\n", info.Description)
	if info.DocURL != "" {
		fmt.Fprintf(out, "\n  Docs: %s\n", info.DocURL)
	}
	return nil
}
