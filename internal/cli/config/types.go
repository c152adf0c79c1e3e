// Package config loads CLI configuration for leaplint from the project
// config file, environment variables, and command-line flags, and converts
// it into an engine policy.
package config

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// Default configuration values.
const (
	DefaultModelsDir = "models"
	DefaultCachePath = ".leaplint/cache.json"
	DefaultOutput    = "table"
)

// RuleConfig holds the per-rule settings a config file can declare.
// A nil Enabled leaves the coded default in place.
type RuleConfig struct {
	Enabled  *bool  `koanf:"enabled"`
	Severity string `koanf:"severity"`
}

// PathConfig is a path-pattern override block. Later declarations win over
// earlier ones when several patterns match the same file.
type PathConfig struct {
	Pattern string                `koanf:"pattern"`
	Rules   map[string]RuleConfig `koanf:"rules"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled *bool  `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot string // derived, not a config key

	Kind           string                `koanf:"kind"`
	ModelsDir      string                `koanf:"models_dir"`
	Output         string                `koanf:"output"`
	Strict         bool                  `koanf:"strict"`
	MaxDiagnostics int                   `koanf:"max_diagnostics"`
	Jobs           int                   `koanf:"jobs"`
	Verbose        bool                  `koanf:"verbose"`
	Select         []string              `koanf:"select"`
	Exclude        []string              `koanf:"exclude"`
	Rules          map[string]RuleConfig `koanf:"rules"`
	Paths          []PathConfig          `koanf:"paths"`
	Cache          CacheConfig           `koanf:"cache"`
}

// CacheEnabled reports whether the result cache should be used.
func (c *Config) CacheEnabled() bool {
	if c.Cache.Enabled == nil {
		return true
	}
	return *c.Cache.Enabled
}

// ApplySeverityOverrides merges "RULE=severity" pairs from the command line
// into the per-rule settings. Flag values win over the config file.
func (c *Config) ApplySeverityOverrides(pairs []string) error {
	for _, pair := range pairs {
		id, level, ok := splitPair(pair)
		if !ok {
			return fmt.Errorf("invalid severity override %q: expected RULE=level", pair)
		}
		if _, ok := core.ParseSeverity(level); !ok {
			return fmt.Errorf("invalid severity %q for rule %s", level, id)
		}
		if c.Rules == nil {
			c.Rules = make(map[string]RuleConfig)
		}
		rc := c.Rules[id]
		rc.Severity = level
		c.Rules[id] = rc
	}
	return nil
}

func splitPair(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], i > 0 && i < len(s)-1
		}
	}
	return "", "", false
}

// ToPolicy converts the configuration into an engine policy. It fails on
// unparseable severities so a bad config surfaces before any checking runs.
func (c *Config) ToPolicy() (*lint.Policy, error) {
	policy := &lint.Policy{
		Select:         c.Select,
		Exclude:        c.Exclude,
		MaxDiagnostics: c.MaxDiagnostics,
		Strict:         c.Strict,
		Kind:           core.ProjectKind(c.Kind),
	}

	if len(c.Rules) > 0 {
		policy.Rules = make(map[string]lint.RuleSetting, len(c.Rules))
		ids := make([]string, 0, len(c.Rules))
		for id := range c.Rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			setting, err := toSetting(id, c.Rules[id])
			if err != nil {
				return nil, err
			}
			policy.Rules[id] = setting
		}
	}

	for _, p := range c.Paths {
		if p.Pattern == "" {
			return nil, fmt.Errorf("path override without a pattern")
		}
		override := lint.PathOverride{
			Pattern: p.Pattern,
			Rules:   make(map[string]lint.RuleSetting, len(p.Rules)),
		}
		for id, rc := range p.Rules {
			setting, err := toSetting(id, rc)
			if err != nil {
				return nil, err
			}
			override.Rules[id] = setting
		}
		policy.Paths = append(policy.Paths, override)
	}

	return policy, nil
}

func toSetting(id string, rc RuleConfig) (lint.RuleSetting, error) {
	setting := lint.RuleSetting{Enabled: rc.Enabled}
	if rc.Severity != "" {
		sev, ok := core.ParseSeverity(rc.Severity)
		if !ok {
			return lint.RuleSetting{}, fmt.Errorf("invalid severity %q for rule %s", rc.Severity, id)
		}
		setting.Severity = &sev
	}
	return setting, nil
}
