package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for
// a config file.
const maxUpwardSearchLevels = 10

var configFileUsed string

// configExistsIn checks if a leaplint config file exists in the directory.
func configExistsIn(dir string) string {
	for _, name := range []string{".leaplint.yaml", ".leaplint.yml", "leaplint.yaml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRoot searches upward from startDir for a leaplint config file
// and falls back to startDir when none is found.
func findProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return startDir
}

// Load reads configuration for a project rooted at or above dir.
// Precedence, highest to lowest: flags > env vars > config file > defaults.
func Load(dir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = filepath.Clean(dir)
	}

	projectRoot := absDir
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			cfgFile = abs
			projectRoot = filepath.Dir(abs)
		}
	} else {
		projectRoot = findProjectRoot(absDir)
		cfgFile = configExistsIn(projectRoot)
	}

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"models_dir":      DefaultModelsDir,
		"output":          DefaultOutput,
		"strict":          false,
		"max_diagnostics": 0,
		"jobs":            0,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = ""
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
	}

	// LEAPLINT_MODELS_DIR -> models_dir
	if err := k.Load(env.Provider("LEAPLINT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LEAPLINT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case "format":
				return "output", posflag.FlagVal(flags, f)
			case "disable":
				return "exclude", posflag.FlagVal(flags, f)
			case "no-cache":
				return "cache.enabled", false
			case "severity", "config", "watch":
				// Handled outside the config map.
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	if cfg.Kind == "" {
		cfg.Kind = detectKind(projectRoot)
	}

	if flags != nil && flags.Changed("severity") {
		pairs, _ := flags.GetStringSlice("severity")
		if err := cfg.ApplySeverityOverrides(pairs); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// detectKind infers the project flavor from marker files at the root.
func detectKind(root string) string {
	for _, marker := range []string{"dbt_project.yml", "dbt_project.yaml"} {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return string(core.KindDbt)
		}
	}
	return string(core.KindPlain)
}

// ConfigFileUsed returns the path of the config file loaded by the last
// Load call, if any.
func ConfigFileUsed() string {
	return configFileUsed
}

// ModelsPath returns the models directory resolved against the project root.
func (c *Config) ModelsPath() string {
	if filepath.IsAbs(c.ModelsDir) {
		return c.ModelsDir
	}
	return filepath.Join(c.ProjectRoot, c.ModelsDir)
}

// CachePath returns the cache file path resolved against the project root.
func (c *Config) CachePath() string {
	p := c.Cache.Path
	if p == "" {
		p = DefaultCachePath
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}
