// Package cache persists lint results for clean files between runs.
//
// The cache is a performance optimization, never a correctness requirement:
// every I/O failure is logged and swallowed, and a lost cache only means the
// next run rechecks everything. A file is cached only when its check produced
// zero error-severity diagnostics, so files still in error are re-verified on
// every run.
package cache

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// SchemaVersion identifies the cache file shape. Any change to the on-disk
// structures bumps it, invalidating older caches wholesale.
const SchemaVersion = 1

// Entry records one clean file's last check.
type Entry struct {
	Hash        string       `json:"hash"`
	CheckedAt   time.Time    `json:"checked_at"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic is the reduced projection stored per entry.
type Diagnostic struct {
	RuleID   string        `json:"rule_id"`
	Severity core.Severity `json:"severity"`
	Message  string        `json:"message"`
}

// fileFormat is the on-disk cache file.
type fileFormat struct {
	SchemaVersion int              `json:"schema_version"`
	EngineVersion string           `json:"engine_version"`
	ConfigHash    string           `json:"config_hash"`
	Entries       map[string]Entry `json:"entries"`
}

// Cache is a content-addressable result cache backed by one JSON file.
// Construct one per run; it implements lint.ResultCache.
type Cache struct {
	path          string
	engineVersion string
	configHash    string
	enabled       bool
	logger        *slog.Logger
	entries       map[string]Entry
	dirty         bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// Disabled turns the cache off; IsCached always reports false and Flush is a
// no-op.
func Disabled() Option {
	return func(c *Cache) { c.enabled = false }
}

// New creates a cache backed by the file at path and loads any prior state.
// engineVersion and configHash form the cache identity: a stored file written
// under a different identity is treated as empty.
func New(path, engineVersion, configHash string, opts ...Option) *Cache {
	c := &Cache{
		path:          path,
		engineVersion: engineVersion,
		configHash:    configHash,
		enabled:       true,
		logger:        slog.Default(),
		entries:       make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.enabled {
		c.load()
	}
	return c
}

// load reads the cache file. A corrupt file is deleted and the run proceeds
// with an empty cache; an identity mismatch leaves the file alone but starts
// empty.
func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("cache read failed", "path", c.path, "error", err)
		}
		return
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Warn("cache file corrupt, deleting", "path", c.path, "error", err)
		if rmErr := os.Remove(c.path); rmErr != nil {
			c.logger.Warn("cache delete failed", "path", c.path, "error", rmErr)
		}
		return
	}

	if f.SchemaVersion != SchemaVersion || f.EngineVersion != c.engineVersion || f.ConfigHash != c.configHash {
		c.logger.Debug("cache identity mismatch, starting empty",
			"stored_engine", f.EngineVersion, "stored_config", f.ConfigHash)
		return
	}
	if f.Entries != nil {
		c.entries = f.Entries
	}
}

// IsCached returns true if path was checked clean under the same content
// hash and cache identity.
func (c *Cache) IsCached(path, hash string) bool {
	if !c.enabled {
		return false
	}
	entry, ok := c.entries[path]
	return ok && entry.Hash == hash
}

// Get returns the stored diagnostics for a cached path.
func (c *Cache) Get(path string) ([]lint.Diagnostic, bool) {
	entry, ok := c.entries[path]
	if !ok || !c.enabled {
		return nil, false
	}
	diags := make([]lint.Diagnostic, 0, len(entry.Diagnostics))
	for _, d := range entry.Diagnostics {
		diags = append(diags, lint.Diagnostic{
			RuleID:   d.RuleID,
			Severity: d.Severity,
			Message:  d.Message,
			Path:     path,
		})
	}
	return diags, true
}

// Update records a file's check result. Files with any error-severity
// diagnostic are dropped from the cache so the next run re-verifies them.
func (c *Cache) Update(path, hash string, diags []lint.Diagnostic) {
	if !c.enabled {
		return
	}
	for _, d := range diags {
		if d.Severity == core.SeverityError {
			if _, ok := c.entries[path]; ok {
				delete(c.entries, path)
				c.dirty = true
			}
			return
		}
	}

	reduced := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		reduced = append(reduced, Diagnostic{RuleID: d.RuleID, Severity: d.Severity, Message: d.Message})
	}
	c.entries[path] = Entry{Hash: hash, CheckedAt: time.Now().UTC(), Diagnostics: reduced}
	c.dirty = true
}

// Flush persists the cache atomically: write a temp file in the same
// directory, then rename it over the target. Failures are logged and
// swallowed.
func (c *Cache) Flush() {
	if !c.enabled || !c.dirty {
		return
	}

	f := fileFormat{
		SchemaVersion: SchemaVersion,
		EngineVersion: c.engineVersion,
		ConfigHash:    c.configHash,
		Entries:       c.entries,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		c.logger.Warn("cache marshal failed", "error", err)
		return
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.logger.Warn("cache dir create failed", "dir", dir, "error", err)
		return
	}
	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		c.logger.Warn("cache temp file failed", "dir", dir, "error", err)
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		c.logger.Warn("cache write failed", "path", tmpPath, "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		c.logger.Warn("cache close failed", "path", tmpPath, "error", err)
		return
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		c.logger.Warn("cache rename failed", "path", c.path, "error", err)
		return
	}
	c.dirty = false
}

// Clear empties the cache and removes the backing file.
func (c *Cache) Clear() {
	c.entries = make(map[string]Entry)
	c.dirty = false
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("cache delete failed", "path", c.path, "error", err)
	}
}
