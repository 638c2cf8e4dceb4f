package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// headerComment is written above the settings on every save.
const headerComment = `Config file for rtop.
update_ms: sampling interval in milliseconds, minimum 100.
proc_sorting: "pid" "program" "arguments" "threads" "user" "memory" "cpu lazy" "cpu responsive".
  "cpu lazy" keeps the top process until another beats it by cpu_lazy_margin points.
net_download/net_upload: fixed graph scale, e.g. "10M" or "100mbit". net_auto rescales instead.
log_level: "ERROR" "WARNING" "INFO" "DEBUG".`

// NeedsSave reports whether Save would write anything.
func (c *Config) NeedsSave() bool {
	return c.Changed || c.Recreate
}

// Save writes the config to path as YAML if it changed or needs recreating.
// Comments in an existing file are replaced by the standard header.
func Save(cfg *Config, path string) error {
	if !cfg.NeedsSave() {
		return nil
	}

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	doc.HeadComment = headerComment

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg.Changed = false
	cfg.Recreate = false
	return nil
}
