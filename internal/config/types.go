package config

import (
	"path/filepath"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Update interval bounds in milliseconds.
const (
	MinUpdateMs     = 100
	MaxUpdateMs     = 86399900
	UpdateStepMs    = 100
	DefaultUpdateMs = 2000
)

// DefaultHistorySize is the number of samples kept per graph series.
const DefaultHistorySize = 600

// SortingOptions lists the accepted proc_sorting values in cycle order.
var SortingOptions = []string{"pid", "program", "arguments", "threads", "user", "memory", "cpu lazy", "cpu responsive"}

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"ERROR", "WARNING", "INFO", "DEBUG"}

// Config represents the complete rtop.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// UpdateMs is the sampling interval. Values below MinUpdateMs are clamped.
	UpdateMs int `yaml:"update_ms" mapstructure:"update_ms"`

	// Process list settings.
	ProcSorting  string `yaml:"proc_sorting" mapstructure:"proc_sorting"`
	ProcReversed bool   `yaml:"proc_reversed" mapstructure:"proc_reversed"`
	ProcTree     bool   `yaml:"proc_tree" mapstructure:"proc_tree"`
	ProcPerCore  bool   `yaml:"proc_per_core" mapstructure:"proc_per_core"`
	ProcMemBytes bool   `yaml:"proc_mem_bytes" mapstructure:"proc_mem_bytes"`

	// CPULazyMargin is how many percentage points a challenger must beat the
	// current top process by before "cpu lazy" sorting reorders the top.
	CPULazyMargin float64 `yaml:"cpu_lazy_margin" mapstructure:"cpu_lazy_margin"`
	// CPULazySmoothing is the weight of the newest sample in the lazy cpu average (0-1].
	CPULazySmoothing float64 `yaml:"cpu_lazy_smoothing" mapstructure:"cpu_lazy_smoothing"`

	// Layout.
	MiniMode bool `yaml:"mini_mode" mapstructure:"mini_mode"`
	ShowSwap bool `yaml:"show_swap" mapstructure:"show_swap"`

	// Network graph scaling, e.g. "10M" (MiB) or "100mbit".
	NetDownload string `yaml:"net_download" mapstructure:"net_download"`
	NetUpload   string `yaml:"net_upload" mapstructure:"net_upload"`
	NetAuto     bool   `yaml:"net_auto" mapstructure:"net_auto"`
	// NetSync scales download and upload graphs to the same top value.
	NetSync bool `yaml:"net_sync" mapstructure:"net_sync"`

	HistorySize int    `yaml:"history_size" mapstructure:"history_size"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`

	// Warnings collects non-fatal validation problems for logging at startup.
	Warnings []string `yaml:"-" mapstructure:"-"`
	// Recreate is set when the file on disk is missing or incomplete.
	Recreate bool `yaml:"-" mapstructure:"-"`
	// Changed is set when a setting is altered at runtime.
	Changed bool `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:          CurrentConfigVersion,
		UpdateMs:         DefaultUpdateMs,
		ProcSorting:      "cpu lazy",
		ProcMemBytes:     true,
		CPULazyMargin:    5.0,
		CPULazySmoothing: 0.3,
		ShowSwap:         true,
		NetDownload:      "10M",
		NetUpload:        "10M",
		HistorySize:      DefaultHistorySize,
		LogLevel:         "WARNING",
	}
}

// UpdateInterval returns UpdateMs as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateMs) * time.Millisecond
}

// AdjustUpdate changes the update interval by delta milliseconds, staying
// within [MinUpdateMs, MaxUpdateMs]. It reports whether anything changed.
func (c *Config) AdjustUpdate(delta int) bool {
	next := c.UpdateMs + delta
	if next < MinUpdateMs || next > MaxUpdateMs {
		return false
	}
	c.UpdateMs = next
	c.Changed = true
	return true
}

// Dir returns the per-user config directory, ~/.config/rtop.
func Dir(home string) string {
	return filepath.Join(home, GlobalConfigDir)
}
