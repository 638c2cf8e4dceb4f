package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/rtop/internal/logger"
)

// Validate normalizes out-of-range values in place. Problems are recorded in
// cfg.Warnings rather than returned so a bad key never prevents startup.
func Validate(cfg *Config) {
	if cfg.UpdateMs < MinUpdateMs {
		cfg.warn("Config key \"update_ms\" can't be lower than %d!", MinUpdateMs)
		cfg.UpdateMs = MinUpdateMs
	} else if cfg.UpdateMs > MaxUpdateMs {
		cfg.warn("Config key \"update_ms\" can't be higher than %d!", MaxUpdateMs)
		cfg.UpdateMs = MaxUpdateMs
	}

	defaults := DefaultConfig()

	if !slices.Contains(SortingOptions, cfg.ProcSorting) {
		cfg.warn("Config key \"proc_sorting\" didn't get an acceptable value: %q", cfg.ProcSorting)
		cfg.ProcSorting = defaults.ProcSorting
		cfg.Recreate = true
	}

	if _, ok := logger.ParseLevel(cfg.LogLevel); !ok || !slices.Contains(LogLevels, strings.ToUpper(cfg.LogLevel)) {
		cfg.warn("Config key \"log_level\" didn't get an acceptable value: %q", cfg.LogLevel)
		cfg.LogLevel = defaults.LogLevel
		cfg.Recreate = true
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if cfg.CPULazyMargin < 0 {
		cfg.warn("Config key \"cpu_lazy_margin\" can't be negative!")
		cfg.CPULazyMargin = defaults.CPULazyMargin
	}

	if cfg.CPULazySmoothing <= 0 || cfg.CPULazySmoothing > 1 {
		cfg.warn("Config key \"cpu_lazy_smoothing\" must be in (0, 1]!")
		cfg.CPULazySmoothing = defaults.CPULazySmoothing
	}

	if cfg.HistorySize <= 0 {
		cfg.warn("Config key \"history_size\" must be positive!")
		cfg.HistorySize = defaults.HistorySize
	}

	for key, val := range map[string]string{"net_download": cfg.NetDownload, "net_upload": cfg.NetUpload} {
		if val != "" && UnitsToBytes(val) == 0 {
			cfg.warn("Config key %q didn't get an acceptable value: %q", key, val)
		}
	}
}

func (c *Config) warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// UnitsToBytes converts strings like "10M", "1.5G", "512k" (binary units) or
// "100mbit" (bits) to a byte count. Unparseable input yields 0.
func UnitsToBytes(value string) uint64 {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "/s")
	s = strings.TrimSuffix(s, "s")

	bits := false
	switch {
	case strings.HasSuffix(s, "bit"):
		bits = true
		s = strings.TrimSuffix(s, "bit")
	case strings.HasSuffix(s, "byte"):
		s = strings.TrimSuffix(s, "byte")
	}

	if n := len(s); n > 0 && strings.ContainsRune("kmgt", rune(s[n-1])) {
		s += "ib"
	}

	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0
	}
	if bits {
		b /= 8
	}
	return b
}
