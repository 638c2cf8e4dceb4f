package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		check     func(*testing.T, *Config)
		wantWarns int
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
			check:  func(*testing.T, *Config) {},
		},
		{
			name:   "update interval below floor is clamped",
			mutate: func(c *Config) { c.UpdateMs = 99 },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 100, c.UpdateMs)
			},
			wantWarns: 1,
		},
		{
			name:   "update interval at floor is kept",
			mutate: func(c *Config) { c.UpdateMs = 100 },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 100, c.UpdateMs)
			},
		},
		{
			name:   "unknown sort key falls back",
			mutate: func(c *Config) { c.ProcSorting = "colour" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "cpu lazy", c.ProcSorting)
				assert.True(t, c.Recreate)
			},
			wantWarns: 1,
		},
		{
			name:   "unknown log level falls back",
			mutate: func(c *Config) { c.LogLevel = "TRACE" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "WARNING", c.LogLevel)
			},
			wantWarns: 1,
		},
		{
			name:   "negative lazy margin falls back",
			mutate: func(c *Config) { c.CPULazyMargin = -1 },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 5.0, c.CPULazyMargin)
			},
			wantWarns: 1,
		},
		{
			name:   "bad net unit warns",
			mutate: func(c *Config) { c.NetUpload = "fast" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "fast", c.NetUpload)
			},
			wantWarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			Validate(cfg)
			require.Len(t, cfg.Warnings, tt.wantWarns, "warnings: %v", cfg.Warnings)
			tt.check(t, cfg)
		})
	}
}

func TestUnitsToBytes(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"10M", 10 << 20},
		{"10m", 10 << 20},
		{"512K", 512 << 10},
		{"1G", 1 << 30},
		{"1.5G", 1536 << 20},
		{"100mbit", (100 << 20) / 8},
		{"8bit", 1},
		{"2048", 2048},
		{"10MiB", 10 << 20},
		{"", 0},
		{"fast", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitsToBytes(tt.in))
		})
	}
}
