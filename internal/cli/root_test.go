package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/logger"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var f rootFlags
	cmd := newRootCmd(&f)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRoot_Flags(t *testing.T) {
	cmd := newRootCmd(&rootFlags{})
	for _, tt := range []struct{ name, short string }{
		{"mini", "m"},
		{"version", "v"},
		{"debug", ""},
	} {
		flag := cmd.Flags().Lookup(tt.name)
		require.NotNil(t, flag, tt.name)
		assert.Equal(t, tt.short, flag.Shorthand)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestRoot_Version(t *testing.T) {
	out, err := execRoot(t, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "rtop version: ")
	assert.Contains(t, out, "gopsutil version: ")
}

func TestRoot_Help(t *testing.T) {
	out, err := execRoot(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--mini")
	assert.Contains(t, out, "--debug")
}

func TestRoot_UnknownFlag(t *testing.T) {
	_, err := execRoot(t, "--bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --bogus")
	assert.Contains(t, err.Error(), "Usage:")
}

func TestRoot_RejectsArguments(t *testing.T) {
	_, err := execRoot(t, "extra")
	require.Error(t, err)
}

func TestOpenSession_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Cleanup(func() { logger.SetDefault(logger.Noop()) })

	s, err := openSession(home, rootFlags{Mini: true, Debug: true})
	require.NoError(t, err)
	defer s.close()

	assert.True(t, s.cfg.MiniMode)
	assert.True(t, s.cfg.Recreate, "missing file is recreated on exit")
	assert.Equal(t, filepath.Join(home, ".config/rtop/rtop.yaml"), s.cfgPath)
	assert.FileExists(t, s.logPath)
}

func TestOpenSession_LogsConfigWarnings(t *testing.T) {
	home := t.TempDir()
	t.Cleanup(func() { logger.SetDefault(logger.Noop()) })
	dir := config.Dir(home)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.GlobalConfigFile), []byte("update_ms: 10\n"), 0o644))

	s, err := openSession(home, rootFlags{})
	require.NoError(t, err)
	require.NoError(t, s.close())

	assert.Equal(t, config.MinUpdateMs, s.cfg.UpdateMs)
	data, err := os.ReadFile(s.logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "update_ms")
	assert.Contains(t, string(data), "WARNING")
}
