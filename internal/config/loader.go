package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/spf13/viper"
)

const (
	// GlobalConfigDir is the directory for config, themes and logs, relative to $HOME.
	GlobalConfigDir = ".config/rtop"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "rtop.yaml"
	// SystemConfigFile is consulted when the user has no config of their own.
	SystemConfigFile = "/etc/rtop.yaml"
	// LogFileName is the error log written inside the config directory.
	LogFileName = "error.log"
)

// Load reads config from the specified path and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Delete the path from your arguments or create the file")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. ~/.config/rtop/rtop.yaml
// 2. /etc/rtop.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(home string) string {
	if home != "" {
		userConfig := filepath.Join(Dir(home), GlobalConfigFile)
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig
		}
	}
	if _, err := os.Stat(SystemConfigFile); err == nil {
		return SystemConfigFile
	}
	return ""
}

// LoadOrDefault loads the config found for home, or returns defaults marked
// for recreation when there is none.
func LoadOrDefault(home string) (*Config, error) {
	path := Find(home)
	if path == "" {
		cfg := DefaultConfig()
		cfg.Recreate = true
		return cfg, nil
	}
	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	for _, key := range knownKeys {
		if !v.InConfig(key) {
			cfg.Recreate = true
			break
		}
	}
	if cfg.Version != CurrentConfigVersion {
		cfg.Recreate = true
	}

	Validate(cfg)
	return cfg, nil
}

// knownKeys are the keys written by Save. A file missing any of them is rewritten on exit.
var knownKeys = []string{
	"version", "update_ms", "proc_sorting", "proc_reversed", "proc_tree",
	"proc_per_core", "proc_mem_bytes", "cpu_lazy_margin", "cpu_lazy_smoothing",
	"mini_mode", "show_swap", "net_download", "net_upload", "net_auto",
	"net_sync", "history_size", "log_level",
}

// setDefaults mirrors DefaultConfig so partially written files still get sane values.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("update_ms", d.UpdateMs)
	v.SetDefault("proc_sorting", d.ProcSorting)
	v.SetDefault("proc_reversed", d.ProcReversed)
	v.SetDefault("proc_tree", d.ProcTree)
	v.SetDefault("proc_per_core", d.ProcPerCore)
	v.SetDefault("proc_mem_bytes", d.ProcMemBytes)
	v.SetDefault("cpu_lazy_margin", d.CPULazyMargin)
	v.SetDefault("cpu_lazy_smoothing", d.CPULazySmoothing)
	v.SetDefault("mini_mode", d.MiniMode)
	v.SetDefault("show_swap", d.ShowSwap)
	v.SetDefault("net_download", d.NetDownload)
	v.SetDefault("net_upload", d.NetUpload)
	v.SetDefault("net_auto", d.NetAuto)
	v.SetDefault("net_sync", d.NetSync)
	v.SetDefault("history_size", d.HistorySize)
	v.SetDefault("log_level", d.LogLevel)
}
