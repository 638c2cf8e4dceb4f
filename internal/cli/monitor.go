package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/rtop/internal/config"
	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/logger"
	"github.com/rileyhilliard/rtop/internal/monitor"
)

// session is everything runMonitor resolves before starting the dashboard.
type session struct {
	cfg     *config.Config
	cfgPath string
	logPath string
	log     logger.Logger
	close   func() error
}

// openSession loads the config for home and opens the error log.
func openSession(home string, f rootFlags) (*session, error) {
	cfg, err := config.LoadOrDefault(home)
	if err != nil {
		return nil, err
	}
	if f.Mini {
		cfg.MiniMode = true
	}

	dir := config.Dir(home)
	s := &session{
		cfg:     cfg,
		cfgPath: config.Find(home),
		logPath: filepath.Join(dir, config.LogFileName),
		close:   func() error { return nil },
	}
	if s.cfgPath == "" || s.cfgPath == config.SystemConfigFile {
		s.cfgPath = filepath.Join(dir, config.GlobalConfigFile)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	if f.Debug {
		level = logger.LevelDebug
	}
	fileLog, err := logger.OpenFile(s.logPath, level)
	if err != nil {
		s.log = logger.Noop()
		fmt.Fprintf(os.Stderr, "WARNING: can't open log file %s: %v\n", s.logPath, err)
	} else {
		s.log = fileLog
		s.close = fileLog.Close
	}
	logger.SetDefault(s.log)

	s.log.Info("start: rtop %s, log level %s", formatVersion(version), level)
	for _, w := range cfg.Warnings {
		s.log.Warn("config: %s", w)
	}
	return s, nil
}

// runMonitor starts the dashboard and blocks until it exits.
func runMonitor(cmd *cobra.Command, f rootFlags) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrInit,
			"Can't find the home directory",
			"Set $HOME and try again")
	}
	s, err := openSession(home, f)
	if err != nil {
		return err
	}
	defer s.close()

	app := monitor.New(monitor.Options{
		Config:     s.cfg,
		ConfigPath: s.cfgPath,
		Log:        s.log,
	})

	if err := app.Init(); err != nil {
		_ = app.Close(1)
		fmt.Fprintf(cmd.ErrOrStderr(), "Error during init! See %s for more information.\n", s.logPath)
		return errors.NewExitError(1)
	}

	code := 0
	runErr := app.Run(context.Background())
	if runErr != nil {
		s.log.Error("runtime: %v", runErr)
		code = 1
	}
	if err := app.Close(code); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to save config: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), runErr)
		return errors.NewExitError(1)
	}
	return nil
}
