package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/rtop/internal/errors"
)

// rootFlags are the command-line options.
type rootFlags struct {
	Mini    bool
	Version bool
	Debug   bool
}

var flags rootFlags

var rootCmd = newRootCmd(&flags)

func newRootCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rtop",
		Short: "Terminal resource monitor",
		Long: `rtop shows cpu, memory, network and process usage of the local
machine in a live terminal dashboard.

Settings are read from ~/.config/rtop/rtop.yaml and written back on exit
when changed from the dashboard. Errors are logged to ~/.config/rtop/error.log.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Version {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return runMonitor(cmd, *f)
		},
	}
	cmd.Flags().BoolVarP(&f.Mini, "mini", "m", false, "start in minimal mode without memory and net boxes")
	cmd.Flags().BoolVarP(&f.Version, "version", "v", false, "show version info and exit")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "start with log level set to DEBUG")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, c.UsageString())
	})
	return cmd
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
