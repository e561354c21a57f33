package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/druarnfield/pylaunch/internal/config"
	"github.com/druarnfield/pylaunch/internal/console"
	"github.com/druarnfield/pylaunch/internal/launcher"
	"github.com/druarnfield/pylaunch/internal/logging"
)

var (
	configPath string
	verbose    bool
	noPause    bool
	noViewer   bool
	timeout    time.Duration
	logDir     string
	prefix     string

	// Populated in PersistentPreRunE.
	baseDir string
	cfg     *config.Config
)

// executable is swapped in tests so the base directory is a temp dir.
var executable = os.Executable

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pylaunch [script]",
		Short: "Run a Python script and keep its output in a timestamped log",
		Long: "pylaunch runs a Python script with stdout and stderr captured into a new\n" +
			"log file, reports the exit status, opens the log and waits for a key press.\n" +
			"Drop a script onto the binary or pass its path as the only argument.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(cmd.ErrOrStderr(), verbose)

			dir, err := resolveBaseDir()
			if err != nil {
				return err
			}
			baseDir = dir

			loaded, err := config.Resolve(configPath, baseDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := applyOverrides(cmd, loaded); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: runScript,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a pylaunch.toml config file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "copy script output to the console and log debug details")
	root.PersistentFlags().StringVar(&logDir, "log-dir", "", "log directory (relative paths are under the launcher's directory)")
	root.PersistentFlags().StringVar(&prefix, "prefix", "", "log file name prefix")
	root.Flags().BoolVar(&noPause, "no-pause", false, "exit without waiting for a key press")
	root.Flags().BoolVar(&noViewer, "no-viewer", false, "do not open the log when the script ends")
	root.Flags().DurationVar(&timeout, "timeout", 0, "stop the script after this long (0 waits indefinitely)")

	root.AddCommand(
		newLogsCmd(),
	)

	return root
}

// resolveBaseDir returns the directory holding the launcher binary, with
// symlinks resolved so a linked binary still finds its own logs.
func resolveBaseDir() (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("locating launcher binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// applyOverrides copies explicitly set flags onto c and revalidates.
func applyOverrides(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("log-dir") {
		c.LogDir = logDir
	}
	if flags.Changed("prefix") {
		c.Prefix = prefix
	}
	if flags.Changed("timeout") {
		c.Timeout.Duration = timeout
	}
	if flags.Changed("no-pause") && noPause {
		c.Pause = false
	}
	return c.Validate()
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !reported(err) {
			console.Error(os.Stderr, "%v", err)
		}
		os.Exit(1)
	}
}

// reported reports whether the launcher already showed err to the user.
func reported(err error) bool {
	var notFound *launcher.NotFoundError
	var unreadable *launcher.UnreadableError
	return errors.As(err, &notFound) || errors.As(err, &unreadable)
}
