package cli

import (
	"errors"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/druarnfield/pylaunch/internal/console"
	"github.com/druarnfield/pylaunch/internal/launcher"
	"github.com/druarnfield/pylaunch/internal/viewer"
)

// runScript is the root command's action: one launch of one script.
func runScript(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 1 {
		target = args[0]
	}

	l := launcher.New(cfg, baseDir)
	l.Out = cmd.OutOrStdout()
	if noViewer {
		l.Viewer = viewer.Nop{}
	}
	if !cfg.Pause {
		l.Pauser = console.NopPauser{}
	}
	if verbose {
		l.Tee = cmd.OutOrStdout()
	}

	log.Debug().
		Str("base_dir", baseDir).
		Str("config", cfg.Path()).
		Str("log_dir", l.LogDir).
		Msg("launching")

	// Interrupt kills the child; its status is still reported.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, err := l.Run(ctx, target)

	var usage *launcher.UsageError
	if errors.As(err, &usage) {
		return nil
	}
	return err
}
