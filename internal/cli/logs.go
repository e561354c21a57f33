package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/druarnfield/pylaunch/internal/logfile"
)

// logsFs is the filesystem the logs command reads from.
var logsFs afero.Fs = afero.NewOsFs()

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View run logs",
		Long:  "Print the most recent run log, or list all run logs newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listMode, _ := cmd.Flags().GetBool("list")

			dir := cfg.LogDirIn(baseDir)
			w := cmd.OutOrStdout()

			if listMode {
				logs, err := logfile.Discover(logsFs, dir, cfg.Prefix)
				if err != nil {
					return err
				}
				if len(logs) == 0 {
					fmt.Fprintf(w, "no logs found in %s\n", dir)
					return nil
				}

				fmt.Fprintf(w, "  %-44s  %s\n", "LOG", "STARTED")
				fmt.Fprintf(w, "  %-44s  %s\n", "---", "-------")
				for _, l := range logs {
					fmt.Fprintf(w, "  %-44s  %s\n", l.Name, l.Timestamp.Format("2006-01-02 15:04:05.000"))
				}
				return nil
			}

			latest, err := logfile.Latest(logsFs, dir, cfg.Prefix)
			if errors.Is(err, logfile.ErrNoLogs) {
				fmt.Fprintf(w, "no logs found in %s\n", dir)
				return nil
			}
			if err != nil {
				return err
			}

			data, err := afero.ReadFile(logsFs, latest.Path)
			if err != nil {
				return fmt.Errorf("reading log: %w", err)
			}
			w.Write(data)
			return nil
		},
	}

	cmd.Flags().Bool("list", false, "list available logs")

	return cmd
}
