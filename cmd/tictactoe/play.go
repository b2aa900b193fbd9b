package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-web/internal"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf := initConfig(cmd)

		// The board owns stdout, so logs go to stderr and only when asked for.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}

		return app.RunConsole(logger, conf, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolP("verbose", "v", false, "Log to stderr")
}
