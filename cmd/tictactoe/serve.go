package main

import (
	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-web/internal"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf := initConfig(cmd)

		if cmd.Flags().Changed("port") {
			conf.HTTPPort, _ = cmd.Flags().GetString("port")
		}

		return app.RunApp(initLogger(conf), conf)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on, overrides http-port")
}
