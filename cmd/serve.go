package cmd

import (
	"postboard/setup"

	"github.com/spf13/cobra"
)

var memory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run:   serve,
}

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&memory, "memory", false, "Keep posts, profiles and sessions in memory instead of Postgres")
}

func serve(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if memory {
		cfg.Memory = true
	}

	if err := cfg.Validate(); err != nil {
		outputErrorAndExit("Invalid config: %v", err)
	}

	closer := setup.InitLogging(cfg)
	defer closer.Close()

	setup.StartServer(cfg)
}
