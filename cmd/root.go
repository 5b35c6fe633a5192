package cmd

import (
	"fmt"
	"os"

	"postboard/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   `postboard [command] [flags]`,
	Short: "Postboard: a small multi-user blog server",
}

// Execute runs the command line. It is called by main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		outputErrorAndExit("Error executing root command: %v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		outputErrorAndExit("Error loading config: %v", err)
	}
	return cfg
}

func outputErrorAndExit(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.New(color.FgHiRed, color.Bold).Sprint("🚨 "+fmt.Sprintf(msg, args...)))
	os.Exit(1)
}
