package main

import (
	"fmt"
	"os"

	"rent-admin/pkg/config"
	"rent-admin/pkg/logger"

	"github.com/spf13/cobra"
)

const serviceName = "rent-admin"

var rootCmd = &cobra.Command{
	Use:   "rentadmin",
	Short: "Admin backend for the clothing rental shop",
	Long: `rentadmin serves the admin back-office API in front of the rental REST API:
paginated lists, entity forms, the booking calendar, highlighted products and
image uploads, each kept per admin session.

It can also export bookings to a spreadsheet from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and initialises the global logger
func setup() (*config.Config, error) {
	appConfig, err := config.Load(serviceName)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
		File:        appConfig.Log.File,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return appConfig, nil
}
