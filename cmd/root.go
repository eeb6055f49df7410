package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katrohit/nutrifolio/pkg/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "nutrifolio",
	Short: "NutriFolio nutrition assistant backend",
	Long: `NutriFolio logs food from plain-language chat messages.

COMMANDS:

  $ nutrifolio serve                       # Run the API server
  $ nutrifolio migrate                     # Apply database migrations
  $ nutrifolio token <user-id> --ttl 24h   # Mint a bearer token for local testing

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetOutput(os.Stdout)

		cfg = config.LoadConfig()

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
			level = logrus.InfoLevel
		}
		logrus.SetLevel(level)
		return nil
	},
}
