package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/game-predictor/internal/config"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "game-predictor",
	Short: "Daily win-probability predictions for scheduled games",
	Long: `game-predictor converts team season records into calibrated win
probabilities, compares them with market prices when available, and stores a
recommendation with reasoning and a confidence score for every game.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before configuration")

	rootCmd.AddCommand(runCmd, scheduleCmd, showCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "game-predictor %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

// loadEnvFile loads dotenv variables without overriding the real environment
func loadEnvFile(log *logrus.Logger) {
	if envFile == "" {
		return
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnf("Failed to load %s", envFile)
	}
}
