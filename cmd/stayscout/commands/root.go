// Package commands implements the CLI commands for stayscout.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "stayscout",
	Short: "Find the same vacation rental cheaper on other sites",
	Long: `Stayscout takes a vacation rental listing URL, profiles the
property, and hunts for the same property on other booking platforms
and the owner's own website, comparing total stay prices.

Examples:
  # Compare a listing for specific dates
  stayscout search -u "https://www.airbnb.com/rooms/12345" \
      --check-in 2026-06-01 --check-out 2026-06-06

  # JSON output for scripting
  stayscout search -u "https://www.airbnb.com/rooms/12345" \
      --check-in 2026-06-01 --check-out 2026-06-06 -o results.json

  # Use a local Ollama model as the judge
  stayscout search -u "https://www.airbnb.com/rooms/12345" \
      --check-in 2026-06-01 --check-out 2026-06-06 -p ollama`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.stayscout.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	// .env keeps API keys out of shell history; absence is fine
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".stayscout")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("STAYSCOUT")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("serpapi_key", "SERPAPI_API_KEY", "SERPAPI_KEY")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
