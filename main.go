package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile    string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "vocabot",
	Short: "Telegram vocabulary bot",
	Long: `vocabot translates English and Uzbek words on Telegram, teaches phrases
by topic and periodically sends quiz words to its users.

Running without a subcommand is the same as "vocabot serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default $VOCABOT_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
