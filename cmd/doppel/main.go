package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Credentials and API keys usually live in a .env next to the binary;
	// absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{Use: "doppel"}
	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./config/config.json)")

	root.AddCommand(serveCMD(), scrapeCMD(), generateCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
