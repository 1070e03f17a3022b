package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "frushion",
	Short: "Skin, expression and beauty score analysis of camera frames",
	Long: `Frushion samples frames from a camera source and analyzes them: skin tone and
texture, facial expression (simulated or through an AI provider), golden ratio
beauty score and brightness. Results can be saved to PostgreSQL or MariaDB and
exported as CSV.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
