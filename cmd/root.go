package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sahaayika/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "sahaayika",
	Short: "Sahaayika - document explanation assistant for rural users",
	Long: `Sahaayika reads a photographed document, extracts its text with OCR,
asks a locally hosted language model for a simplified explanation, and
translates and narrates the answer in the user's language.

Run "sahaayika serve" for the HTTP API, or use the explain and doubt
commands for one-shot processing of an image file.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Sahaayika executed")

		fmt.Println("Welcome to Sahaayika!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
