package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sahaayika/internal/logger"
	"sahaayika/internal/prompt"
)

var explainCmd = &cobra.Command{
	Use:   "explain [image-file]",
	Short: "Explain a photographed document in simple language",
	Long: `Run the full pipeline on a document image: OCR text extraction,
cleanup, a simplified explanation from the local Ollama model, and optional
translation and narration in the chosen language.

The explanation is printed to stdout; when narration succeeds, the path of
the MP3 artifact is printed as well.`,
	Example: `  # Explain a medicine label for a rural woman, narrated in Tamil
  sahaayika explain label.jpg --language Tamil --profile Woman

  # Explain in English with a longer generation timeout
  sahaayika explain deed.png --language English --timeout 300`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringP("language", "l", "English", "Output language (Hindi, Tamil, English)")
	explainCmd.Flags().StringP("profile", "p", "Woman", "Audience profile (Woman, Farmer, Elderly, Other)")
	explainCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExplain(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("explain")

	language, _ := cmd.Flags().GetString("language")
	profile, _ := cmd.Flags().GetString("profile")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	if _, err := os.Stat(imagePath); err != nil {
		log.Error().Err(err).Str("file", imagePath).Msg("Image file not accessible")
		return fmt.Errorf("image file not accessible: %s", imagePath)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	service, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("image", imagePath).
		Str("language", language).
		Str("profile", profile).
		Msg("Explaining document image")

	result := service.ExplainImage(ctx, imagePath, language, prompt.Profile(profile))

	fmt.Println(result.Text)
	if result.AudioPath != "" {
		fmt.Printf("\n🔊 Narration: %s\n", result.AudioPath)
	}
	return nil
}
