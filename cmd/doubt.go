package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sahaayika/internal/assist"
	"sahaayika/internal/logger"
	"sahaayika/internal/prompt"
)

var doubtCmd = &cobra.Command{
	Use:   "doubt [image-file]",
	Short: "Ask a follow-up question about a document image",
	Long: `Answer a follow-up question about a previously explained document.
The document text is re-extracted from the image for every question; nothing
is cached between invocations.

The question can be typed with --question or recorded as an audio file with
--audio. When both are given, the transcript of the recording wins.`,
	Example: `  # Typed follow-up question
  sahaayika doubt label.jpg --question "How many times a day?"

  # Voice question, answered in Hindi
  sahaayika doubt label.jpg --audio question.wav --language Hindi`,
	Args: cobra.ExactArgs(1),
	RunE: runDoubt,
}

func init() {
	rootCmd.AddCommand(doubtCmd)

	doubtCmd.Flags().StringP("question", "q", "", "Typed follow-up question")
	doubtCmd.Flags().String("audio", "", "Recorded voice question (audio file)")
	doubtCmd.Flags().StringP("language", "l", "English", "Output language (Hindi, Tamil, English)")
	doubtCmd.Flags().StringP("profile", "p", "Woman", "Audience profile (Woman, Farmer, Elderly, Other)")
	doubtCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runDoubt(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("doubt")

	question, _ := cmd.Flags().GetString("question")
	audioPath, _ := cmd.Flags().GetString("audio")
	language, _ := cmd.Flags().GetString("language")
	profile, _ := cmd.Flags().GetString("profile")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	if _, err := os.Stat(imagePath); err != nil {
		log.Error().Err(err).Str("file", imagePath).Msg("Image file not accessible")
		return fmt.Errorf("image file not accessible: %s", imagePath)
	}
	if audioPath != "" {
		if _, err := os.Stat(audioPath); err != nil {
			log.Error().Err(err).Str("file", audioPath).Msg("Audio file not accessible")
			return fmt.Errorf("audio file not accessible: %s", audioPath)
		}
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

	result := service.HandleDoubt(ctx, assist.DoubtRequest{
		Question:  question,
		AudioPath: audioPath,
		Language:  language,
		Profile:   prompt.Profile(profile),
		ImagePath: imagePath,
	})

	fmt.Println(result.Text)
	if result.AudioPath != "" {
		fmt.Printf("\n🔊 Narration: %s\n", result.AudioPath)
	}
	return nil
}
