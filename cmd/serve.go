package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sahaayika/internal/logger"
	"sahaayika/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Sahaayika HTTP API",
	Long: `Start the HTTP server exposing the assistant pipeline.

Endpoints:
  POST /api/explain      multipart {image, language, profile}
  POST /api/doubt        multipart {image, question, audio, language, profile}
  GET  /api/audio/:name  narrated MP3 artifacts
  GET  /healthz          liveness probe

Configuration is read from the environment (see .env):
  OCR_ENGINE, TESSERACT_PATH, OCR_LANGUAGES
  OLLAMA_URL, OLLAMA_MODEL, OLLAMA_TIMEOUT_SECONDS
  SERVER_ADDR, AUDIO_DIR`,
	Example: `  # Serve on the configured address (default :8080)
  sahaayika serve

  # Override the listen address
  sahaayika serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides SERVER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}

	service, err := buildService(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("addr", addr).
		Str("ocr_engine", cfg.OCREngine).
		Str("model", cfg.OllamaModel).
		Msg("Starting Sahaayika API")

	srv := server.New(service, cfg.AudioDir)
	if err := srv.Run(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
