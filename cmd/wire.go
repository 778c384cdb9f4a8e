package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sahaayika/internal/assist"
	"sahaayika/internal/config"
	"sahaayika/internal/generate"
	"sahaayika/internal/ocr"
	"sahaayika/internal/speech"
	"sahaayika/internal/translate"
)

// buildService constructs the full pipeline from configuration.
func buildService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*assist.Service, error) {
	engine, err := buildOCREngine(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	generator := generate.NewClient(generate.Config{
		Endpoint: cfg.OllamaURL,
		Model:    cfg.OllamaModel,
		Timeout:  cfg.OllamaTimeout,
	})

	return assist.New(
		engine,
		generator,
		translate.NewGoogleTranslator(""),
		speech.NewGoogleSynthesizer("", cfg.AudioDir),
		speech.NewGoogleTranscriber("", "", ""),
	), nil
}

func buildOCREngine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ocr.Engine, error) {
	switch cfg.OCREngine {
	case config.EngineVision:
		engine, err := ocr.NewGoogleVisionEngine(ctx, ocr.HintsFromTesseractLangs(cfg.OCRLanguages))
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Vision OCR engine")
			return nil, fmt.Errorf("failed to create Vision OCR engine: %w", err)
		}
		return engine, nil
	default:
		return ocr.NewTesseractEngine(cfg.TesseractPath, cfg.OCRLanguages), nil
	}
}

// loadConfig loads and validates the application configuration.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return nil, err
	}
	return cfg, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}
