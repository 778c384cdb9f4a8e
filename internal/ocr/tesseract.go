package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"sahaayika/internal/logger"
)

// TesseractEngine implements Engine by invoking the tesseract binary.
type TesseractEngine struct {
	binaryPath string
	languages  string
	log        zerolog.Logger
}

// NewTesseractEngine creates an engine that runs the tesseract binary at
// binaryPath with the given -l language value (e.g. "tam+eng").
func NewTesseractEngine(binaryPath, languages string) *TesseractEngine {
	if binaryPath == "" {
		binaryPath = "tesseract"
	}
	if languages == "" {
		languages = "eng"
	}
	return &TesseractEngine{
		binaryPath: binaryPath,
		languages:  languages,
		log:        logger.WithComponent("ocr-tesseract"),
	}
}

// Extract returns the raw text recognized in the image file.
func (t *TesseractEngine) Extract(ctx context.Context, imagePath string) (string, error) {
	result, err := t.ExtractWithMetadata(ctx, imagePath)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractWithMetadata runs tesseract on the image and captures its stdout.
func (t *TesseractEngine) ExtractWithMetadata(ctx context.Context, imagePath string) (*Result, error) {
	const op = "ExtractWithMetadata"
	startTime := time.Now()

	if _, err := os.Stat(imagePath); err != nil {
		return nil, WrapOCRError(op, ErrImageNotFound, imagePath)
	}

	// "stdout" as the output base makes tesseract write the recognized
	// text to standard output instead of a file.
	cmd := exec.CommandContext(ctx, t.binaryPath, imagePath, "stdout", "-l", t.languages)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.log.Debug().
		Str("binary", t.binaryPath).
		Str("languages", t.languages).
		Str("image", imagePath).
		Msg("Running tesseract")

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, WrapOCRError(op, ErrBinaryNotFound, t.binaryPath)
		}
		t.log.Error().
			Err(err).
			Str("stderr", stderr.String()).
			Msg("Tesseract execution failed")
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("tesseract: %v: %s", err, stderr.String()))
	}

	processedAt := time.Now()
	result := &Result{
		Text:               stdout.String(),
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}

	t.log.Debug().
		Int("text_length", len(result.Text)).
		Dur("duration", result.ProcessingDuration).
		Msg("Tesseract completed")

	return result, nil
}
