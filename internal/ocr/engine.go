// Package ocr extracts text from photographed document images.
//
// Two engines are provided: a local Tesseract engine that shells out to the
// configured binary, and a Google Cloud Vision engine using document text
// detection. Both return raw engine output; cleanup of markdown artifacts and
// engine noise is the caller's concern (see internal/sanitize).
//
// Vision engine environment:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
package ocr

import (
	"context"
	"strings"
	"time"
)

// Engine defines the interface for OCR text extraction engines.
type Engine interface {
	// Extract returns the raw text recognized in the image file.
	Extract(ctx context.Context, imagePath string) (string, error)

	// ExtractWithMetadata returns the recognized text together with
	// processing information.
	ExtractWithMetadata(ctx context.Context, imagePath string) (*Result, error)
}

// Result contains the output of OCR processing with metadata.
type Result struct {
	// Text is the raw recognized text, in reading order.
	Text string `json:"text"`

	// ProcessedAt is the timestamp when the OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the OCR processing took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// tesseractToBCP47 maps the tesseract language codes used in configuration
// to the BCP-47 hints the Vision API expects.
var tesseractToBCP47 = map[string]string{
	"tam": "ta",
	"eng": "en",
	"hin": "hi",
}

// HintsFromTesseractLangs converts a tesseract -l value such as "tam+eng"
// into Vision API language hints. Unknown codes are passed through.
func HintsFromTesseractLangs(langs string) []string {
	var hints []string
	for _, code := range strings.Split(langs, "+") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if mapped, ok := tesseractToBCP47[code]; ok {
			code = mapped
		}
		hints = append(hints, code)
	}
	return hints
}
