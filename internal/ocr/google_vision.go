package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// MaxImageSizeBytes is the maximum image size accepted for annotation (20MB).
const MaxImageSizeBytes = 20 * 1024 * 1024

// GoogleVisionEngine implements Engine using Google Cloud Vision document
// text detection.
type GoogleVisionEngine struct {
	client        *vision.ImageAnnotatorClient
	languageHints []string
}

// NewGoogleVisionEngine creates a Vision-backed engine with credentials from
// the environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env. languageHints are BCP-47 codes passed to
// the annotator (see HintsFromTesseractLangs).
func NewGoogleVisionEngine(ctx context.Context, languageHints []string) (*GoogleVisionEngine, error) {
	const op = "NewGoogleVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionEngine{
		client:        client,
		languageHints: languageHints,
	}, nil
}

// Extract returns the raw text recognized in the image file.
func (g *GoogleVisionEngine) Extract(ctx context.Context, imagePath string) (string, error) {
	result, err := g.ExtractWithMetadata(ctx, imagePath)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractWithMetadata annotates the image with document text detection.
func (g *GoogleVisionEngine) ExtractWithMetadata(ctx context.Context, imagePath string) (*Result, error) {
	const op = "ExtractWithMetadata"
	startTime := time.Now()

	imageBytes, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, WrapOCRError(op, ErrImageNotFound, imagePath)
	}
	if len(imageBytes) > MaxImageSizeBytes {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("image size %d bytes exceeds limit", len(imageBytes)))
	}

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: imageBytes},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
		},
	}
	if len(g.languageHints) > 0 {
		req.ImageContext = &visionpb.ImageContext{LanguageHints: g.languageHints}
	}

	resp, err := g.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	})
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", annotation.Error.Message))
	}

	var text string
	if annotation.FullTextAnnotation != nil {
		text = annotation.FullTextAnnotation.Text
	}
	if strings.TrimSpace(text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, imagePath)
	}

	processedAt := time.Now()
	return &Result{
		Text:               text,
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
