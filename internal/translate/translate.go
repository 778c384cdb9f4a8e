// Package translate converts generated explanations into the user's chosen
// output language.
//
// Only Hindi and Tamil have translation targets; English (and anything
// unrecognized) is passed through untranslated. The pipeline never surfaces
// translation faults: callers fall back to the untranslated text.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sahaayika/internal/logger"
)

// targetCodes maps user-facing language selections to translation targets.
// English is deliberately absent: the model already answers in English.
var targetCodes = map[string]string{
	"Hindi": "hi",
	"Tamil": "ta",
}

// TargetCode returns the translation target code for a language selection.
// The second return is false when the selection has no translation target
// and the text should pass through unchanged.
func TargetCode(language string) (string, bool) {
	code, ok := targetCodes[language]
	return code, ok
}

// Translator converts text to a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetCode string) (string, error)
}

// DefaultEndpoint is the public Google translate endpoint.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator implements Translator against the public Google translate
// endpoint with automatic source language detection.
type GoogleTranslator struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewGoogleTranslator creates a translator. An empty endpoint selects
// DefaultEndpoint.
func NewGoogleTranslator(endpoint string) *GoogleTranslator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &GoogleTranslator{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.WithComponent("translate"),
	}
}

// Translate sends the text for translation and returns the translated form.
func (g *GoogleTranslator) Translate(ctx context.Context, text, targetCode string) (string, error) {
	const op = "Translate"

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetCode)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: reading response: %w", op, err)
	}

	translated, err := parseTranslatePayload(body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	g.log.Debug().
		Str("target", targetCode).
		Int("input_length", len(text)).
		Int("output_length", len(translated)).
		Msg("Translation completed")

	return translated, nil
}

// parseTranslatePayload extracts the translated sentences from the nested
// array payload the endpoint returns: [[[translated, original, ...], ...], ...].
func parseTranslatePayload(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("malformed payload: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	var sentences [][]any
	if err := json.Unmarshal(payload[0], &sentences); err != nil {
		return "", fmt.Errorf("malformed sentence list: %w", err)
	}

	var sb strings.Builder
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		if fragment, ok := sentence[0].(string); ok {
			sb.WriteString(fragment)
		}
	}

	result := sb.String()
	if result == "" {
		return "", fmt.Errorf("payload contained no translated text")
	}
	return result, nil
}
