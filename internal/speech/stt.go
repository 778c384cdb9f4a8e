package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sahaayika/internal/logger"
)

// DefaultSTTEndpoint is the public Google speech recognition endpoint used
// for voice questions.
const DefaultSTTEndpoint = "http://www.google.com/speech-api/v2/recognize"

// GoogleTranscriber implements Transcriber against the Google speech API.
type GoogleTranscriber struct {
	endpoint   string
	apiKey     string
	language   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewGoogleTranscriber creates a transcriber. An empty endpoint selects
// DefaultSTTEndpoint; an empty language defaults to en-US. The API key is
// read from SPEECH_API_KEY when the argument is empty.
func NewGoogleTranscriber(endpoint, apiKey, language string) *GoogleTranscriber {
	if endpoint == "" {
		endpoint = DefaultSTTEndpoint
	}
	if apiKey == "" {
		apiKey = os.Getenv("SPEECH_API_KEY")
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleTranscriber{
		endpoint: endpoint,
		apiKey:   apiKey,
		language: language,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: logger.WithComponent("speech-stt"),
	}
}

// Transcribe uploads the recorded audio file and returns the best
// transcript. An empty transcript with no error means nothing was recognized.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	const op = "Transcribe"

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("%s: reading audio: %w", op, err)
	}

	params := url.Values{}
	params.Set("client", "chromium")
	params.Set("lang", g.language)
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", contentTypeFor(audioPath))

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

	transcript := parseRecognizeResponse(body)
	g.log.Debug().
		Str("audio", audioPath).
		Int("transcript_length", len(transcript)).
		Msg("Transcription completed")

	return transcript, nil
}

func contentTypeFor(audioPath string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(audioPath), ".flac"):
		return "audio/x-flac; rate=16000"
	default:
		return "audio/l16; rate=16000"
	}
}

type recognizeResponse struct {
	Result []struct {
		Alternative []struct {
			Transcript string `json:"transcript"`
		} `json:"alternative"`
	} `json:"result"`
}

// parseRecognizeResponse scans the newline-delimited JSON the endpoint
// returns. The first line is usually an empty result; the transcript arrives
// in a later line. Unparseable lines are ignored.
func parseRecognizeResponse(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var parsed recognizeResponse
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}
		for _, result := range parsed.Result {
			if len(result.Alternative) > 0 && result.Alternative[0].Transcript != "" {
				return result.Alternative[0].Transcript
			}
		}
	}
	return ""
}
