package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sahaayika/internal/logger"
)

// DefaultTTSEndpoint is the public Google text-to-speech endpoint.
const DefaultTTSEndpoint = "https://translate.google.com/translate_tts"

// maxChunkRunes is the per-request text limit of the TTS endpoint. Longer
// texts are split and the resulting MP3 segments concatenated.
const maxChunkRunes = 200

// GoogleSynthesizer implements Synthesizer against the public Google TTS
// endpoint, writing MP3 artifacts with random unique names.
type GoogleSynthesizer struct {
	endpoint   string
	audioDir   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewGoogleSynthesizer creates a synthesizer writing artifacts into audioDir.
// Empty arguments select DefaultTTSEndpoint and the current directory.
func NewGoogleSynthesizer(endpoint, audioDir string) *GoogleSynthesizer {
	if endpoint == "" {
		endpoint = DefaultTTSEndpoint
	}
	if audioDir == "" {
		audioDir = "."
	}
	return &GoogleSynthesizer{
		endpoint: endpoint,
		audioDir: audioDir,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: logger.WithComponent("speech-tts"),
	}
}

// Synthesize narrates the text with the given voice and returns the path of
// the written MP3 file.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, voiceCode string) (string, error) {
	const op = "Synthesize"

	if text == "" {
		return "", fmt.Errorf("%s: no text to narrate", op)
	}

	var audio []byte
	for _, chunk := range splitChunks(text, maxChunkRunes) {
		segment, err := g.fetchChunk(ctx, chunk, voiceCode)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		audio = append(audio, segment...)
	}

	name := fmt.Sprintf("audio_%s.mp3", artifactID())
	path := filepath.Join(g.audioDir, name)
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return "", fmt.Errorf("%s: writing artifact: %w", op, err)
	}

	g.log.Debug().
		Str("voice", voiceCode).
		Str("path", path).
		Int("bytes", len(audio)).
		Msg("Speech synthesis completed")

	return path, nil
}

func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk, voiceCode string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", voiceCode)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// splitChunks splits text into rune-bounded chunks, preferring to break at
// the last space within the limit.
func splitChunks(text string, limit int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := limit
		for i := limit; i > 0; i-- {
			if runes[i] == ' ' || runes[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == ' ' || runes[0] == '\n') {
			runes = runes[1:]
		}
	}
	return chunks
}

// artifactID returns a short random identifier for audio file names.
func artifactID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:3])
}
