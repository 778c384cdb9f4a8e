// Package generate streams simplified explanations from a locally hosted
// Ollama server.
//
// The server answers /api/generate requests with newline-delimited JSON
// fragments, each optionally carrying a "response" text chunk. The client
// assembles the chunks into one reply and follows a strict no-fault contract:
// transport failures and malformed fragments never reach the caller as
// errors, only as fixed user-readable fallback text.
package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sahaayika/internal/logger"
)

const (
	// DefaultEndpoint is the local Ollama generation endpoint.
	DefaultEndpoint = "http://localhost:11434/api/generate"

	// DefaultModel is the model identifier sent with every request.
	DefaultModel = "gemma3n:latest"

	// DefaultTimeout bounds the total wait for a generation, including
	// consumption of the streamed body.
	DefaultTimeout = 200 * time.Second

	systemPrompt = "You are a helpful assistant."

	// NoResponseReply is returned when the stream ends without any content.
	NoResponseReply = "❌ No response from model."

	errorReplyPrefix = "❌ Ollama server error: "
)

// maxLineBytes bounds a single streamed fragment.
const maxLineBytes = 1024 * 1024

// Config holds the generation client settings.
type Config struct {
	// Endpoint is the generation URL. Empty selects DefaultEndpoint.
	Endpoint string

	// Model is the model identifier. Empty selects DefaultModel.
	Model string

	// Timeout bounds the whole request including stream consumption.
	// Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Client issues streaming generation requests and assembles the replies.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a generation client from the given configuration,
// filling in defaults for unset fields.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger.WithComponent("generate"),
	}
}

type generateRequest struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt"`
	Stream       bool   `json:"stream"`
}

type generateFragment struct {
	Response string `json:"response"`
}

// Generate sends the prompt to the generation server and returns the
// assembled reply. It never returns an error: transport faults yield a fixed
// server-error message and an empty stream yields NoResponseReply.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	body, err := json.Marshal(generateRequest{
		Model:        c.model,
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Stream:       true,
	})
	if err != nil {
		return errorReply(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errorReply(err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().
		Str("endpoint", c.endpoint).
		Str("model", c.model).
		Int("prompt_length", len(prompt)).
		Msg("Sending generation request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", c.endpoint).Msg("Generation request failed")
		return errorReply(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Msg("Generation server returned non-OK status")
	}

	var reply strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		// Some proxies wrap the fragments in SSE framing.
		line = strings.TrimPrefix(line, "data: ")

		var fragment generateFragment
		if err := json.Unmarshal([]byte(line), &fragment); err != nil {
			c.log.Warn().Err(err).Str("line", line).Msg("Skipping malformed stream fragment")
			continue
		}
		reply.WriteString(fragment.Response)
	}
	if err := scanner.Err(); err != nil {
		c.log.Error().Err(err).Msg("Generation stream aborted")
		return errorReply(err)
	}

	result := strings.TrimSpace(reply.String())
	if result == "" {
		c.log.Warn().Msg("Generation stream produced no content")
		return NoResponseReply
	}

	c.log.Debug().Int("reply_length", len(result)).Msg("Generation completed")
	return result
}

func errorReply(err error) string {
	return fmt.Sprintf("%s%v", errorReplyPrefix, err)
}
