package generate

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(endpoint string) *Client {
	return NewClient(Config{
		Endpoint: endpoint,
		Model:    "test-model",
		Timeout:  5 * time.Second,
	})
}

func streamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("request method = %s, want POST", r.Method)
		}
		for _, line := range lines {
			if _, err := w.Write([]byte(line + "\n")); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
}

func TestGenerateAssemblesFragments(t *testing.T) {
	srv := streamServer(t, []string{
		`{"response":"Hel"}`,
		`{"response":"lo"}`,
		`{"response":" world"}`,
		`{"done":true}`,
	})
	defer srv.Close()

	got := newTestClient(srv.URL).Generate(context.Background(), "explain this")
	if got != "Hello world" {
		t.Errorf("Generate() = %q, want %q", got, "Hello world")
	}
}

func TestGenerateSkipsMalformedFragments(t *testing.T) {
	srv := streamServer(t, []string{
		`{"response":"Hel"}`,
		`garbage`,
		`{"response":"lo"}`,
	})
	defer srv.Close()

	got := newTestClient(srv.URL).Generate(context.Background(), "explain this")
	if got != "Hello" {
		t.Errorf("Generate() = %q, want %q", got, "Hello")
	}
}

func TestGenerateStripsSSEPrefix(t *testing.T) {
	srv := streamServer(t, []string{
		`data: {"response":"Hel"}`,
		`data: {"response":"lo"}`,
	})
	defer srv.Close()

	got := newTestClient(srv.URL).Generate(context.Background(), "explain this")
	if got != "Hello" {
		t.Errorf("Generate() = %q, want %q", got, "Hello")
	}
}

func TestGenerateEmptyStreamReturnsFallback(t *testing.T) {
	srv := streamServer(t, nil)
	defer srv.Close()

	got := newTestClient(srv.URL).Generate(context.Background(), "explain this")
	if got != NoResponseReply {
		t.Errorf("Generate() = %q, want %q", got, NoResponseReply)
	}
}

func TestGenerateBlankFragmentsReturnFallback(t *testing.T) {
	srv := streamServer(t, []string{
		`{"done":false}`,
		``,
		`{"done":true}`,
	})
	defer srv.Close()

	got := newTestClient(srv.URL).Generate(context.Background(), "explain this")
	if got != NoResponseReply {
		t.Errorf("Generate() = %q, want %q", got, NoResponseReply)
	}
}

func TestGenerateConnectionRefusedReturnsErrorReply(t *testing.T) {
	// Reserve a port, then close the listener so nothing is serving on it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	got := newTestClient(endpoint).Generate(context.Background(), "explain this")
	if !strings.HasPrefix(got, "❌ Ollama server error: ") {
		t.Errorf("Generate() = %q, want server error reply", got)
	}
}

func TestGenerateSendsModelAndSystemPrompt(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		gotBody = string(buf)
		w.Write([]byte(`{"response":"ok"}` + "\n"))
	}))
	defer srv.Close()

	newTestClient(srv.URL).Generate(context.Background(), "the prompt")

	for _, want := range []string{
		`"model":"test-model"`,
		`"prompt":"the prompt"`,
		`"system_prompt":"You are a helpful assistant."`,
		`"stream":true`,
	} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("request body %q missing %q", gotBody, want)
		}
	}
}
