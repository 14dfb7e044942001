package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/domain"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content, finish string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gemini-1.5-flash",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
	})
	return string(body)
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GenerateSendsSingleTurnPrompt(t *testing.T) {
	req := require.New(t)

	var got chatRequest
	var auth, path string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("4", "stop")))
	})

	c := NewClient("secret", WithBaseURL(srv.URL+"/v1beta/openai/"), WithModel("gemini-test"))
	text, err := c.Generate(context.Background(), "2+2?")

	req.NoError(err)
	req.Equal("4", text)
	req.Equal("Bearer secret", auth)
	req.Equal("/v1beta/openai/chat/completions", path)
	req.Equal("gemini-test", got.Model)
	req.Len(got.Messages, 1)
	req.Equal("user", got.Messages[0].Role)
	req.Equal("2+2?", got.Messages[0].Content)
}

func TestClient_GenerateReturnsTextVerbatim(t *testing.T) {
	req := require.New(t)
	reply := "  line one\n\n*line two*  "
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(reply, "stop")))
	})

	text, err := NewClient("k", WithBaseURL(srv.URL)).Generate(context.Background(), "x")
	req.NoError(err)
	req.Equal(reply, text)
}

func TestClient_GenerateProviderError(t *testing.T) {
	req := require.New(t)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := NewClient("k", WithBaseURL(srv.URL)).Generate(context.Background(), "x")
	req.Error(err)
}

func TestClient_GenerateEmptyCompletion(t *testing.T) {
	for name, body := range map[string]string{
		"no choices": `{"id":"x","object":"chat.completion","model":"m","choices":[]}`,
		"blank text": completionBody("   ", "SAFETY"),
	} {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			})

			_, err := NewClient("k", WithBaseURL(srv.URL)).Generate(context.Background(), "x")
			req.ErrorIs(err, domain.ErrEmptyCompletion)
		})
	}
}

func TestClient_GenerateHonoursContextDeadline(t *testing.T) {
	req := require.New(t)
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Generate(ctx, "x")
	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestNewClient_Defaults(t *testing.T) {
	req := require.New(t)
	c := NewClient("k", WithBaseURL(" "), WithModel(""), WithHTTPClient(nil))

	req.Equal(DefaultBaseURL, c.BaseURL)
	req.Equal(DefaultModel, c.Model)
	req.NotNil(c.HTTPClient)
}
