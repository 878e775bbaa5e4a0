// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HELPERS
// =============================================================================

func newTestClient(t *testing.T, handler http.Handler, mutate ...func(*ClientConfig)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	for _, m := range mutate {
		m(cfg)
	}
	client, err := NewClientWithConfig(cfg)
	require.NoError(t, err)
	return client
}

// writeLines writes NDJSON lines, flushing after each.
func writeLines(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	for _, line := range lines {
		fmt.Fprintln(w, line)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func contentLine(s string) string {
	b, _ := json.Marshal(map[string]any{
		"model":   "qwen3",
		"message": map[string]string{"role": "assistant", "content": s},
		"done":    false,
	})
	return string(b)
}

const doneLine = `{"model":"qwen3","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop",` +
	`"total_duration":2000000000,"prompt_eval_count":5,"eval_count":10,"eval_duration":1000000000}`

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client, err := NewClientWithConfig(&ClientConfig{})
	require.NoError(t, err)

	cfg := client.Config()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.StreamIdleTimeout)
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://127.0.0.1:11434", want: "http://127.0.0.1:11434"},
		{in: "localhost:11434", want: "http://localhost:11434"},
		{in: " https://ollama.lan/ ", want: "https://ollama.lan"},
		{in: "ftp://host", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			u, err := parseBaseURL(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.String())
		})
	}
}

// =============================================================================
// HEALTH AND MODELS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	assert.NoError(t, client.CheckRunning(context.Background()))
}

func TestCheckRunning_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := NewClientWithConfig(&ClientConfig{BaseURL: addr, Timeout: time.Second})
	require.NoError(t, err)

	err = client.CheckRunning(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotRunning(err), "got %v", err)
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[
			{"name":"llama3:8b","size":4700000000,"digest":"abc","details":{"family":"llama","parameter_size":"8B","quantization_level":"Q4_0"}},
			{"name":"qwen3:4b","size":2500000000,"digest":"def","details":{"family":"qwen3","parameter_size":"4B"}}
		]}`)
	}))

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, "llama3:8b", models[0].Name)
	assert.Equal(t, int64(4700000000), models[0].Size)
	assert.Equal(t, "8B", models[0].Details.ParameterSize)
	assert.Equal(t, "llama", models[0].Details.Family)
	assert.Equal(t, "Q4_0", models[0].Details.QuantizationLevel)
	assert.Equal(t, "qwen3:4b", models[1].Name)
}

func TestGetModel_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'nope' not found"}`)
	}))

	_, err := client.GetModel(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err), "got %v", err)
	assert.False(t, client.ModelExists(context.Background(), "nope"))
}

func TestModelInfo_FormatSize(t *testing.T) {
	assert.Equal(t, "4.7 GB", ModelInfo{Size: 4_700_000_000}.FormatSize())
	assert.Equal(t, "0 B", ModelInfo{}.FormatSize())
}

// =============================================================================
// CHAT STREAMING
// =============================================================================

func TestChatStream(t *testing.T) {
	var got api.ChatRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeLines(w, contentLine("Hel"), contentLine("lo <thi"), contentLine("nk>x</think>"), doneLine)
	}), func(c *ClientConfig) {
		c.Options = map[string]any{"temperature": 0.2}
	})

	var (
		content strings.Builder
		stats   = NewStreamStats()
	)
	err := client.ChatStream(context.Background(), "qwen3", []Message{
		NewSystemMessage("be brief"),
		NewUserMessage("hi"),
	}, func(chunk StreamChunk) error {
		content.WriteString(chunk.Content)
		stats.Add(chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello <think>x</think>", content.String())
	assert.Equal(t, "qwen3", got.Model)
	require.NotNil(t, got.Stream)
	assert.True(t, *got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
	assert.InDelta(t, 0.2, got.Options["temperature"], 1e-9)

	assert.True(t, stats.Complete())
	assert.Equal(t, 10, stats.CompletionTokens)
	assert.Equal(t, 5, stats.PromptTokens)
	assert.InDelta(t, 10.0, stats.TokensPerSecond, 1e-9)
}

func TestChatStream_ModelNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"error":"model \"nope\" not found, try pulling it first"}`)
	}))

	err := client.ChatStream(context.Background(), "nope", []Message{NewUserMessage("hi")}, nil)
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err), "got %v", err)
}

func TestChatStream_IdleTimeout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w, contentLine("partial"))
		<-r.Context().Done()
	}), func(c *ClientConfig) {
		c.StreamIdleTimeout = 50 * time.Millisecond
	})

	var chunks int
	start := time.Now()
	err := client.ChatStream(context.Background(), "qwen3", []Message{NewUserMessage("hi")}, func(StreamChunk) error {
		chunks++
		return nil
	})

	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.True(t, clientErr.Timeout())
	assert.Equal(t, 1, chunks)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestChatStream_Cancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w, contentLine("partial"))
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := client.ChatStream(ctx, "qwen3", []Message{NewUserMessage("hi")}, func(StreamChunk) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err))
}

func TestChatStream_CallbackError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w, contentLine("a"), contentLine("b"), doneLine)
	}))

	stop := errors.New("stop")
	err := client.ChatStream(context.Background(), "qwen3", []Message{NewUserMessage("hi")}, func(StreamChunk) error {
		return stop
	})
	assert.Same(t, stop, err)
}

// =============================================================================
// PULL
// =============================================================================

func TestPullModel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.PullRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen3:4b", req.Model)
		writeLines(w,
			`{"status":"pulling manifest"}`,
			`{"status":"pulling abc","digest":"sha256:abc","total":100,"completed":40}`,
			`{"status":"pulling abc","digest":"sha256:abc","total":100,"completed":100}`,
			`{"status":"success"}`,
		)
	}))

	var updates []PullProgress
	err := client.PullModel(context.Background(), "qwen3:4b", func(p PullProgress) error {
		updates = append(updates, p)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updates, 4)
	assert.Equal(t, "pulling manifest", updates[0].Status)
	assert.InDelta(t, 0.4, updates[1].Fraction(), 1e-9)
	assert.Equal(t, "success", updates[3].Status)
}

func TestPullModel_UnknownModel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeLines(w,
			`{"status":"pulling manifest"}`,
			`{"error":"pull model manifest: file does not exist"}`,
		)
	}))

	err := client.PullModel(context.Background(), "nobody/nothing", nil)
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err), "got %v", err)
}

// =============================================================================
// ERRORS AND STATS
// =============================================================================

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"deadline", context.DeadlineExceeded, ErrTypeTimeout},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ErrTypeNotRunning},
		{"status 404", api.StatusError{StatusCode: 404, ErrorMessage: "missing"}, ErrTypeModelNotFound},
		{"status 500", api.StatusError{StatusCode: 500, ErrorMessage: "boom"}, ErrTypeInvalidResponse},
		{"stream message", errors.New(`model "x" not found`), ErrTypeModelNotFound},
		{"other", errors.New("broken pipe"), ErrTypeConnection},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var clientErr *ClientError
			require.ErrorAs(t, wrapError("op", tc.err), &clientErr)
			assert.Equal(t, tc.want, clientErr.Type)
		})
	}

	assert.Same(t, context.Canceled, wrapError("op", context.Canceled))
	assert.NoError(t, wrapError("op", nil))
}

func TestClientError_Is(t *testing.T) {
	err := fmt.Errorf("turn: %w", &ClientError{Type: ErrTypeTimeout, Message: "idle"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrNotRunning)
	assert.Equal(t, "timeout", ErrTypeTimeout.String())
}

func TestStreamStats_Format(t *testing.T) {
	s := &StreamStats{
		TotalDuration:    2300 * time.Millisecond,
		CompletionTokens: 120,
		TokensPerSecond:  52.14,
		TTFT:             340 * time.Millisecond,
	}
	assert.Equal(t, "2.3s | 120 tokens | 52.1 tok/s | TTFT 340ms", s.Format())

	s.TotalDuration = 800 * time.Millisecond
	assert.True(t, strings.HasPrefix(s.Format(), "800ms |"))
}

func TestPullProgress_Fraction(t *testing.T) {
	assert.Equal(t, 0.0, PullProgress{}.Fraction())
	assert.Equal(t, 1.0, PullProgress{Total: 10, Completed: 20}.Fraction())
	assert.InDelta(t, 0.5, PullProgress{Total: 10, Completed: 5}.Fraction(), 1e-9)
}

func TestNewMessages(t *testing.T) {
	assert.Equal(t, Message{Role: "user", Content: "a"}, NewUserMessage("a"))
	assert.Equal(t, Message{Role: "assistant", Content: "b"}, NewAssistantMessage("b"))
	assert.Equal(t, Message{Role: "system", Content: "c"}, NewSystemMessage("c"))
}
