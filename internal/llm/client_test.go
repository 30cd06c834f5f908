package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionJSON(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "local-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Model: "local-model"})
}

func TestSummarize_SendsChatCompletion(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/chat/completions"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("- point one\n- point two")))
	})

	text, err := client.Summarize(context.Background(), "be brief", "chapter text")
	require.NoError(t, err)
	assert.Equal(t, "- point one\n- point two", text)

	assert.Equal(t, "local-model", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 1e-9)
	assert.EqualValues(t, 2000, got["max_tokens"])
	if stream, ok := got["stream"]; ok {
		assert.Equal(t, false, stream)
	}
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "be brief", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "chapter text", msgs[1].(map[string]any)["content"])

	assert.Equal(t, 1, client.Stats.Snapshot().Count)
}

func TestSummarize_NonSuccessStatus(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"model crashed"}}`))
	})

	_, err := client.Summarize(context.Background(), "", "text")
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindStatus, ce.Kind)
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, 1, calls, "failed calls must not be retried")
	assert.Equal(t, 1, client.Stats.Snapshot().Failures)
}

func TestSummarize_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [`))
	})

	_, err := client.Summarize(context.Background(), "", "text")
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindMalformed, ce.Kind)
}

func TestSummarize_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	})

	_, err := client.Summarize(context.Background(), "", "text")
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindMalformed, ce.Kind)
}

func TestSummarize_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Summarize(ctx, "", "text")
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTimeout, ce.Kind)
}

func TestSummarize_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.Summarize(context.Background(), "", "text")
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindConnection, ce.Kind)
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/models"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"local-model","object":"model","created":0,"owned_by":"me"}]}`))
	})
	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Equal(t, KindTimeout, Classify(context.DeadlineExceeded).Kind)
	assert.Equal(t, KindMalformed, Classify(errors.New("invalid character")).Kind)

	orig := &CallError{Kind: KindStatus, StatusCode: 503, Err: errors.New("busy")}
	assert.Same(t, orig, Classify(orig))
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"<think>reasoning\nmore</think>\n\nSummary", "Summary"},
		{"```markdown\n# Title\n- a\n```", "# Title\n- a"},
		{"text with ``` inside", "text with ``` inside"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, cleanResponse(tc.in))
	}
}

func TestAPIBase(t *testing.T) {
	assert.Equal(t, "http://localhost:1234/v1/", apiBase("http://localhost:1234"))
	assert.Equal(t, "http://localhost:1234/v1/", apiBase("http://localhost:1234/v1/"))
	assert.Equal(t, "http://localhost:1234/v1/", apiBase(""))
}
