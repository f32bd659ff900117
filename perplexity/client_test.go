package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionJSON(content string, citations ...string) string {
	resp := map[string]any{
		"id": "cmpl-1",
		"choices": []map[string]any{
			{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	if len(citations) > 0 {
		resp["citations"] = citations
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("The area is served by fiber internet.", "https://example.com/a")))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	comp, err := c.Complete(context.Background(), "What internet is available?", "You are a data assistant.")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sonar-pro", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)

	assert.Equal(t, "The area is served by fiber internet.", comp.Content)
	assert.Equal(t, []string{"https://example.com/a"}, comp.Citations)
}

func TestCompleteOmitsEmptySystemPrompt(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(completionJSON("ok")))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), "q", "")
	require.NoError(t, err)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "cmpl-2", "error": {"type": "invalid_model", "message": "unknown model"}}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Complete(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestAnalyzeImages(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(completionJSON("Roof looks recently replaced.")))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	comp, err := c.AnalyzeImages(context.Background(), "Describe the condition.",
		[]string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Roof looks recently replaced.", comp.Content)

	msgs := raw["messages"].([]any)
	require.Len(t, msgs, 1)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 3) // text + two images
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
}

func TestAnalyzeImagesNoURLs(t *testing.T) {
	c := NewClient("k")
	_, err := c.AnalyzeImages(context.Background(), "p", nil)
	assert.Error(t, err)
}

func TestCompleteWithPolicyRetriesPastRefusal(t *testing.T) {
	var calls int32
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if s, ok := req.Messages[0].Content.(string); ok && req.Messages[0].Role == "system" {
			prompts = append(prompts, s)
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(completionJSON("I cannot answer questions about specific addresses.")))
			return
		}
		w.Write([]byte(completionJSON("The neighborhood is generally quiet.")))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, PromptVariants: []string{"variant one", "variant two"}}
	comp, err := c.CompleteWithPolicy(context.Background(), "q", "original prompt", policy)
	require.NoError(t, err)

	assert.Equal(t, "The neighborhood is generally quiet.", comp.Content)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"original prompt", "variant one"}, prompts)
}

func TestCompleteWithPolicyAllRefusals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionJSON("I'm unable to help with that.")))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	policy := RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}
	comp, err := c.CompleteWithPolicy(context.Background(), "q", "", policy)
	assert.ErrorIs(t, err, ErrUnusable)
	assert.Equal(t, "I'm unable to help with that.", comp.Content)
}

func TestLooksUnusable(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"", true},
		{"   \n ", true},
		{"I cannot provide that information.", true},
		{"I can't answer this.", true},
		{"As an AI, I don't browse.", true},
		{"The house sold in 2019 for $450,000.", false},
		{"Sure — I cannot stress enough how quiet it is.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksUnusable(tt.content), "%q", tt.content)
	}
}
