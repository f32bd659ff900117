package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/internal/property"
	"github.com/yourorg/ask-api/providers"
)

func TestChunkAnswerRuneBoundaries(t *testing.T) {
	// em dashes are 3 bytes each and 80 is not a multiple of 3, so naive
	// byte slicing would cut one in half
	answer := strings.Repeat("—", 100) + "°F¢" + strings.Repeat("x", 50)
	chunks := chunkAnswer(answer)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), chunkSize)
		assert.NotEmpty(t, c)
	}
	assert.Equal(t, answer, strings.Join(chunks, ""))
}

func TestChunkAnswerASCII(t *testing.T) {
	answer := strings.Repeat("a", 200)
	chunks := chunkAnswer(answer)
	require.Len(t, chunks, 3)
	assert.Equal(t, answer, strings.Join(chunks, ""))
}

func TestChunkAnswerEmpty(t *testing.T) {
	assert.Empty(t, chunkAnswer(""))
}

func TestAskStreamReassembles(t *testing.T) {
	eng := &engine.Engine{Providers: providers.NewRegistry(providers.Availability{}, nil)}
	r := chi.NewRouter()
	RegisterAskStream(r, AskDeps{Engine: eng})

	// the climate template emits °F, so the chunked answer carries
	// multi-byte characters
	question := "What's the climate and air quality like around this home?"
	body := `{"question": "` + question + `", "propertyContext": {"address": "123 Main St", "city": "Austin", "state": "TX", "zip": "78704"}}`
	req := httptest.NewRequest(http.MethodPost, "/ask/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var reassembled strings.Builder
	var sawMetadata, sawDone bool
	sc := bufio.NewScanner(rec.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt))
		switch evt["type"] {
		case "chunk":
			content := evt["content"].(string)
			assert.True(t, utf8.ValidString(content))
			assert.NotContains(t, content, string(utf8.RuneError))
			reassembled.WriteString(content)
		case "metadata":
			sawMetadata = true
		case "done":
			sawDone = true
		}
	}
	require.NoError(t, sc.Err())
	assert.True(t, sawMetadata)
	assert.True(t, sawDone)

	direct := eng.Answer(context.Background(), engine.Request{
		Question:        question,
		PropertyContext: &property.Context{Address: "123 Main St", City: "Austin", State: "TX", Zip: "78704"},
	})
	assert.Equal(t, direct.Response.Answer, reassembled.String())
	assert.Contains(t, reassembled.String(), "°F")
}
