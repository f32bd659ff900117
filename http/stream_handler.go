package httpapi

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/yourorg/ask-api/internal/engine"
)

// chunkSize is how much answer text each SSE chunk carries. Streaming is a
// transport concern here: the engine computes the whole answer, the handler
// slices it.
const chunkSize = 80

func RegisterAskStream(r chi.Router, d AskDeps) {
	r.Post("/ask/stream", func(w http.ResponseWriter, req *http.Request) {
		var body AskRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		if body.Question == "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "question_required"})
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			render.Status(req, http.StatusInternalServerError)
			render.JSON(w, req, map[string]any{"error": "streaming_unsupported"})
			return
		}

		out := d.Engine.Answer(req.Context(), engine.Request{
			Question:        body.Question,
			PropertyContext: body.PropertyContext,
		})
		persistBatch(d.Store, d.Log, out)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		for _, chunk := range chunkAnswer(out.Response.Answer) {
			writeEvent(w, map[string]any{"type": "chunk", "content": chunk})
			flusher.Flush()
		}
		writeEvent(w, map[string]any{
			"type":                "metadata",
			"confidence":          out.Response.Confidence,
			"sources":             out.Response.Sources,
			"followUpSuggestions": out.Response.FollowUpSuggestions,
			"category":            out.Response.Category,
			"corrections":         out.Response.Corrections,
		})
		flusher.Flush()
		writeEvent(w, map[string]any{
			"type":            "done",
			"requestId":       out.Response.RequestID,
			"responseTime_ms": out.Response.ResponseTimeMS,
		})
		flusher.Flush()
	})
}

// chunkAnswer splits the answer into chunkSize-byte pieces, backing each
// boundary up to a rune start so no UTF-8 sequence is split across chunks.
func chunkAnswer(answer string) []string {
	var out []string
	for i := 0; i < len(answer); {
		end := i + chunkSize
		if end >= len(answer) {
			end = len(answer)
		} else {
			for !utf8.RuneStart(answer[end]) {
				end--
			}
		}
		out = append(out, answer[i:end])
		i = end
	}
	return out
}

func writeEvent(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n\n"))
}
