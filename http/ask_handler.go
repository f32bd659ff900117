package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/internal/property"
	"github.com/yourorg/ask-api/internal/store"
)

type AskDeps struct {
	Engine *engine.Engine
	Store  *store.Store // optional write-behind sink
	Log    *zap.SugaredLogger
}

type AskRequest struct {
	Question        string            `json:"question"`
	PropertyContext *property.Context `json:"propertyContext,omitempty"`
}

func RegisterAsk(r chi.Router, d AskDeps) {
	// POST: JSON body
	r.Post("/ask", func(w http.ResponseWriter, req *http.Request) {
		var body AskRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		handleAsk(w, req, d, body)
	})

	// GET: query params (compatibility)
	r.Get("/ask", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		body := AskRequest{Question: q.Get("question")}
		if addr := q.Get("address"); addr != "" {
			body.PropertyContext = &property.Context{
				Address: addr,
				City:    q.Get("city"),
				State:   q.Get("state"),
				Zip:     q.Get("zip"),
			}
		}
		handleAsk(w, req, d, body)
	})
}

func handleAsk(w http.ResponseWriter, req *http.Request, d AskDeps, body AskRequest) {
	if body.Question == "" {
		render.Status(req, http.StatusBadRequest)
		render.JSON(w, req, map[string]any{"error": "question_required"})
		return
	}
	out := d.Engine.Answer(req.Context(), engine.Request{
		Question:        body.Question,
		PropertyContext: body.PropertyContext,
	})

	// write-behind: raw payload snapshots, off the request path
	persistBatch(d.Store, d.Log, out)

	render.JSON(w, req, out.Response)
}
