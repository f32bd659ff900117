package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	httpapi "github.com/yourorg/ask-api/http"
)

func BuildRouter(deps httpapi.AskDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(60, 1*time.Minute)) // protect provider + AI quotas
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })

	httpapi.RegisterAsk(r, deps)
	httpapi.RegisterAskStream(r, deps)

	return r
}
