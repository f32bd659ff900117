// Package engine is the question-answering orchestrator: classify the
// question, select providers, fan out, validate/enrich, format. It owns the
// PropertyContext for the lifetime of one question and never mutates it.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourorg/ask-api/internal/canon"
	"github.com/yourorg/ask-api/internal/classify"
	"github.com/yourorg/ask-api/internal/enrich"
	"github.com/yourorg/ask-api/internal/events"
	"github.com/yourorg/ask-api/internal/extrapolate"
	"github.com/yourorg/ask-api/internal/fanout"
	"github.com/yourorg/ask-api/internal/format"
	"github.com/yourorg/ask-api/internal/property"
	"github.com/yourorg/ask-api/internal/redisx"
	"github.com/yourorg/ask-api/internal/refresh"
	"github.com/yourorg/ask-api/internal/selector"
	"github.com/yourorg/ask-api/perplexity"
	"github.com/yourorg/ask-api/providers"
)

// AI is the slice of the perplexity client the engine needs. Nil disables
// AI-backed handlers; everything else still works.
type AI interface {
	Complete(ctx context.Context, query, systemPrompt string) (perplexity.Completion, error)
	CompleteWithPolicy(ctx context.Context, query, systemPrompt string, p perplexity.RetryPolicy) (perplexity.Completion, error)
	AnalyzeImages(ctx context.Context, prompt string, urls []string) (perplexity.Completion, error)
}

type Engine struct {
	Providers *providers.Registry
	AI        AI
	Cache     *redisx.Client     // optional provider-payload cache
	Refresher *refresh.Refresher // optional stale-cache refresher
	Events    events.Publisher   // optional
	Log       *zap.SugaredLogger

	CacheTTL    time.Duration // envelope TTL, default 1h
	StaleAfter  time.Duration // serve-stale threshold, default 10m
	RetryPolicy perplexity.RetryPolicy
}

type Request struct {
	Question        string            `json:"question"`
	PropertyContext *property.Context `json:"propertyContext,omitempty"`
}

type Response struct {
	Answer              string              `json:"answer"`
	Confidence          string              `json:"confidence"`
	Sources             []string            `json:"sources"`
	FollowUpSuggestions []string            `json:"followUpSuggestions"`
	ResponseTimeMS      int64               `json:"responseTime_ms"`
	Category            string              `json:"category"`
	Corrections         []enrich.Correction `json:"corrections,omitempty"`
	RequestID           string              `json:"requestId"`
	AskSeller           bool                `json:"askSeller,omitempty"`
}

// Outcome bundles the response with the raw batch so the HTTP layer can run
// its write-behind without the engine knowing about the store.
type Outcome struct {
	Response    Response
	Batch       fanout.Batch
	PropertyKey string
	Category    classify.Category
}

const webSearchPrompt = `You are a knowledgeable real-estate assistant. Answer the buyer's question about the given property using your web search capability. Be factual, concise, and cite sources.`

// Answer runs the full pipeline for one question. It never returns an error
// for data problems; every failure mode degrades the response instead.
func (e *Engine) Answer(ctx context.Context, req Request) Outcome {
	start := time.Now()
	reqID := uuid.NewString()

	pctx := withDefaults(req.PropertyContext)
	pkey := propertyKey(pctx)
	question := strings.TrimSpace(req.Question)

	cat := classify.Classify(question)
	ids := selector.Select(cat, question)
	recipe := recipeFor(cat)
	if recipe != nil {
		ids = union(ids, recipe.Required)
	}
	needsAI := selector.NeedsAIFallback(cat, question) && e.AI != nil

	invs := e.buildInvocations(pctx, pkey, question, cat, ids, needsAI)
	batch := fanout.Execute(ctx, invs)
	if recipe != nil {
		e.applyRecipe(recipe, &batch, pctx)
	}

	outcome := enrich.Validate(ctx, e.aiBackend(), question, batch)

	var resp Response
	if len(outcome.EnrichedData) == 0 || outcome.Confidence == "low" {
		if ai, ok := e.answerWithSearch(ctx, question, pctx); ok {
			resp = ai
		}
	}
	if resp.Answer == "" {
		f := format.Format(question, cat, outcome.EnrichedData, pctx, outcome.Sources...)
		resp = Response{
			Answer:              f.Answer,
			Confidence:          outcome.Confidence,
			Sources:             f.Sources,
			FollowUpSuggestions: f.FollowUpSuggestions,
			AskSeller:           f.AskSeller,
		}
	}
	resp.Category = string(cat)
	resp.Corrections = outcome.Corrections
	resp.RequestID = reqID
	resp.ResponseTimeMS = time.Since(start).Milliseconds()

	if e.Log != nil {
		e.Log.Infow("answered", "request_id", reqID, "category", cat, "providers", len(ids),
			"failures", batch.Failures, "confidence", resp.Confidence, "ms", resp.ResponseTimeMS)
	}
	if e.Events != nil {
		e.Events.PublishQuestionAnswered(ctx, events.QuestionAnswered{
			RequestID:   reqID,
			PropertyKey: pkey,
			Category:    string(cat),
			Confidence:  resp.Confidence,
			Source:      batch.Source,
			LiveCount:   liveCount(batch),
			Latency:     time.Since(start),
		})
	}
	return Outcome{Response: resp, Batch: batch, PropertyKey: pkey, Category: cat}
}

// answerWithSearch is the AI-only short circuit: ungrounded web-search
// synthesis, bypassing the category formatter.
func (e *Engine) answerWithSearch(ctx context.Context, question string, pctx property.Context) (Response, bool) {
	if e.AI == nil {
		return Response{}, false
	}
	query := question
	if s := pctx.Summary(); s != "" {
		query = question + "\n\nProperty: " + s
	}
	comp, err := e.AI.CompleteWithPolicy(ctx, query, webSearchPrompt, e.retryPolicy())
	if err != nil || perplexity.LooksUnusable(comp.Content) {
		if e.Log != nil {
			e.Log.Warnw("ai short-circuit failed", "err", err)
		}
		return Response{
			Answer:     "I couldn't find enough reliable data to answer that right now. Try rephrasing, or ask about the property's value, costs, schools, or risks.",
			Confidence: "low",
			Sources:    []string{},
			FollowUpSuggestions: []string{
				"Is this a good investment?",
				"Are there any red flags?",
			},
		}, true
	}
	return Response{
		Answer:              comp.Content,
		Confidence:          "medium",
		Sources:             comp.Citations,
		FollowUpSuggestions: []string{"Is this a good investment?", "What's the true monthly cost?"},
	}, true
}

func (e *Engine) retryPolicy() perplexity.RetryPolicy {
	if e.RetryPolicy.MaxAttempts > 0 {
		return e.RetryPolicy
	}
	return perplexity.DefaultRetryPolicy()
}

// aiBackend adapts the possibly-nil AI field to the validator's interface.
func (e *Engine) aiBackend() enrich.Backend {
	if e.AI == nil {
		return nil
	}
	return e.AI
}

func withDefaults(in *property.Context) property.Context {
	if in == nil {
		return property.Context{}
	}
	return *in
}

func propertyKey(pctx property.Context) string {
	if pctx.Address != "" {
		_, _, _, _, key := canon.Canonicalize(pctx.Address, pctx.City, pctx.State, pctx.Zip)
		return key
	}
	if pctx.Lat != 0 || pctx.Lon != 0 {
		return canon.KeyFromLatLon(pctx.Lat, pctx.Lon)
	}
	return "unknown"
}

func recipeFor(cat classify.Category) *extrapolate.Config {
	switch cat {
	case classify.Investment:
		return &extrapolate.Config{Type: extrapolate.InvestmentAnalysis,
			Required: []string{providers.RentEstimate, providers.AttomAVM, providers.AttomTax, providers.FredMortgage, providers.NeighborhoodScore, providers.ListingDetail}}
	case classify.Valuation:
		return &extrapolate.Config{Type: extrapolate.OverpricedCheck,
			Required: []string{providers.AttomAVM, providers.ListingDetail}}
	case classify.MonthlyCost:
		return &extrapolate.Config{Type: extrapolate.TrueMonthlyCost,
			Required: []string{providers.FredMortgage, providers.AttomTax, providers.HOARecords, providers.ListingDetail}}
	case classify.RedFlags:
		return &extrapolate.Config{Type: extrapolate.RedFlagScan,
			Required: []string{providers.FemaFlood, providers.WildfireRisk, providers.USGSQuakes, providers.NoiseScore, providers.CrimeGrade}}
	}
	return nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func liveCount(b fanout.Batch) int {
	n := 0
	for _, r := range b.Results {
		if r.Success && r.Source == providers.SourceLive {
			n++
		}
	}
	return n
}
