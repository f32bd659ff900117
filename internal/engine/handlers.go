package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourorg/ask-api/internal/classify"
	"github.com/yourorg/ask-api/internal/extrapolate"
	"github.com/yourorg/ask-api/internal/fanout"
	"github.com/yourorg/ask-api/internal/property"
	"github.com/yourorg/ask-api/internal/refresh"
	"github.com/yourorg/ask-api/providers"
)

const visionPrompt = `Describe the condition of the property shown in these photos for a prospective buyer: roof, exterior, yard, and anything worth flagging. Short bullet points, facts only.`

// buildInvocations assembles the handler batch: one invocation per selected
// provider, plus the AI query and the vision analysis when they apply. Each
// handler owns a distinct merged-map key, so the merge never contends.
func (e *Engine) buildInvocations(pctx property.Context, pkey, question string, cat classify.Category, ids []string, needsAI bool) []fanout.Invocation {
	q := providers.Query{
		Address: pctx.Address, City: pctx.City, State: pctx.State, Zip: pctx.Zip,
		Lat: pctx.Lat, Lon: pctx.Lon, Place: question,
	}

	useVision := cat == classify.PropertyCondition && e.AI != nil && len(pctx.PhotoURLs) > 0

	var invs []fanout.Invocation
	for _, id := range ids {
		if id == providers.StreetView && useVision {
			continue // replaced by the vision handler below
		}
		id := id
		to := 30 * time.Second
		if d, ok := providers.Lookup(id); ok {
			to = d.Timeout
		}
		invs = append(invs, fanout.Invocation{
			ID:      id,
			Timeout: to,
			Run: func(ctx context.Context) providers.HandlerResult {
				return e.fetchProvider(ctx, pkey, id, q, pctx)
			},
		})
	}

	if useVision {
		urls := pctx.PhotoURLs
		invs = append(invs, fanout.Invocation{
			ID:      providers.StreetView,
			Timeout: 60 * time.Second,
			Run: func(ctx context.Context) providers.HandlerResult {
				comp, err := e.AI.AnalyzeImages(ctx, visionPrompt, urls)
				if err != nil {
					return providers.Failed(err)
				}
				return providers.HandlerResult{
					Success: true,
					Source:  providers.SourceLive,
					Data:    map[string]any{"observations": []string{comp.Content}},
				}
			},
		})
	}

	if needsAI {
		invs = append(invs, fanout.Invocation{
			ID:      "ai_answer",
			Timeout: 60 * time.Second,
			Run: func(ctx context.Context) providers.HandlerResult {
				query := question
				if s := pctx.Summary(); s != "" {
					query = question + "\n\nProperty: " + s
				}
				comp, err := e.AI.CompleteWithPolicy(ctx, query, webSearchPrompt, e.retryPolicy())
				if err != nil {
					return providers.Failed(err)
				}
				return providers.HandlerResult{
					Success: true,
					Source:  providers.SourceLive,
					Data:    map[string]any{"content": comp.Content, "citations": comp.Citations},
				}
			},
		})
	}
	return invs
}

// cacheEnvelope is the per-(property, provider) cached payload, with the
// query echoed back so background refreshes can re-run the fetch.
type cacheEnvelope struct {
	Data       map[string]any  `json:"data"`
	Source     string          `json:"source"`
	Query      providers.Query `json:"query"`
	FetchedAt  time.Time       `json:"fetched_at"`
	StaleAfter time.Time       `json:"stale_after"`
}

func cacheKey(pkey, id string) string { return "prov:" + pkey + ":" + id }
func lockKey(pkey, id string) string  { return "lock:" + cacheKey(pkey, id) }
func negKey(pkey, id string) string   { return "neg:" + cacheKey(pkey, id) }

const (
	fetchLockTTL  = 15 * time.Second
	negCacheTTL   = 30 * time.Second
	lockWaitSlice = 150 * time.Millisecond
)

// fetchProvider prefers, in order: the caller-supplied context cache, the
// redis envelope (serving stale and enqueueing a refresh), then a real
// fetch through the registry guarded by a per-(property, provider) lock so
// concurrent identical questions produce one upstream call.
func (e *Engine) fetchProvider(ctx context.Context, pkey, id string, q providers.Query, pctx property.Context) providers.HandlerResult {
	if cached, ok := pctx.Cached[id].(map[string]any); ok && len(cached) > 0 {
		return providers.HandlerResult{Success: true, Data: cached, Source: providers.SourceMock}
	}

	if e.Cache == nil {
		return e.fetchAndCache(ctx, pkey, id, q)
	}

	if res, ok := e.readEnvelope(ctx, pkey, id); ok {
		return res
	}
	if hit, err := e.Cache.Exists(ctx, negKey(pkey, id)); err == nil && hit {
		return providers.HandlerResult{Success: false, Source: providers.SourceMock,
			Err: "provider recently failed; negative-cached"}
	}

	acquired, err := e.Cache.SetNX(ctx, lockKey(pkey, id), "1", fetchLockTTL)
	if err == nil && !acquired {
		// another request is already fetching; wait for its envelope
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				return providers.Failed(ctx.Err())
			case <-time.After(lockWaitSlice):
			}
			if res, ok := e.readEnvelope(ctx, pkey, id); ok {
				return res
			}
		}
		// lock holder died or is slow; fetch ourselves
	} else if err == nil {
		defer func() { _ = e.Cache.Del(context.WithoutCancel(ctx), lockKey(pkey, id)) }()
	}

	return e.fetchAndCache(ctx, pkey, id, q)
}

func (e *Engine) readEnvelope(ctx context.Context, pkey, id string) (providers.HandlerResult, bool) {
	var env cacheEnvelope
	if err := e.Cache.GetJSON(ctx, cacheKey(pkey, id), &env); err != nil || len(env.Data) == 0 {
		return providers.HandlerResult{}, false
	}
	if time.Now().After(env.StaleAfter) && e.Refresher != nil {
		e.Refresher.Enqueue(refresh.Job{PropertyKey: pkey, ProviderID: id})
	}
	return providers.HandlerResult{Success: true, Data: env.Data, Source: env.Source}, true
}

func (e *Engine) fetchAndCache(ctx context.Context, pkey, id string, q providers.Query) providers.HandlerResult {
	res := e.Providers.Fetch(ctx, id, q)
	if e.Cache != nil {
		if res.Success {
			e.writeEnvelope(ctx, pkey, id, q, res)
		} else {
			_ = e.Cache.Set(ctx, negKey(pkey, id), "1", negCacheTTL)
		}
	}
	return res
}

func (e *Engine) writeEnvelope(ctx context.Context, pkey, id string, q providers.Query, res providers.HandlerResult) {
	ttl := e.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	stale := e.StaleAfter
	if stale <= 0 {
		stale = 10 * time.Minute
	}
	env := cacheEnvelope{
		Data:       res.Data,
		Source:     res.Source,
		Query:      q,
		FetchedAt:  time.Now(),
		StaleAfter: time.Now().Add(stale),
	}
	if err := e.Cache.SetJSON(ctx, cacheKey(pkey, id), env, ttl); err != nil && e.Log != nil {
		e.Log.Warnw("cache write failed", "provider", id, "err", err)
	}
}

// RefreshProvider is the refresher's Do hook: re-fetch one stale provider
// payload using the query captured in its envelope.
func (e *Engine) RefreshProvider(ctx context.Context, j refresh.Job) {
	if e.Cache == nil {
		return
	}
	var env cacheEnvelope
	if err := e.Cache.GetJSON(ctx, cacheKey(j.PropertyKey, j.ProviderID), &env); err != nil {
		return
	}
	res := e.Providers.Fetch(ctx, j.ProviderID, env.Query)
	if !res.Success {
		if e.Log != nil {
			e.Log.Warnw("refresh failed", "provider", j.ProviderID, "err", res.Err)
		}
		return
	}
	e.writeEnvelope(ctx, j.PropertyKey, j.ProviderID, env.Query, res)
}

// applyRecipe computes the extrapolation for the category and merges it into
// the batch under the recipe id. Pure arithmetic over already-joined data,
// so it runs after the barrier.
func (e *Engine) applyRecipe(cfg *extrapolate.Config, batch *fanout.Batch, pctx property.Context) {
	var out any
	switch cfg.Type {
	case extrapolate.InvestmentAnalysis:
		out = extrapolate.Investment(extrapolate.InvestmentFromMerged(batch.Merged, pctx.ListPrice))
	case extrapolate.OverpricedCheck:
		out = extrapolate.OverpricedFromMerged(batch.Merged, pctx.ListPrice)
	case extrapolate.TrueMonthlyCost:
		out = extrapolate.MonthlyCost(extrapolate.MonthlyCostFromMerged(batch.Merged, pctx.ListPrice))
	case extrapolate.RedFlagScan:
		out = extrapolate.RedFlags(extrapolate.RedFlagsFromMerged(batch.Merged))
	default:
		return
	}
	m, err := structToMap(out)
	if err != nil {
		if e.Log != nil {
			e.Log.Warnw("recipe encode failed", "recipe", cfg.Type, "err", err)
		}
		return
	}
	batch.Merged[cfg.Type] = m
	batch.Provenance = append(batch.Provenance, cfg.Type)
	batch.Results[cfg.Type] = providers.HandlerResult{Success: true, Data: m, Source: batch.Source}
}

// structToMap round-trips through JSON so the formatter sees the same
// loosely typed shape providers produce.
func structToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
