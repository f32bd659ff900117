package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/yourorg/ask-api/http"
	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/internal/env"
	"github.com/yourorg/ask-api/internal/events"
	"github.com/yourorg/ask-api/internal/redisx"
	"github.com/yourorg/ask-api/internal/refresh"
	"github.com/yourorg/ask-api/internal/store"
	"github.com/yourorg/ask-api/perplexity"
	"github.com/yourorg/ask-api/providers"
)

func main() {
	port := env.GetInt("PORT", 4010)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	avail, live := buildProviders()
	registry := providers.NewRegistry(avail, live)

	eng := &engine.Engine{
		Providers:  registry,
		Events:     events.NewInMemory(256),
		Log:        sugar,
		CacheTTL:   env.GetDur("CACHE_TTL", time.Hour),
		StaleAfter: env.GetDur("CACHE_STALE_AFTER", 10*time.Minute),
	}

	if key := env.Get("PERPLEXITY_API_KEY", ""); key != "" {
		eng.AI = perplexity.NewClient(key, perplexity.WithModel(env.Get("PERPLEXITY_MODEL", "sonar-pro")))
	} else {
		sugar.Warn("PERPLEXITY_API_KEY not set; AI validation and web-search answering disabled")
	}

	if addr := env.Get("REDIS_ADDR", ""); addr != "" {
		cache := redisx.New(addr, env.Get("REDIS_PASSWORD", ""), env.GetInt("REDIS_DB", 0))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(ctx); err != nil {
			sugar.Warnw("redis unavailable; provider cache disabled", "err", err)
		} else {
			eng.Cache = cache
			eng.Refresher = refresh.New(256, 2, eng.RefreshProvider)
		}
		cancel()
	}

	var st *store.Store
	if dsn := env.Get("PG_DSN", ""); dsn != "" {
		st, err = store.Open(dsn)
		if err != nil {
			sugar.Fatalw("store open", "err", err)
		}
		defer st.DB.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.Ping(ctx); err != nil {
			sugar.Fatalw("postgres ping", "err", err)
		}
		if err := st.Migrate(ctx); err != nil {
			sugar.Fatalw("postgres migrate", "err", err)
		}
		cancel()
		go consumeMetrics(eng.Events, st, sugar)
	}

	router := BuildRouter(httpapi.AskDeps{Engine: eng, Store: st, Log: sugar})

	sugar.Infow("ask-api listening", "port", port, "live_providers", liveList(avail))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		sugar.Fatalw("server", "err", err)
	}
}

// buildProviders wires the live clients that have credentials (or need
// none) and marks them available. Everything else serves mock fixtures.
func buildProviders() (providers.Availability, map[string]providers.Fetcher) {
	avail := providers.Availability{}
	live := map[string]providers.Fetcher{}

	enabled := map[string]bool{}
	for _, id := range strings.Split(env.Get("LIVE_PROVIDERS", ""), ",") {
		if id = strings.TrimSpace(id); id != "" {
			enabled[id] = true
		}
	}

	if enabled[providers.FemaFlood] {
		live[providers.FemaFlood] = providers.NewFEMAFlood()
		avail[providers.FemaFlood] = true
	}
	if enabled[providers.USGSQuakes] {
		live[providers.USGSQuakes] = providers.NewUSGSQuakes()
		avail[providers.USGSQuakes] = true
	}
	if enabled[providers.CensusACS] {
		live[providers.CensusACS] = providers.NewCensusACS()
		avail[providers.CensusACS] = true
	}
	if key := env.Get("FRED_API_KEY", ""); key != "" && enabled[providers.FredMortgage] {
		live[providers.FredMortgage] = providers.NewFREDMortgage(key)
		avail[providers.FredMortgage] = true
	}
	if key := env.Get("AIRNOW_API_KEY", ""); key != "" && enabled[providers.AirQuality] {
		live[providers.AirQuality] = providers.NewAirNow(key)
		avail[providers.AirQuality] = true
	}
	return avail, live
}

// consumeMetrics drains answer events into the metrics table, off the
// request path.
func consumeMetrics(pub events.Publisher, st *store.Store, sugar *zap.SugaredLogger) {
	for evt := range pub.SubscribeQuestionAnswered() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := st.WriteQuestionMetric(ctx, store.MetricInput{
			RequestID:   evt.RequestID,
			PropertyKey: evt.PropertyKey,
			Category:    evt.Category,
			Confidence:  evt.Confidence,
			Source:      evt.Source,
			LiveCount:   evt.LiveCount,
			LatencyMS:   int(evt.Latency.Milliseconds()),
		})
		cancel()
		if err != nil {
			sugar.Warnw("metric write failed", "request_id", evt.RequestID, "err", err)
		}
	}
}

func liveList(avail providers.Availability) []string {
	var out []string
	for id, ok := range avail {
		if ok {
			out = append(out, id)
		}
	}
	return out
}
