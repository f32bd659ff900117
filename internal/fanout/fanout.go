// Package fanout runs a batch of handler invocations concurrently and joins
// on all of them. No single failure aborts the batch; a panicking or erroring
// handler degrades to a failed HandlerResult.
package fanout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/ask-api/providers"
)

// Invocation is one unit of work: a direct provider call, an extrapolation
// recipe, an AI query or a vision request. The executor only sees the
// uniform shape.
type Invocation struct {
	ID      string
	Timeout time.Duration
	Run     func(ctx context.Context) providers.HandlerResult
}

// Batch is the joined outcome of one fan-out.
type Batch struct {
	Results map[string]providers.HandlerResult
	// Merged maps handler id -> payload for every successful handler.
	// Handlers own disjoint keys, so the merge is commutative.
	Merged map[string]any
	// Provenance lists the handler ids that contributed to Merged, sorted.
	Provenance []string
	// Source is "live" if at least one successful handler used live data.
	Source   string
	Failures int
}

const defaultTimeout = 30 * time.Second

// Execute runs every invocation concurrently and waits for all of them.
func Execute(ctx context.Context, invs []Invocation) Batch {
	results := make([]providers.HandlerResult, len(invs))

	g, gctx := errgroup.WithContext(ctx)
	for i, inv := range invs {
		i, inv := i, inv
		g.Go(func() error {
			to := inv.Timeout
			if to <= 0 {
				to = defaultTimeout
			}
			cctx, cancel := context.WithTimeout(gctx, to)
			defer cancel()
			results[i] = runSafe(cctx, inv)
			return nil
		})
	}
	_ = g.Wait() // handlers never return errors; the group is a join barrier

	batch := Batch{
		Results: make(map[string]providers.HandlerResult, len(invs)),
		Merged:  make(map[string]any, len(invs)),
		Source:  providers.SourceMock,
	}
	for i, inv := range invs {
		res := results[i]
		batch.Results[inv.ID] = res
		if !res.Success {
			batch.Failures++
			continue
		}
		if res.Data != nil {
			batch.Merged[inv.ID] = res.Data
			batch.Provenance = append(batch.Provenance, inv.ID)
		}
		if res.Source == providers.SourceLive {
			batch.Source = providers.SourceLive
		}
	}
	sort.Strings(batch.Provenance)
	return batch
}

func runSafe(ctx context.Context, inv Invocation) (res providers.HandlerResult) {
	defer func() {
		if r := recover(); r != nil {
			res = providers.HandlerResult{
				Success: false,
				Source:  providers.SourceMock,
				Err:     fmt.Sprintf("handler %s panicked: %v", inv.ID, r),
			}
		}
	}()
	if inv.Run == nil {
		return providers.HandlerResult{Success: false, Source: providers.SourceMock, Err: "nil handler"}
	}
	res = inv.Run(ctx)
	if !res.Success && res.Err == "" && ctx.Err() != nil {
		res.Err = ctx.Err().Error()
	}
	return res
}
