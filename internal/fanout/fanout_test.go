package fanout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/ask-api/providers"
)

func okInvocation(id, source string) Invocation {
	return Invocation{
		ID: id,
		Run: func(ctx context.Context) providers.HandlerResult {
			return providers.HandlerResult{
				Success: true,
				Source:  source,
				Data:    map[string]any{"id": id},
			}
		},
	}
}

func TestExecuteJoinsAllAndTolerateFailures(t *testing.T) {
	invs := []Invocation{
		okInvocation("a", providers.SourceMock),
		okInvocation("b", providers.SourceLive),
		okInvocation("c", providers.SourceMock),
		{ID: "d", Run: func(ctx context.Context) providers.HandlerResult {
			return providers.Failed(errors.New("upstream 503"))
		}},
		{ID: "e", Run: func(ctx context.Context) providers.HandlerResult {
			panic("boom")
		}},
	}

	batch := Execute(context.Background(), invs)

	assert.Len(t, batch.Results, 5)
	assert.Equal(t, 2, batch.Failures)
	assert.Equal(t, []string{"a", "b", "c"}, batch.Provenance)
	assert.Len(t, batch.Merged, 3)
	assert.Equal(t, providers.SourceLive, batch.Source)

	require.Contains(t, batch.Results, "e")
	assert.False(t, batch.Results["e"].Success)
	assert.Contains(t, batch.Results["e"].Err, "panicked")
	assert.Contains(t, batch.Results["d"].Err, "upstream 503")
}

func TestExecuteAllMockSource(t *testing.T) {
	batch := Execute(context.Background(), []Invocation{
		okInvocation("a", providers.SourceMock),
		okInvocation("b", providers.SourceMock),
	})
	assert.Equal(t, providers.SourceMock, batch.Source)
	assert.Zero(t, batch.Failures)
}

func TestExecuteFailedLiveDoesNotMarkBatchLive(t *testing.T) {
	batch := Execute(context.Background(), []Invocation{
		okInvocation("a", providers.SourceMock),
		{ID: "b", Run: func(ctx context.Context) providers.HandlerResult {
			return providers.HandlerResult{Success: false, Source: providers.SourceLive, Err: "timeout"}
		}},
	})
	assert.Equal(t, providers.SourceMock, batch.Source)
	assert.Equal(t, 1, batch.Failures)
}

func TestExecutePerInvocationTimeout(t *testing.T) {
	start := time.Now()
	batch := Execute(context.Background(), []Invocation{
		{ID: "slow", Timeout: 50 * time.Millisecond, Run: func(ctx context.Context) providers.HandlerResult {
			select {
			case <-ctx.Done():
				return providers.HandlerResult{Success: false, Source: providers.SourceMock}
			case <-time.After(5 * time.Second):
				return providers.HandlerResult{Success: true, Source: providers.SourceMock}
			}
		}},
		okInvocation("fast", providers.SourceMock),
	})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, batch.Results["slow"].Success)
	assert.Contains(t, batch.Results["slow"].Err, "deadline")
	assert.True(t, batch.Results["fast"].Success)
}

func TestExecuteNilHandler(t *testing.T) {
	batch := Execute(context.Background(), []Invocation{{ID: "nope"}})
	assert.Equal(t, 1, batch.Failures)
	assert.Equal(t, "nil handler", batch.Results["nope"].Err)
}

func TestExecuteEmpty(t *testing.T) {
	batch := Execute(context.Background(), nil)
	assert.Empty(t, batch.Results)
	assert.Empty(t, batch.Merged)
	assert.Equal(t, providers.SourceMock, batch.Source)
}
