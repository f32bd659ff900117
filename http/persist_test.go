package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/internal/fanout"
	"github.com/yourorg/ask-api/internal/store"
	"github.com/yourorg/ask-api/providers"
)

func TestPersistBatchContinuesPastFailedWrites(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core).Sugar()

	out := engine.Outcome{
		PropertyKey: "k",
		Batch: fanout.Batch{
			Results: map[string]providers.HandlerResult{
				"a": {Success: true, Source: providers.SourceMock, Data: map[string]any{"x": 1}},
				"b": {Success: true, Source: providers.SourceMock, Data: map[string]any{"y": 2}},
				"c": {Success: false},
			},
		},
	}
	// a store with no DB fails every write; both snapshot attempts must
	// still be made, each with its own warning
	persistBatch(&store.Store{}, log, out)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("snapshot write failed").Len() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPersistBatchNilStoreNoop(t *testing.T) {
	persistBatch(nil, nil, engine.Outcome{})
}
