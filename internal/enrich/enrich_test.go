package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/ask-api/internal/fanout"
	"github.com/yourorg/ask-api/perplexity"
	"github.com/yourorg/ask-api/providers"
)

type stubBackend struct {
	content string
	err     error
	queries []string
}

func (s *stubBackend) CompleteWithPolicy(ctx context.Context, query, systemPrompt string, p perplexity.RetryPolicy) (perplexity.Completion, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return perplexity.Completion{}, s.err
	}
	return perplexity.Completion{Content: s.content}, nil
}

func mockBatch(failures int, source string) fanout.Batch {
	return fanout.Batch{
		Merged:     map[string]any{"attom_avm": map[string]any{"value": 500000.0}},
		Provenance: []string{"attom_avm"},
		Source:     source,
		Failures:   failures,
	}
}

func TestConfidencePolicy(t *testing.T) {
	tests := []struct {
		name  string
		batch fanout.Batch
		want  string
	}{
		{"live no failures", mockBatch(0, providers.SourceLive), "high"},
		{"all mock no failures", mockBatch(0, providers.SourceMock), "medium"},
		{"live with failure", mockBatch(1, providers.SourceLive), "low"},
		{"mock with failure", mockBatch(2, providers.SourceMock), "low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Validate(context.Background(), nil, "q", tt.batch)
			assert.Equal(t, tt.want, out.Confidence)
		})
	}
}

func TestValidateNilBackend(t *testing.T) {
	batch := mockBatch(0, providers.SourceMock)
	out := Validate(context.Background(), nil, "q", batch)
	assert.Equal(t, batch.Merged, out.EnrichedData)
	assert.Equal(t, batch.Provenance, out.Sources)
	assert.Empty(t, out.Corrections)
}

func TestValidateEmptyBatchSkipsBackend(t *testing.T) {
	ai := &stubBackend{content: `{"consistent": true}`}
	out := Validate(context.Background(), ai, "q", fanout.Batch{})
	assert.Empty(t, ai.queries)
	assert.Empty(t, out.EnrichedData)
}

func TestValidateParsesCorrections(t *testing.T) {
	ai := &stubBackend{content: "Here is the result:\n```json\n" +
		`{"consistent": false, "corrections": [{"field": "attom_avm.value", "original": 500000, "corrected": 520000, "reason": "stale assessment"}], "filled": {}}` +
		"\n```"}
	out := Validate(context.Background(), ai, "Is this worth it?", mockBatch(0, providers.SourceLive))

	require.Len(t, out.Corrections, 1)
	assert.Equal(t, "attom_avm.value", out.Corrections[0].Field)
	assert.Equal(t, "stale assessment", out.Corrections[0].Reason)
	// no filled fields, so data and sources pass through untouched
	assert.NotContains(t, out.EnrichedData, "enrichment")
	assert.Equal(t, []string{"attom_avm"}, out.Sources)
}

func TestValidateFilledFields(t *testing.T) {
	ai := &stubBackend{content: `{"consistent": true, "corrections": [], "filled": {"year_built": 1987}}`}
	batch := mockBatch(0, providers.SourceMock)
	out := Validate(context.Background(), ai, "q", batch)

	require.Contains(t, out.EnrichedData, "enrichment")
	filled, ok := out.EnrichedData["enrichment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1987), filled["year_built"])
	assert.Equal(t, []string{"attom_avm", "enrichment"}, out.Sources)

	// the original batch map is not mutated
	assert.NotContains(t, batch.Merged, "enrichment")
}

func TestValidateMalformedReplyHeuristic(t *testing.T) {
	ai := &stubBackend{content: "The data looks inconsistent to me but I cannot say more."}
	out := Validate(context.Background(), ai, "q", mockBatch(0, providers.SourceMock))
	require.Len(t, out.Corrections, 1)
	assert.Equal(t, "unknown", out.Corrections[0].Field)
}

func TestValidateMalformedReplyNoSignal(t *testing.T) {
	ai := &stubBackend{content: "I could not process the request."}
	out := Validate(context.Background(), ai, "q", mockBatch(0, providers.SourceMock))
	assert.Empty(t, out.Corrections)
}

func TestValidateBackendError(t *testing.T) {
	ai := &stubBackend{err: errors.New("rate limited")}
	batch := mockBatch(0, providers.SourceLive)
	out := Validate(context.Background(), ai, "q", batch)
	assert.Equal(t, batch.Merged, out.EnrichedData)
	assert.Equal(t, "high", out.Confidence)
}

func TestParseReplyPlainJSON(t *testing.T) {
	r, ok := parseReply(`{"consistent": true, "filled": {"a": 1}}`)
	require.True(t, ok)
	assert.True(t, r.Consistent)
	assert.Equal(t, float64(1), r.Filled["a"])
}
