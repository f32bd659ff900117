package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context, q Query) (map[string]any, error)

func (f fetcherFunc) Fetch(ctx context.Context, q Query) (map[string]any, error) { return f(ctx, q) }

func TestTableConsistency(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Table {
		assert.False(t, seen[d.ID], "duplicate descriptor %s", d.ID)
		seen[d.ID] = true
		assert.Positive(t, d.Timeout, "%s has no timeout", d.ID)
		assert.NotEmpty(t, d.Keywords, "%s has no keywords", d.ID)

		_, ok := MockPayload(d.ID)
		assert.True(t, ok, "%s has no mock fixture", d.ID)
	}
}

func TestMockPayloadCopies(t *testing.T) {
	a, ok := MockPayload(FemaFlood)
	require.True(t, ok)
	a["zone"] = "AE"
	b, _ := MockPayload(FemaFlood)
	assert.Equal(t, "X", b["zone"])
}

func TestMockPayloadCopiesNestedValues(t *testing.T) {
	a, ok := MockPayload(Schools)
	require.True(t, ok)
	a["schools"].([]map[string]any)[0]["name"] = "mutated"

	b, _ := MockPayload(Schools)
	assert.Equal(t, "Jefferson Elementary", b["schools"].([]map[string]any)[0]["name"])

	c, ok := MockPayload(TransitCommute)
	require.True(t, ok)
	c["routes"].([]string)[0] = "mutated"

	d, _ := MockPayload(TransitCommute)
	assert.Equal(t, "BART Red Line", d["routes"].([]string)[0])
}

func TestRegistryMockFallback(t *testing.T) {
	r := NewRegistry(Availability{}, nil)
	res := r.Fetch(context.Background(), CrimeGrade, Query{})
	assert.True(t, res.Success)
	assert.Equal(t, SourceMock, res.Source)
	assert.Equal(t, "B", res.Data["overall_grade"])
}

func TestRegistryLivePreferred(t *testing.T) {
	r := NewRegistry(Availability{FredMortgage: true}, map[string]Fetcher{
		FredMortgage: fetcherFunc(func(ctx context.Context, q Query) (map[string]any, error) {
			return map[string]any{"rate_30yr": 6.12}, nil
		}),
	})
	res := r.Fetch(context.Background(), FredMortgage, Query{})
	assert.True(t, res.Success)
	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, 6.12, res.Data["rate_30yr"])
}

func TestRegistryLiveFailureDegradesToMock(t *testing.T) {
	r := NewRegistry(Availability{FredMortgage: true}, map[string]Fetcher{
		FredMortgage: fetcherFunc(func(ctx context.Context, q Query) (map[string]any, error) {
			return nil, errors.New("upstream 502")
		}),
	})
	res := r.Fetch(context.Background(), FredMortgage, Query{})
	assert.True(t, res.Success)
	assert.Equal(t, SourceMock, res.Source)
	assert.Equal(t, "upstream 502", res.Err)
	assert.Equal(t, 6.62, res.Data["rate_30yr"])
}

func TestRegistryLiveNotAvailable(t *testing.T) {
	// a wired client without the availability flag stays dark
	called := false
	r := NewRegistry(Availability{}, map[string]Fetcher{
		FredMortgage: fetcherFunc(func(ctx context.Context, q Query) (map[string]any, error) {
			called = true
			return map[string]any{}, nil
		}),
	})
	res := r.Fetch(context.Background(), FredMortgage, Query{})
	assert.False(t, called)
	assert.Equal(t, SourceMock, res.Source)
	assert.True(t, res.Success)
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry(Availability{}, nil)
	res := r.Fetch(context.Background(), "nope", Query{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "unknown provider")
}

func TestFailed(t *testing.T) {
	res := Failed(errors.New("boom"))
	assert.False(t, res.Success)
	assert.Equal(t, "boom", res.Err)
}
