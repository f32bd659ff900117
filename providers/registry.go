package providers

import (
	"context"
	"fmt"
)

// Registry resolves a provider id to a concrete fetch, preferring the live
// client when availability allows and degrading to the mock fixture when the
// live call fails or no live client is wired. Live failure is never a hard
// error upward; it is recorded on the result and the fixture is served.
type Registry struct {
	avail Availability
	live  map[string]Fetcher
}

func NewRegistry(avail Availability, live map[string]Fetcher) *Registry {
	if live == nil {
		live = map[string]Fetcher{}
	}
	return &Registry{avail: avail, live: live}
}

// Register wires a live client for id. Overwrites any previous client.
func (r *Registry) Register(id string, f Fetcher) { r.live[id] = f }

func (r *Registry) Available() Availability { return r.avail }

// Fetch runs one provider and always returns a well-formed HandlerResult.
func (r *Registry) Fetch(ctx context.Context, id string, q Query) HandlerResult {
	if _, ok := Lookup(id); !ok {
		return HandlerResult{Success: false, Source: SourceMock, Err: fmt.Sprintf("unknown provider %q", id)}
	}
	if f, ok := r.live[id]; ok && r.avail.Live(id) {
		data, err := f.Fetch(ctx, q)
		if err == nil {
			return HandlerResult{Success: true, Data: data, Source: SourceLive}
		}
		// fall through to mock with the live error noted
		if mock, ok := MockPayload(id); ok {
			return HandlerResult{Success: true, Data: mock, Source: SourceMock, Err: err.Error()}
		}
		return HandlerResult{Success: false, Source: SourceMock, Err: err.Error()}
	}
	if mock, ok := MockPayload(id); ok {
		return HandlerResult{Success: true, Data: mock, Source: SourceMock}
	}
	return HandlerResult{Success: false, Source: SourceMock, Err: fmt.Sprintf("no fixture for provider %q", id)}
}
