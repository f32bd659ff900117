package refresh

import (
	"context"
	"sync"
	"time"
)

// Job asks for one provider's cached payload to be re-fetched for one
// property. Stale cache hits enqueue these fire-and-forget.
type Job struct {
	PropertyKey string
	ProviderID  string
}

func (j Job) key() string { return j.PropertyKey + "|" + j.ProviderID }

type Refresher struct {
	ch    chan Job
	inFly sync.Map // job key -> struct{}
	Do    func(ctx context.Context, j Job)
}

func New(capacity int, workerCount int, do func(ctx context.Context, j Job)) *Refresher {
	if capacity <= 0 {
		capacity = 256
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	r := &Refresher{ch: make(chan Job, capacity), Do: do}
	for i := 0; i < workerCount; i++ {
		go r.worker()
	}
	return r
}

func (r *Refresher) Enqueue(j Job) {
	if _, exists := r.inFly.LoadOrStore(j.key(), struct{}{}); exists {
		return
	}
	select {
	case r.ch <- j:
	default:
		// drop if saturated
		r.inFly.Delete(j.key())
	}
}

func (r *Refresher) worker() {
	for j := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		func() {
			defer func() {
				r.inFly.Delete(j.key())
				cancel()
			}()
			if r.Do != nil {
				r.Do(ctx, j)
			}
		}()
	}
}
