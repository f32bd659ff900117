package httpapi

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/internal/store"
)

// persistBatch snapshots every successful provider payload from one answered
// question. Fire-and-forget: storage problems never surface to the caller,
// and one failed write never stops the rest of the batch.
func persistBatch(st *store.Store, log *zap.SugaredLogger, out engine.Outcome) {
	if st == nil || len(out.Batch.Results) == 0 {
		return
	}
	results := out.Batch.Results
	pkey := out.PropertyKey
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for id, res := range results {
			if !res.Success || len(res.Data) == 0 {
				continue
			}
			payload, err := json.Marshal(res.Data)
			if err != nil {
				continue
			}
			if err := st.WriteSnapshot(ctx, store.SnapshotInput{
				Provider:    id,
				PropertyKey: pkey,
				Source:      res.Source,
				PayloadJSON: payload,
			}); err != nil && log != nil {
				log.Warnw("snapshot write failed", "provider", id, "err", err)
			}
		}
	}()
}
