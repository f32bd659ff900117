// Package enrich runs the post-fan-out validation pass: the aggregated
// structured data plus the question go back to the AI backend, which flags
// factual inconsistencies and fills remaining gaps. Corrections are advisory
// only; nothing is overwritten silently.
package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yourorg/ask-api/internal/fanout"
	"github.com/yourorg/ask-api/perplexity"
	"github.com/yourorg/ask-api/providers"
)

// Backend is the slice of the AI client the validator needs.
type Backend interface {
	CompleteWithPolicy(ctx context.Context, query, systemPrompt string, p perplexity.RetryPolicy) (perplexity.Completion, error)
}

type Correction struct {
	Field     string `json:"field"`
	Original  any    `json:"original"`
	Corrected any    `json:"corrected"`
	Reason    string `json:"reason"`
}

type Outcome struct {
	EnrichedData map[string]any
	Corrections  []Correction
	Sources      []string
	Confidence   string // high, medium, low
}

const systemPrompt = `You are a real-estate data validator. You are given a buyer's question and structured data fetched from property data providers. Cross-check the values for factual inconsistencies and fill fields that are null or missing if you are confident of the real value. Respond with strict JSON only, no prose, in this shape:
{"consistent": true, "corrections": [{"field": "", "original": null, "corrected": null, "reason": ""}], "filled": {}}`

// aiReply is the strict-JSON contract we ask the backend to follow.
type aiReply struct {
	Consistent  bool           `json:"consistent"`
	Corrections []Correction   `json:"corrections"`
	Filled      map[string]any `json:"filled"`
}

// Validate always runs, even when every provider succeeded. The confidence
// policy is computed locally from the batch, never trusted from the AI.
func Validate(ctx context.Context, ai Backend, question string, batch fanout.Batch) Outcome {
	out := Outcome{
		EnrichedData: batch.Merged,
		Sources:      batch.Provenance,
		Confidence:   confidence(batch),
	}
	if ai == nil || len(batch.Merged) == 0 {
		return out
	}

	payload, err := json.Marshal(batch.Merged)
	if err != nil {
		return out
	}
	query := "Question: " + question + "\n\nProvider data:\n" + string(payload)
	comp, err := ai.CompleteWithPolicy(ctx, query, systemPrompt, perplexity.DefaultRetryPolicy())
	if err != nil {
		// validation is best-effort; the structured data stands on its own
		return out
	}

	reply, ok := parseReply(comp.Content)
	if !ok {
		// literal-extraction heuristic before giving up on the pass
		if strings.Contains(strings.ToLower(comp.Content), "inconsisten") {
			out.Corrections = append(out.Corrections, Correction{
				Field:  "unknown",
				Reason: "validator reported an inconsistency but returned malformed output",
			})
		}
		return out
	}

	out.Corrections = reply.Corrections
	if len(reply.Filled) > 0 {
		enriched := make(map[string]any, len(batch.Merged)+1)
		for k, v := range batch.Merged {
			enriched[k] = v
		}
		enriched["enrichment"] = reply.Filled
		out.EnrichedData = enriched
		out.Sources = append(append([]string(nil), batch.Provenance...), "enrichment")
	}
	return out
}

// parseReply tolerates code fences and leading prose around the JSON object.
func parseReply(content string) (aiReply, bool) {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndex(s, "}"); j >= 0 {
		s = s[:j+1]
	}
	var r aiReply
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return aiReply{}, false
	}
	return r, true
}

// confidence implements the response-level policy: high when live data
// contributed and nothing failed, medium when all-mock and nothing failed,
// low when any handler failed.
func confidence(batch fanout.Batch) string {
	switch {
	case batch.Failures > 0:
		return "low"
	case batch.Source == providers.SourceLive:
		return "high"
	default:
		return "medium"
	}
}
