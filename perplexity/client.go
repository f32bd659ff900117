// Package perplexity is the AI text-completion backend client: a thin chat
// completions wrapper with web-search answering, vision messages and a
// data-driven retry-with-alternate-prompt policy.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.perplexity.ai/chat/completions"
	defaultModel   = "sonar-pro"
)

// ErrUnusable marks a response that came back empty or as a refusal after
// every retry variant was exhausted.
var ErrUnusable = errors.New("unusable completion")

type Client struct {
	http    *retryablehttp.Client
	apiKey  string
	model   string
	baseURL string
	limiter *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }
func WithModel(m string) Option   { return func(c *Client) { c.model = m } }

func NewClient(apiKey string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = 60 * time.Second
	rc.Logger = nil

	c := &Client{
		http:    rc,
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		// the backend meters aggressively; keep a small steady budget
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends one chat turn. An empty systemPrompt omits the system
// message entirely.
func (c *Client) Complete(ctx context.Context, query, systemPrompt string) (Completion, error) {
	var msgs []chatMessage
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: query})
	return c.send(ctx, msgs)
}

// AnalyzeImages asks the backend to describe the supplied photo URLs in
// light of prompt. Used by the vision handler for street/listing imagery.
func (c *Client) AnalyzeImages(ctx context.Context, prompt string, urls []string) (Completion, error) {
	if len(urls) == 0 {
		return Completion{}, errors.New("no image urls")
	}
	parts := []contentPart{{Type: "text", Text: prompt}}
	for _, u := range urls {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: u}})
	}
	msgs := []chatMessage{{Role: "user", Content: parts}}
	return c.send(ctx, msgs)
}

func (c *Client) send(ctx context.Context, msgs []chatMessage) (Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Completion{}, err
	}
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs})
	if err != nil {
		return Completion{}, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Completion{}, err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Completion{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var e map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return Completion{}, fmt.Errorf("ai backend error %d: %v", resp.StatusCode, e)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Completion{}, err
	}
	if out.Error != nil {
		return Completion{}, fmt.Errorf("ai backend: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return Completion{}, errors.New("ai backend: no choices")
	}
	return Completion{Content: out.Choices[0].Message.Content, Citations: out.Citations}, nil
}

// RetryPolicy is the alternate-prompt retry configuration, passed as data.
// Attempt 0 uses the caller's prompt; attempt n>0 uses PromptVariants[n-1]
// when present.
type RetryPolicy struct {
	MaxAttempts    int
	Backoff        time.Duration
	PromptVariants []string
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     500 * time.Millisecond,
		PromptVariants: []string{
			"Answer factually and concisely, citing sources where possible.",
			"Provide your best factual summary even if information is limited. Do not refuse.",
		},
	}
}

// CompleteWithPolicy retries with alternate system prompts while the
// response looks unusable (empty or a refusal phrase). The last response is
// returned with ErrUnusable when every attempt fails the check.
func (c *Client) CompleteWithPolicy(ctx context.Context, query, systemPrompt string, p RetryPolicy) (Completion, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	var last Completion
	var lastErr error
	prompt := systemPrompt
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			if attempt-1 < len(p.PromptVariants) {
				prompt = p.PromptVariants[attempt-1]
			}
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(p.Backoff):
			}
		}
		last, lastErr = c.Complete(ctx, query, prompt)
		if lastErr != nil {
			continue
		}
		if !LooksUnusable(last.Content) {
			return last, nil
		}
	}
	if lastErr != nil {
		return last, lastErr
	}
	return last, ErrUnusable
}

var refusalPhrases = []string{
	"i cannot",
	"i can't",
	"i'm unable",
	"i am unable",
	"as an ai",
	"i don't have access",
}

// LooksUnusable reports whether a completion is empty or reads as a refusal.
func LooksUnusable(content string) bool {
	s := strings.ToLower(strings.TrimSpace(content))
	if s == "" {
		return true
	}
	for _, p := range refusalPhrases {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
