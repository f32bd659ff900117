package events

import (
	"context"
	"time"
)

// QuestionAnswered is emitted once per completed question. Consumed by the
// metrics write-behind in main; the request path never blocks on it.
type QuestionAnswered struct {
	RequestID   string
	PropertyKey string
	Category    string
	Confidence  string
	Source      string
	LiveCount   int
	Latency     time.Duration
}

type Publisher interface {
	PublishQuestionAnswered(ctx context.Context, evt QuestionAnswered)
	SubscribeQuestionAnswered() <-chan QuestionAnswered
}

type inMemory struct {
	ch chan QuestionAnswered
}

func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan QuestionAnswered, buffer)}
}

// PublishQuestionAnswered drops the event when the buffer is full rather than
// blocking the answer path.
func (m *inMemory) PublishQuestionAnswered(_ context.Context, evt QuestionAnswered) {
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) SubscribeQuestionAnswered() <-chan QuestionAnswered { return m.ch }
