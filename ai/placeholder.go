package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/DachengChen/progression/chat"
)

// Placeholder is an offline provider for working on the UI without a
// warehouse. It echoes the question and history it would have sent.
type Placeholder struct {
	delay time.Duration
}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{delay: 500 * time.Millisecond}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Answer(ctx context.Context, question string, history []chat.Turn) (string, error) {
	// Simulate network latency
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	hist := RenderHistory(history)
	if hist == "" {
		hist = "(none)"
	}
	return fmt.Sprintf("**[Placeholder]** You asked: %q\n\n"+
		"Conversation history sent with this question:\n\n```\n%s\n```\n\n"+
		"Configure the `snowflake` or `postgres` backend to get answers grounded in patient records.",
		question, hist), nil
}
