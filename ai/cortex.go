package ai

import (
	"context"

	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/db"
)

// Cortex answers a turn with one templated query against the warehouse.
type Cortex struct {
	wh   db.Warehouse
	tmpl *Templater
}

var _ Provider = (*Cortex)(nil)

// NewCortex pairs a warehouse handle with the templater for its dialect.
func NewCortex(wh db.Warehouse, tmpl *Templater) *Cortex {
	return &Cortex{wh: wh, tmpl: tmpl}
}

func (c *Cortex) Name() string {
	return c.wh.Name() + " · " + c.tmpl.Models().Completion
}

func (c *Cortex) Answer(ctx context.Context, question string, history []chat.Turn) (string, error) {
	q := c.tmpl.Build(question, history)
	LogQueryRequest(c.Name(), q)

	answer, err := c.wh.QueryAnswer(ctx, q.SQL, q.Args...)
	LogQueryResponse(answer, err)
	return answer, err
}
