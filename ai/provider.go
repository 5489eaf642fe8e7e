// Package ai turns a chat turn into a warehouse request: it templates the
// retrieval + completion query, submits it and logs the exchange.
//
// Embedding, similarity search and generation all run inside the
// warehouse; nothing here computes vectors or calls a model directly.
package ai

import (
	"github.com/DachengChen/progression/chat"
)

// Provider answers chat turns and names itself for the UI header.
type Provider interface {
	chat.Answerer

	// Name returns the provider name for display.
	Name() string
}
