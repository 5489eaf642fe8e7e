package ai

import (
	"context"
	"fmt"

	"github.com/DachengChen/progression/config"
	"github.com/DachengChen/progression/db"
)

// NewProvider creates the provider for cfg.Backend. For warehouse
// backends it opens the connection; the returned close function releases
// it and is never nil. Any error here is a startup failure.
func NewProvider(ctx context.Context, cfg config.Config, secrets *config.Secrets) (Provider, func(), error) {
	noop := func() {}
	if cfg.Backend == config.BackendPlaceholder {
		return NewPlaceholder(), noop, nil
	}

	dialect, err := DialectFor(cfg.Backend)
	if err != nil {
		return nil, noop, err
	}
	tmpl, err := NewTemplater(dialect, cfg.Models)
	if err != nil {
		return nil, noop, fmt.Errorf("query template: %w", err)
	}

	wh, err := db.Open(ctx, cfg.Backend, secrets)
	if err != nil {
		return nil, noop, fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	return NewCortex(wh, tmpl), wh.Close, nil
}
