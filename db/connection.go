// Package db owns the warehouse connection that every chat turn is
// answered through.
//
// The handle is opened once at startup by the command, shared by all
// sessions and closed on exit. Both implementations sit on connection
// pools that are safe for concurrent use. Errors are returned, never
// logged or printed here.
package db

import (
	"context"

	"github.com/DachengChen/progression/config"
	"github.com/pkg/errors"
)

// Warehouse runs one templated query and returns its single answer.
type Warehouse interface {
	// QueryAnswer executes query with bind args and returns the text of
	// the one "answer" column of the first row.
	QueryAnswer(ctx context.Context, query string, args ...any) (string, error)

	// Name describes the connection for the UI header and logs.
	Name() string

	Close()
}

// Open connects to the warehouse selected by backend. Missing secrets,
// an unusable key or a failed ping are returned as errors; callers treat
// them as fatal.
func Open(ctx context.Context, backend string, secrets *config.Secrets) (Warehouse, error) {
	if secrets == nil {
		return nil, errors.Wrap(config.ErrMissingSecret, "no secret bundle loaded")
	}
	switch backend {
	case config.BackendSnowflake:
		return OpenSnowflake(ctx, secrets.Snowflake)
	case config.BackendPostgres:
		return OpenPostgres(ctx, secrets.Postgres)
	default:
		return nil, errors.Errorf("backend %q has no warehouse", backend)
	}
}
