package db

import (
	"context"
	"fmt"

	"github.com/DachengChen/progression/config"
	"github.com/DachengChen/progression/ssh"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Postgres answers turns through PostgreSQL with the pgvector and pgai
// extensions, optionally through an SSH tunnel.
type Postgres struct {
	Pool   *pgxpool.Pool
	Tunnel *ssh.Tunnel
	label  string
}

var _ Warehouse = (*Postgres)(nil)

// OpenPostgres establishes the pool, setting up the SSH tunnel first
// when it is enabled.
func OpenPostgres(ctx context.Context, cfg config.Postgres) (*Postgres, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Postgres{label: fmt.Sprintf("%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)}

	if cfg.SSH.Enabled {
		tunnel, err := ssh.NewTunnel(cfg.SSH, cfg.Host, cfg.Port)
		if err != nil {
			return nil, errors.Wrap(err, "ssh tunnel")
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "ssh tunnel start")
		}
		p.Tunnel = tunnel
		p.label += " via " + cfg.SSH.Host

		// Override connection target with local tunnel endpoint
		cfg.Host = localAddr.Host
		cfg.Port = localAddr.Port
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		p.Close()
		return nil, errors.Wrap(err, "pgx connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		p.Close()
		return nil, errors.Wrap(err, "pgx ping")
	}

	p.Pool = pool
	return p, nil
}

func (p *Postgres) Name() string {
	return "PostgreSQL (" + p.label + ")"
}

func (p *Postgres) QueryAnswer(ctx context.Context, query string, args ...any) (string, error) {
	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		return "", errors.Wrap(err, "postgres query")
	}
	defer rows.Close()

	var cols []string
	for _, fd := range rows.FieldDescriptions() {
		cols = append(cols, fd.Name)
	}
	return singleAnswer(rows, cols)
}

// Close shuts down the pool and SSH tunnel.
func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if p.Tunnel != nil {
		p.Tunnel.Stop()
	}
}
