package db

import (
	"context"
	"database/sql"

	"github.com/DachengChen/progression/config"
	"github.com/pkg/errors"
	sf "github.com/snowflakedb/gosnowflake"
)

// Snowflake answers turns through Snowflake Cortex, authenticated with
// a key pair (JWT).
type Snowflake struct {
	db        *sql.DB
	account   string
	warehouse string
}

var _ Warehouse = (*Snowflake)(nil)

// OpenSnowflake validates the credentials, decodes the private key and
// verifies the connection with a ping.
func OpenSnowflake(ctx context.Context, creds config.Snowflake) (*Snowflake, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	key, err := config.ParsePrivateKey(creds.PrivateKey, creds.PrivateKeyPassphrase)
	if err != nil {
		return nil, errors.Wrap(err, "snowflake private key")
	}

	cfg := sf.Config{
		Account:       creds.Account,
		User:          creds.User,
		Role:          creds.Role,
		Warehouse:     creds.Warehouse,
		Database:      creds.Database,
		Schema:        creds.Schema,
		Authenticator: sf.AuthTypeJwt,
		PrivateKey:    key,
		Application:   "progression",
	}
	pool := sql.OpenDB(sf.NewConnector(sf.SnowflakeDriver{}, cfg))

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "snowflake ping")
	}
	return &Snowflake{db: pool, account: creds.Account, warehouse: creds.Warehouse}, nil
}

func (s *Snowflake) Name() string {
	return "Snowflake (" + s.account + "/" + s.warehouse + ")"
}

func (s *Snowflake) QueryAnswer(ctx context.Context, query string, args ...any) (string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", errors.Wrap(err, "snowflake query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", errors.Wrap(err, "snowflake columns")
	}
	return singleAnswer(rows, cols)
}

func (s *Snowflake) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
