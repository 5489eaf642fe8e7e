package ai

import (
	"fmt"
	"strings"

	"github.com/DachengChen/progression/config"
)

// Dialect selects the SQL flavor and server-side AI functions.
type Dialect int

const (
	// DialectSnowflake uses Snowflake Cortex with positional ? binds.
	DialectSnowflake Dialect = iota
	// DialectPostgres uses pgvector + pgai with numbered $n binds.
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectSnowflake:
		return "snowflake"
	case DialectPostgres:
		return "postgres"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// DialectFor maps a backend name to its dialect.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case config.BackendSnowflake:
		return DialectSnowflake, nil
	case config.BackendPostgres:
		return DialectPostgres, nil
	default:
		return 0, fmt.Errorf("backend %q has no query dialect", backend)
	}
}

// QuoteLiteral renders s as a string literal that cannot terminate
// early. Quotes and backslashes are escaped, newlines, carriage returns
// and tabs become escape sequences, and every other control character
// is dropped.
func (d Dialect) QuoteLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 3)
	if d == DialectPostgres {
		b.WriteByte('E')
	}
	b.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\'':
			b.WriteString("''")
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// newline is the dialect's literal for a line break, used by the
// fixed separators.
func (d Dialect) newline() string {
	if d == DialectPostgres {
		return `E'\n'`
	}
	return `'\n'`
}
