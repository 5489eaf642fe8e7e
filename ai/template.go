package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/config"
)

var (
	modelPattern      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*){0,2}$`)
	columnPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)
)

// Query is a parameterized warehouse request.
type Query struct {
	SQL  string
	Args []any

	dialect Dialect
}

// Templater builds the per-turn retrieval + completion query. The SQL
// text is fixed when the templater is created; only bind arguments vary
// per turn, so user text can never reach the query structure.
type Templater struct {
	dialect Dialect
	models  config.Models
	sql     string
}

// NewTemplater validates the configured models and identifiers and
// prepares the query text.
func NewTemplater(d Dialect, m config.Models) (*Templater, error) {
	if !modelPattern.MatchString(m.Embedding) {
		return nil, fmt.Errorf("invalid embedding model %q", m.Embedding)
	}
	if !modelPattern.MatchString(m.Completion) {
		return nil, fmt.Errorf("invalid completion model %q", m.Completion)
	}
	if !identifierPattern.MatchString(m.Table) {
		return nil, fmt.Errorf("invalid table name %q", m.Table)
	}
	if !columnPattern.MatchString(m.VectorColumn) {
		return nil, fmt.Errorf("invalid vector column %q", m.VectorColumn)
	}

	t := &Templater{dialect: d, models: m}
	switch d {
	case DialectSnowflake:
		t.sql = t.snowflakeSQL()
	case DialectPostgres:
		t.sql = t.postgresSQL()
	default:
		return nil, fmt.Errorf("unsupported dialect %s", d)
	}
	return t, nil
}

// Dialect returns the templater's SQL flavor.
func (t *Templater) Dialect() Dialect { return t.dialect }

// Models returns the models and table the query is bound to.
func (t *Templater) Models() config.Models { return t.models }

// Build returns the query for question given the prior user turns.
func (t *Templater) Build(question string, history []chat.Turn) Query {
	hist := RenderHistory(history)
	q := Query{SQL: t.sql, dialect: t.dialect}
	switch t.dialect {
	case DialectPostgres:
		// $1 question, $2 framing, $3 history
		q.Args = []any{question, systemPrompt, hist}
	default:
		// ? question (embed), framing, history, question (prompt)
		q.Args = []any{question, systemPrompt, hist, question}
	}
	return q
}

// RenderHistory formats user turns as "User: text" lines. Assistant
// turns are skipped.
func RenderHistory(history []chat.Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		if turn.Role != chat.RoleUser {
			continue
		}
		lines = append(lines, turn.Role.Label()+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// contextLine concatenates one retrieved record with its labels.
func (t *Templater) contextLine(concat string) string {
	q := t.dialect.QuoteLiteral
	return concat + "(" +
		q("Patient ID: ") + ", patient_id, " +
		q(", Disease: ") + ", disease_type, ' ', disease_stage, " +
		q(", Visit: ") + ", visit_date, " +
		q(", Summary: ") + ", clinical_summary, " +
		q(", Treatment: ") + ", assigned_treatment, " +
		q(", Prognosis: ") + ", prognosis_summary)"
}

func (t *Templater) section(label string) string {
	return t.dialect.QuoteLiteral("\n\n" + label + "\n")
}

func (t *Templater) snowflakeSQL() string {
	q := t.dialect.QuoteLiteral
	return `WITH query AS (
  SELECT SNOWFLAKE.CORTEX.EMBED_TEXT_768(` + q(t.models.Embedding) + `, ?) AS q_vec
),
retrieved AS (
  SELECT ` + strings.Join(recordFields, ", ") + `
  FROM ` + t.models.Table + `, query
  ORDER BY VECTOR_COSINE_SIMILARITY(` + t.models.VectorColumn + `, q_vec) DESC
  LIMIT ` + strconv.Itoa(RetrievalLimit) + `
),
context AS (
  SELECT LISTAGG(` + t.contextLine("CONCAT") + `, ` + t.dialect.newline() + `) AS ctx
  FROM retrieved
)
SELECT SNOWFLAKE.CORTEX.COMPLETE(` + q(t.models.Completion) + `,
  CONCAT(?, ` + t.section(labelHistory) + `, ?, ` + t.section(labelContext) + `, COALESCE(ctx, ''), ` + t.section(labelQuestion) + `, ?)
) AS answer
FROM context`
}

func (t *Templater) postgresSQL() string {
	q := t.dialect.QuoteLiteral
	return `WITH query AS (
  SELECT ai.ollama_embed(` + q(t.models.Embedding) + `, $1::text) AS q_vec
),
retrieved AS (
  SELECT ` + strings.Join(recordFields, ", ") + `
  FROM ` + t.models.Table + `, query
  ORDER BY ` + t.models.VectorColumn + ` <=> q_vec
  LIMIT ` + strconv.Itoa(RetrievalLimit) + `
),
context AS (
  SELECT string_agg(` + t.contextLine("concat") + `, ` + t.dialect.newline() + `) AS ctx
  FROM retrieved
)
SELECT ai.ollama_generate(` + q(t.models.Completion) + `,
  concat($2::text, ` + t.section(labelHistory) + `, $3::text, ` + t.section(labelContext) + `, coalesce(ctx, ''), ` + t.section(labelQuestion) + `, $1::text)
)->>'response' AS answer
FROM context`
}

// Inline renders the query with every bind argument replaced by an
// escaped literal, for logging and inspection. The result is never
// executed.
func (q Query) Inline() string {
	lits := make([]string, len(q.Args))
	for i, a := range q.Args {
		lits[i] = q.dialect.QuoteLiteral(fmt.Sprint(a))
	}

	if q.dialect == DialectPostgres {
		pairs := make([]string, 0, 2*len(lits))
		for i := len(lits) - 1; i >= 0; i-- {
			pairs = append(pairs, "$"+strconv.Itoa(i+1)+"::text", lits[i])
		}
		return strings.NewReplacer(pairs...).Replace(q.SQL)
	}

	var b strings.Builder
	next := 0
	inLiteral := false
	for i := 0; i < len(q.SQL); i++ {
		c := q.SQL[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral && next < len(lits):
			b.WriteString(lits[next])
			next++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
