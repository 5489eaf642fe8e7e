package db

import (
	"strings"

	"github.com/pkg/errors"
)

// AnswerColumn is the column the completion is selected into.
const AnswerColumn = "answer"

var (
	// ErrNoAnswer means the query returned zero rows.
	ErrNoAnswer = errors.New("the service returned no rows")
	// ErrMalformedAnswer means the row did not carry a usable answer column.
	ErrMalformedAnswer = errors.New("the service returned a malformed row")
)

// rowSource is the subset of *sql.Rows and pgx.Rows used to read an answer.
type rowSource interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// singleAnswer reads the answer column of the first row. Rows after the
// first are ignored.
func singleAnswer(rows rowSource, columns []string) (string, error) {
	if len(columns) != 1 || !strings.EqualFold(columns[0], AnswerColumn) {
		return "", errors.Wrapf(ErrMalformedAnswer, "columns %v", columns)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", errors.Wrap(err, "read answer")
		}
		return "", ErrNoAnswer
	}

	var answer *string
	if err := rows.Scan(&answer); err != nil {
		return "", errors.Wrapf(ErrMalformedAnswer, "scan: %v", err)
	}
	if answer == nil || strings.TrimSpace(*answer) == "" {
		return "", errors.Wrap(ErrMalformedAnswer, "answer is empty")
	}
	return *answer, nil
}
