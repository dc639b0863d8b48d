package sfdb

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// DefaultFields are selected when a query names no fields
var DefaultFields = []string{"Id", "Name"}

// Select describes a SOQL query on a single sobject.
// Where and Fields are copied into the query text as they are.
type Select struct {
	Object  string
	Fields  []string
	Where   string
	OrderBy []string
	// Limit of 0 means no limit
	Limit int
}

// ToSOQL builds SELECT <fields> FROM <object> [WHERE ..] [ORDER BY ..] [LIMIT ..]
func (s Select) ToSOQL() (string, error) {
	if len(s.Object) == 0 {
		return "", fmt.Errorf("object needs to be provided")
	}
	fields := s.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	b := sq.Select(fields...).From(s.Object)
	if len(s.Where) > 0 {
		b = b.Where(s.Where)
	}
	if len(s.OrderBy) > 0 {
		b = b.OrderBy(s.OrderBy...)
	}
	if s.Limit > 0 {
		b = b.Limit(uint64(s.Limit))
	}
	q, _, err := b.ToSql()
	if err != nil {
		return "", fmt.Errorf("unable to build soql query: %w", err)
	}
	return q, nil
}

var soqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// QuoteString returns s as a quoted SOQL string literal
func QuoteString(s string) string {
	return "'" + soqlEscaper.Replace(s) + "'"
}
