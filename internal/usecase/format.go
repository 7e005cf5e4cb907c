package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FreePeak/turso-mcp-server/pkg/db"
)

// selectBuilder appends optional clauses in a fixed order: filters joined
// with AND, then ORDER BY, then LIMIT last.
type selectBuilder struct {
	base    string
	filters []string
	order   string
	args    []interface{}
	max     int64
}

func newSelect(base string) *selectBuilder {
	return &selectBuilder{base: base}
}

func (b *selectBuilder) where(clause string, args ...interface{}) {
	b.filters = append(b.filters, clause)
	b.args = append(b.args, args...)
}

func (b *selectBuilder) orderBy(order string) {
	b.order = order
}

// limit sets the row limit; zero leaves the clause out
func (b *selectBuilder) limit(n int64) {
	b.max = n
}

func (b *selectBuilder) build() db.Statement {
	var sb strings.Builder
	sb.WriteString(b.base)
	if len(b.filters) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.filters, " AND "))
	}
	if b.order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.order)
	}

	args := append([]interface{}(nil), b.args...)
	if b.max > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, b.max)
	}
	return db.Statement{SQL: sb.String(), Args: args}
}

// formatJSON renders a result as indented JSON
func formatJSON(res *db.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

func formatInserted(what string, res *db.Result) (string, error) {
	id, ok := res.InsertedID()
	if !ok {
		return "", fmt.Errorf("%s added but the database did not report its ID", strings.ToLower(what))
	}
	return fmt.Sprintf("%s added with ID: %d", what, id), nil
}
