package db

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Statement is a SQL text with its bound arguments. Args may hold plain values
// for positional placeholders or sql.NamedArg values for named ones.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Kind tells how a statement is sent to the driver
type Kind string

const (
	KindQuery Kind = "query"
	KindExec  Kind = "exec"
)

var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)

// Keyword returns the upper-cased leading keyword of a statement, skipping
// whitespace, opening parentheses and SQL comments.
func Keyword(query string) string {
	rest := skipLeading(query)
	if i := strings.IndexAny(rest, " \t\r\n(;"); i >= 0 {
		rest = rest[:i]
	}
	return strings.ToUpper(rest)
}

func skipLeading(query string) string {
	for {
		query = strings.TrimLeft(query, " \t\r\n(")
		switch {
		case strings.HasPrefix(query, "--"):
			i := strings.IndexByte(query, '\n')
			if i < 0 {
				return ""
			}
			query = query[i+1:]
		case strings.HasPrefix(query, "/*"):
			i := strings.Index(query[2:], "*/")
			if i < 0 {
				return ""
			}
			query = query[i+4:]
		default:
			return query
		}
	}
}

// Classify decides whether a statement produces rows.
func Classify(query string) Kind {
	switch Keyword(query) {
	case "SELECT", "PRAGMA", "WITH", "EXPLAIN", "VALUES", "SHOW", "DESCRIBE":
		return KindQuery
	}
	if returningClause.MatchString(query) {
		return KindQuery
	}
	return KindExec
}

// Result holds the outcome of a statement
type Result struct {
	Columns      []string                 `json:"columns"`
	Rows         []map[string]interface{} `json:"rows"`
	RowsAffected int64                    `json:"rowsAffected"`
	LastInsertID *int64                   `json:"lastInsertRowid,omitempty"`
}

// InsertedID returns the id of the row created by an insert, either reported
// by the driver or read back from a RETURNING id column.
func (r *Result) InsertedID() (int64, bool) {
	if r == nil {
		return 0, false
	}
	if r.LastInsertID != nil {
		return *r.LastInsertID, true
	}
	if len(r.Rows) == 0 {
		return 0, false
	}

	switch v := r.Rows[0]["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// normalizeValue converts driver values into JSON-friendly ones
func normalizeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return v
	}
}
