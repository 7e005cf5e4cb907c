package usecase

import (
	"regexp"
	"strings"

	"github.com/FreePeak/turso-mcp-server/pkg/db"
)

var (
	writeKeyword   = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|REPLACE|CREATE|DROP|ALTER)\b`)
	analyzeKeyword = regexp.MustCompile(`(?i)\bANALYZE\b`)
)

// introspectionPragmas only read, with or without an argument
var introspectionPragmas = map[string]bool{
	"collation_list":    true,
	"compile_options":   true,
	"database_list":     true,
	"foreign_key_check": true,
	"foreign_key_list":  true,
	"function_list":     true,
	"index_info":        true,
	"index_list":        true,
	"index_xinfo":       true,
	"integrity_check":   true,
	"module_list":       true,
	"pragma_list":       true,
	"quick_check":       true,
	"table_info":        true,
	"table_list":        true,
	"table_xinfo":       true,
}

// sideEffectPragmas act on the database even without an argument
var sideEffectPragmas = map[string]bool{
	"incremental_vacuum": true,
	"optimize":           true,
	"shrink_memory":      true,
	"wal_checkpoint":     true,
}

// checkReadOnly accepts a single SELECT, PRAGMA, EXPLAIN or WITH statement.
// String literals, quoted identifiers and comments are masked first, so their
// contents never count as a statement separator or keyword.
func checkReadOnly(t Tool, query string) error {
	masked := strings.TrimRight(strings.TrimSpace(maskSQL(query)), "; \t\r\n")
	if strings.Contains(masked, ";") {
		return validationError(t, "only a single statement is allowed")
	}
	if masked == "" {
		return validationError(t, "query is required")
	}

	switch db.Keyword(masked) {
	case "SELECT":
		return nil
	case "EXPLAIN":
		if analyzeKeyword.MatchString(masked) && writeKeyword.MatchString(masked) {
			return validationError(t, "EXPLAIN ANALYZE must not modify data")
		}
		return nil
	case "PRAGMA":
		return checkPragma(t, masked)
	case "WITH":
		if writeKeyword.MatchString(masked) {
			return validationError(t, "WITH queries must not modify data")
		}
		return nil
	default:
		return validationError(t, "only SELECT, PRAGMA, EXPLAIN and WITH queries are allowed")
	}
}

// checkPragma allows introspection pragmas and plain reads of a setting.
// Any other pragma given a value, by assignment or call form, writes.
func checkPragma(t Tool, masked string) error {
	rest := strings.TrimLeft(masked, " \t\r\n(")
	rest = strings.TrimSpace(rest[len("PRAGMA"):])

	name, arg := rest, ""
	if i := strings.IndexAny(rest, " \t\r\n(="); i >= 0 {
		name, arg = rest[:i], strings.TrimSpace(rest[i:])
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)

	switch {
	case strings.HasPrefix(arg, "="):
		return validationError(t, "PRAGMA assignments are not allowed in read-only queries")
	case introspectionPragmas[name]:
		return nil
	case arg != "":
		return validationError(t, "PRAGMA %s cannot take an argument in read-only queries", name)
	case sideEffectPragmas[name]:
		return validationError(t, "PRAGMA %s is not allowed in read-only queries", name)
	}
	return nil
}

// maskSQL empties quoted text and drops comments, keeping the quotes so the
// statement shape survives. MySQL executable comments (/*! ... */) are kept.
func maskSQL(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(query, i+1, c)
			b.WriteByte(c)
			b.WriteByte(c)
		case c == '[':
			i = skipQuoted(query, i+1, ']')
			b.WriteString("[]")
		case isLineComment(query[i:]):
			if j := strings.IndexByte(query[i:], '\n'); j >= 0 {
				i += j
			} else {
				i = len(query)
			}
			b.WriteByte(' ')
		case strings.HasPrefix(query[i:], "/*") && !strings.HasPrefix(query[i:], "/*!"):
			if j := strings.Index(query[i+2:], "*/"); j >= 0 {
				i += j + 4
			} else {
				i = len(query)
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// isLineComment requires whitespace after "--", the stricter MySQL reading
func isLineComment(s string) bool {
	if !strings.HasPrefix(s, "--") {
		return false
	}
	return len(s) == 2 || strings.ContainsRune(" \t\r\n", rune(s[2]))
}

// skipQuoted returns the index just past the closing quote. A doubled quote
// is an escaped one.
func skipQuoted(query string, i int, closing byte) int {
	for i < len(query) {
		if query[i] == closing {
			if i+1 < len(query) && query[i+1] == closing {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}
