package usecase

import (
	"database/sql"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// arguments wraps the loosely typed argument bag of one call
type arguments struct {
	tool Tool
	raw  map[string]interface{}
}

func (a arguments) lookup(name string) (interface{}, bool) {
	v, ok := a.raw[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// str returns a string argument. Absent and empty values report false.
func (a arguments) str(name string) (string, bool, error) {
	v, ok := a.lookup(name)
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, validationError(a.tool, "%s must be a string", name)
	}
	return s, s != "", nil
}

// nullableStr returns a string argument or nil, for binding as NULL
func (a arguments) nullableStr(name string) (interface{}, error) {
	v, ok := a.lookup(name)
	if !ok {
		return nil, nil
	}
	s, isString := v.(string)
	if !isString {
		return nil, validationError(a.tool, "%s must be a string", name)
	}
	return s, nil
}

// integer accepts JSON numbers with no fractional part, plus numeric strings
func (a arguments) integer(name string) (int64, bool, error) {
	v, ok := a.lookup(name)
	if !ok {
		return 0, false, nil
	}

	switch n := v.(type) {
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false, validationError(a.tool, "%s must be an integer", name)
		}
		return int64(n), true, nil
	case int:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false, validationError(a.tool, "%s must be an integer", name)
		}
		return i, true, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false, validationError(a.tool, "%s must be an integer", name)
		}
		return i, true, nil
	default:
		return 0, false, validationError(a.tool, "%s must be an integer", name)
	}
}

// limit returns the optional row limit, zero meaning none
func (a arguments) limit() (int64, error) {
	n, ok, err := a.integer("limit")
	if err != nil {
		return 0, validationError(a.tool, "limit must be a positive integer")
	}
	if !ok {
		return 0, nil
	}
	if n <= 0 {
		return 0, validationError(a.tool, "limit must be a positive integer")
	}
	return n, nil
}

// params converts the optional params argument into statement arguments. An
// array binds positionally; an object binds by name in key order.
func (a arguments) params() ([]interface{}, error) {
	v, ok := a.lookup("params")
	if !ok {
		return nil, nil
	}

	switch p := v.(type) {
	case []interface{}:
		return p, nil
	case []string:
		out := make([]interface{}, len(p))
		for i, s := range p {
			out[i] = s
		}
		return out, nil
	case map[string]interface{}:
		named := make([]sql.NamedArg, 0, len(p))
		for k, v := range p {
			named = append(named, sql.Named(strings.TrimLeft(k, ":@$"), v))
		}
		sort.Slice(named, func(i, j int) bool { return named[i].Name < named[j].Name })

		out := make([]interface{}, len(named))
		for i, n := range named {
			out[i] = n
		}
		return out, nil
	default:
		return nil, validationError(a.tool, "params must be an array or an object")
	}
}
