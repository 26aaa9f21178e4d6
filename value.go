package duckpond

import (
	"encoding/json"
	"fmt"
)

// Value is one dynamically-typed scalar cell of a query result. The engine
// reports values through its JSON output mode, so the concrete type is one
// of: nil, bool, json.Number, string, or (for nested engine types) the raw
// decoded JSON value. Valid is false for SQL NULL.
type Value struct {
	Value any
	Valid bool
}

func newValue(raw any) Value {
	if raw == nil {
		return Value{}
	}
	return Value{Value: raw, Valid: true}
}

// Int64 returns the value as an int64 if it is a whole number.
func (v Value) Int64() (int64, bool) {
	if !v.Valid {
		return 0, false
	}
	switch n := v.Value.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

// Float64 returns the value as a float64 if it is numeric.
func (v Value) Float64() (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	switch n := v.Value.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Bool returns the value as a bool.
func (v Value) Bool() (bool, bool) {
	if !v.Valid {
		return false, false
	}
	b, ok := v.Value.(bool)
	return b, ok
}

// Text returns the value as a string. Non-string scalars do not stringify
// implicitly; use String for display formatting instead.
func (v Value) Text() (string, bool) {
	if !v.Valid {
		return "", false
	}
	s, ok := v.Value.(string)
	return s, ok
}

// String renders the value for display. NULL renders as "NULL".
func (v Value) String() string {
	if !v.Valid {
		return "NULL"
	}
	return fmt.Sprint(v.Value)
}

// driverValue converts to the narrow type set the database/sql driver
// contract allows.
func (v Value) driverValue() any {
	if !v.Valid {
		return nil
	}
	if n, ok := v.Value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v.Value
}
