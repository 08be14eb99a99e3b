package core

import (
	"strconv"
	"time"
)

// Row is a single result row addressed by column name. Drivers hand back
// different physical types for the same logical column (an int64 column may
// arrive as int64, a smaller int width, or text), so every accessor coerces
// leniently. The second return value is false when the column is absent or
// NULL.
type Row map[string]any

// StringAt returns the text value of a column.
func (r Row) StringAt(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// Int64At returns the integer value of a column, accepting any physical
// integer width, floats holding integral values, and decimal text.
func (r Row) Int64At(col string) (int64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Float64At returns the floating-point value of a column.
func (r Row) Float64At(col string) (float64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int64:
		return float64(f), true
	case int:
		return float64(f), true
	case string:
		d, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, false
		}
		return d, true
	case []byte:
		d, err := strconv.ParseFloat(string(f), 64)
		if err != nil {
			return 0, false
		}
		return d, true
	default:
		return 0, false
	}
}

// TimeAt returns a column already materialized as time.Time by the driver.
func (r Row) TimeAt(col string) (time.Time, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Has reports whether the column is present and non-NULL.
func (r Row) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}
