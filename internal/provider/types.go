package provider

import (
	"bytes"
	"context"
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// The scalar types below decode provider JSON leniently: null, "" and values
// of the wrong shape become invalid (null) instead of failing the record.

func isNull(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// rawScalar returns the textual form of a JSON string, number or bool.
// Objects and arrays report ok=false.
func rawScalar(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return "", false
	}
	switch b[0] {
	case '"':
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	case '{', '[':
		return "", false
	default:
		return string(b), true
	}
}

// String is a nullable text field. Numbers and booleans keep their literal
// text; empty strings are null.
type String struct {
	V     string
	Valid bool
}

func (s *String) UnmarshalJSON(b []byte) error {
	s.V, s.Valid = rawScalar(b)
	return nil
}

// Null converts to sql.NullString.
func (s String) Null() sql.NullString {
	return sql.NullString{String: s.V, Valid: s.Valid}
}

// Or returns s when valid, otherwise other.
func (s String) Or(other String) String {
	if s.Valid {
		return s
	}
	return other
}

// Int is a nullable integer that also accepts numeric strings and integral
// floats such as 12.0.
type Int struct {
	V     int64
	Valid bool
}

func (n *Int) UnmarshalJSON(b []byte) error {
	n.V, n.Valid = 0, false
	raw, ok := rawScalar(b)
	if !ok {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		n.V, n.Valid = v, true
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		n.V, n.Valid = int64(math.Round(f)), true
	}
	return nil
}

// Null converts to sql.NullInt64.
func (n Int) Null() sql.NullInt64 {
	return sql.NullInt64{Int64: n.V, Valid: n.Valid}
}

// Float is a nullable float that also accepts numeric strings.
type Float struct {
	V     float64
	Valid bool
}

func (f *Float) UnmarshalJSON(b []byte) error {
	f.V, f.Valid = 0, false
	raw, ok := rawScalar(b)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		f.V, f.Valid = v, true
	}
	return nil
}

// Null converts to sql.NullFloat64.
func (f Float) Null() sql.NullFloat64 {
	return sql.NullFloat64{Float64: f.V, Valid: f.Valid}
}

// Bool accepts JSON booleans, "true"/"false" in any case, and 1/0 as number
// or string. Anything else, including null, stays null.
type Bool struct {
	V     bool
	Valid bool
}

func (v *Bool) UnmarshalJSON(b []byte) error {
	v.V, v.Valid = false, false
	raw, ok := rawScalar(b)
	if !ok {
		return nil
	}
	switch strings.ToLower(raw) {
	case "true", "1":
		v.V, v.Valid = true, true
	case "false", "0":
		v.V, v.Valid = false, true
	}
	return nil
}

// Null converts to sql.NullBool.
func (v Bool) Null() sql.NullBool {
	return sql.NullBool{Bool: v.V, Valid: v.Valid}
}

// TimeLayouts are tried in order when parsing date-like strings.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time keeps the raw provider text alongside the parsed value so callers can
// report strings that did not parse.
type Time struct {
	Raw   string
	V     time.Time
	Valid bool
}

func (t *Time) UnmarshalJSON(b []byte) error {
	t.Raw, t.V, t.Valid = "", time.Time{}, false
	raw, ok := rawScalar(b)
	if !ok {
		return nil
	}
	t.Raw = raw
	t.V, t.Valid = ParseTime(raw)
	return nil
}

// Null converts to sql.NullTime, logging a warning when the provider sent a
// value that could not be parsed.
func (t Time) Null(ctx context.Context, field string) sql.NullTime {
	if !t.Valid && t.Raw != "" {
		log.Ctx(ctx).Warn().
			Str("field", field).
			Str("value", t.Raw).
			Msg("Unparseable date, storing null")
	}
	return sql.NullTime{Time: t.V, Valid: t.Valid}
}

// ParseTime parses s with the first matching layout in TimeLayouts. Values
// without a zone are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v.UTC(), true
		}
	}
	return time.Time{}, false
}

// Nested is an optional sub-object. null, "", [] and non-object values leave
// it absent with a zero V, so every field flattened from it reads as null.
type Nested[T any] struct {
	V       T
	Present bool
}

func (n *Nested[T]) UnmarshalJSON(b []byte) error {
	var zero T
	n.V, n.Present = zero, false
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	if err := sonic.Unmarshal(b, &n.V); err != nil {
		return err
	}
	n.Present = true
	return nil
}
