package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// missingSentinels are the archive's numeric no-data markers. Any field
// that parses to one of these values becomes a missing Value, never the
// literal float.
var missingSentinels = map[float64]bool{
	-999.0:  true,
	-9999.0: true,
}

// naStrings are textual markers treated as missing, compared lowercase.
var naStrings = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// Value is one cell of a table: numeric, textual, or missing.
// The zero Value is missing.
type Value struct {
	Num     float64 `json:"-"`
	Str     string  `json:"-"`
	Numeric bool    `json:"-"`
	Present bool    `json:"-"`
}

// Number builds a numeric Value.
func Number(f float64) Value {
	return Value{Num: f, Numeric: true, Present: true}
}

// Text builds a textual Value.
func Text(s string) Value {
	return Value{Str: s, Present: true}
}

// NoData builds a missing Value.
func NoData() Value {
	return Value{}
}

// IsMissing reports whether the value carries no data.
func (v Value) IsMissing() bool {
	return !v.Present
}

// String renders the value for delimited output. Missing values render
// as the empty string.
func (v Value) String() string {
	switch {
	case !v.Present:
		return ""
	case v.Numeric:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Str
	}
}

// MarshalJSON encodes missing as null, numeric as a JSON number, and
// text as a JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.Present:
		return []byte("null"), nil
	case v.Numeric:
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*v = NoData()
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*v = Text(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	*v = Number(f)
	return nil
}

// parseValue converts one raw field into a Value. Numeric fields hitting
// a missing-value sentinel and recognized NA strings become missing.
func parseValue(field string) Value {
	field = strings.TrimSpace(field)
	if naStrings[strings.ToLower(field)] {
		return NoData()
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		if missingSentinels[f] {
			return NoData()
		}
		return Number(f)
	}
	return Text(field)
}
