// Package codec converts between structured parameter objects and URL query
// strings.
//
// A parameter object (Values) maps string keys to strings, ints, bools, or
// ordered sequences of values. Parse coerces raw query values through an
// explicit decision table (see DecodeScalar), and Serialize produces a
// deterministic, percent-encoded query string. Absent keys never appear in
// the output: omission is the canonical "no value" representation.
package codec

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Values is a parameter object: a mapping from query keys to decoded values.
//
// Value types are restricted to string, int, bool, and []any for ordered
// sequences (repeated query keys). A key that would carry no value is simply
// absent from the map.
type Values map[string]any

// Clone returns a shallow copy of v.
// Sequence values are copied so the clone can be appended to independently.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		if seq, ok := val.([]any); ok {
			cp := make([]any, len(seq))
			copy(cp, seq)
			out[k] = cp
			continue
		}
		out[k] = val
	}
	return out
}

// Int returns the value for key as an int, or fallback if the key is absent
// or holds a non-integer value.
func (v Values) Int(key string, fallback int) int {
	switch val := v[key].(type) {
	case int:
		return val
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

// String returns the value for key as a string, or "" if the key is absent.
// Non-string scalars are formatted with their canonical representation.
func (v Values) String(key string) string {
	val, ok := v[key]
	if !ok {
		return ""
	}
	return formatScalar(val)
}

// Bool returns the value for key as a bool, or fallback if the key is absent
// or holds a non-boolean value.
func (v Values) Bool(key string, fallback bool) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	return fallback
}

// Strings returns the value for key as a slice of strings. A scalar value
// yields a one-element slice; an absent key yields nil.
func (v Values) Strings(key string) []string {
	val, ok := v[key]
	if !ok {
		return nil
	}
	if seq, ok := val.([]any); ok {
		out := make([]string, len(seq))
		for i, e := range seq {
			out[i] = formatScalar(e)
		}
		return out
	}
	return []string{formatScalar(val)}
}

// Parse decodes a raw query string into a parameter object.
//
// The result starts as a copy of defaults; keys present in the query override
// them. The first occurrence of a query key is coerced via DecodeScalar.
// Repeated occurrences convert the accumulated value into a sequence and
// append the raw string, bypassing coercion: the first element of a repeated
// key is coerced, later elements are not. See Decoded for the decision table.
//
// Percent-decoding failures propagate as the returned error. Coercion itself
// never fails: anything that is not a boolean or digit run stays a string.
func Parse(rawQuery string, defaults Values) (Values, error) {
	out := defaults.Clone()
	if out == nil {
		out = make(Values)
	}

	parsed, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	for key, raw := range parsed {
		if len(raw) == 0 {
			continue
		}
		first := DecodeScalar(raw[0]).Value()
		if len(raw) == 1 {
			out[key] = first
			continue
		}
		seq := make([]any, 0, len(raw))
		seq = append(seq, first)
		for _, s := range raw[1:] {
			// Repeated key: raw append, no coercion.
			seq = append(seq, s)
		}
		out[key] = seq
	}

	return out, nil
}

// Serialize encodes a parameter object as a percent-encoded query string.
//
// Keys whose value is nil or the empty string are omitted entirely. Sequence
// values emit one key=value pair per element, in sequence order. Keys are
// sorted so equal parameter objects always serialize identically. The leading
// "?" is not included.
func Serialize(v Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	enc := url.Values{}
	for _, k := range keys {
		switch val := v[k].(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
			enc.Add(k, val)
		case []any:
			for _, e := range val {
				enc.Add(k, formatScalar(e))
			}
		case []string:
			for _, e := range val {
				enc.Add(k, e)
			}
		default:
			enc.Add(k, formatScalar(val))
		}
	}
	return enc.Encode()
}

// formatScalar renders a scalar value in the form Parse would re-decode.
func formatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
