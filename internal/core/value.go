package core

// value.go defines the raw field value as a tagged variant.
//
// The input boundary decides once what a raw value is, so validators switch
// on Kind instead of probing for nulls and types themselves:
//
//   - Missing: null or absent
//   - Text: a string, kept exactly as read (no trimming)
//   - Integer: a whole number, e.g. a phone or zip that arrived unquoted
//   - Unsupported: anything else (fractions, booleans, arrays, objects);
//     never valid, but its raw form is kept for diagnostics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindInteger
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Value is one raw field value. The zero Value is Missing.
// Values are comparable and can be used as map keys.
type Value struct {
	kind Kind
	text string
	num  int64
}

// Missing returns the null value.
func Missing() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Integer returns an integer value.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// Unsupported returns a value of a type no field accepts. raw is its textual form.
func Unsupported(raw string) Value { return Value{kind: KindUnsupported, text: raw} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is null or absent.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// AsText returns the string of a Text value.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsInteger returns the number of an Integer value.
func (v Value) AsInteger() (int64, bool) {
	return v.num, v.kind == KindInteger
}

// String returns the raw textual form of v; empty for Missing.
func (v Value) String() string {
	switch v.kind {
	case KindText, KindUnsupported:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	default:
		return ""
	}
}

// MarshalJSON renders Missing as null, Integer as a number and every other
// kind as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMissing:
		return []byte("null"), nil
	case KindInteger:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	default:
		return json.Marshal(v.text)
	}
}

// ValueOf converts a decoded JSON (or driver) value into a Value.
// Numbers become Integer only when they are whole and fit in an int64.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Missing()
	case Value:
		return t
	case string:
		return Text(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Integer(n)
		}
		// Dataframe exports write whole numbers as 94105.0.
		if f, err := t.Float64(); err == nil {
			return floatValue(f, t.String())
		}
		return Unsupported(t.String())
	case int:
		return Integer(int64(t))
	case int32:
		return Integer(int64(t))
	case int64:
		return Integer(t)
	case float64:
		return floatValue(t, strconv.FormatFloat(t, 'g', -1, 64))
	case bool:
		return Unsupported(strconv.FormatBool(t))
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Unsupported(fmt.Sprint(t))
		}
		return Unsupported(string(b))
	}
}

// floatValue maps a float to Integer when it is whole and exactly
// representable. raw is kept for Unsupported values.
func floatValue(f float64, raw string) Value {
	// NaN is how dataframe exports spell null.
	if math.IsNaN(f) {
		return Missing()
	}
	if !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Integer(int64(f))
	}
	return Unsupported(raw)
}
