// Package jsonfield provides a JSON value holder that never fails to decode
// and resolves typed reads to caller-supplied fallbacks.
//
// A Value captures whatever JSON token appears at its position in a document.
// Structs whose leaves are Values can therefore be decoded from payloads of
// any shape; missing, null and mistyped fields are resolved when read.
package jsonfield

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind classifies the JSON token held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// ErrAbsent is returned by Decode when the value was not present in the document.
var ErrAbsent = errors.New("jsonfield: value is absent")

// Value is a raw JSON token. The zero Value is absent.
type Value struct {
	raw json.RawMessage
}

// Of wraps raw JSON bytes. Empty or blank input yields an absent Value.
func Of(raw []byte) Value {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{}
	}
	return Value{raw: append(json.RawMessage(nil), trimmed...)}
}

// UnmarshalJSON stores the token verbatim and never returns an error.
func (v *Value) UnmarshalJSON(b []byte) error {
	*v = Of(b)
	return nil
}

// Kind reports the JSON kind of the value.
func (v Value) Kind() Kind {
	if len(v.raw) == 0 {
		return KindAbsent
	}
	switch v.raw[0] {
	case 'n':
		return KindNull
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case 't', 'f':
		return KindBool
	default:
		return KindNumber
	}
}

// IsPresent reports whether the value exists and is not null.
func (v Value) IsPresent() bool {
	k := v.Kind()
	return k != KindAbsent && k != KindNull
}

// IsObject reports whether the value is a JSON object.
func (v Value) IsObject() bool {
	return v.Kind() == KindObject
}

// String returns the value as text. Absent, null and empty strings resolve to
// fallback; non-string kinds resolve to their compact JSON text.
func (v Value) String(fallback string) string {
	switch v.Kind() {
	case KindAbsent, KindNull:
		return fallback
	case KindString:
		s, ok := v.unquote()
		if !ok || s == "" {
			return fallback
		}
		return s
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v.raw); err != nil {
			return fallback
		}
		return buf.String()
	}
}

// Int returns the value as an integer or fallback. Non-integral numbers are
// truncated toward zero; strings must hold a base-10 integer.
func (v Value) Int(fallback int) int {
	if n, ok := v.toInt(); ok {
		return n
	}
	return fallback
}

// IntPtr is Int without a fallback: nil means the value could not be read.
func (v Value) IntPtr() *int {
	if n, ok := v.toInt(); ok {
		return &n
	}
	return nil
}

// Float returns the value as a finite float64 or fallback. Strings are parsed
// as decimal numbers.
func (v Value) Float(fallback float64) float64 {
	var (
		f   float64
		err error
	)
	switch v.Kind() {
	case KindNumber:
		f, err = strconv.ParseFloat(string(v.raw), 64)
	case KindString:
		s, ok := v.unquote()
		if !ok {
			return fallback
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	default:
		return fallback
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// Field returns the named property of an object. Any other kind, or a missing
// key, yields an absent Value.
func (v Value) Field(name string) Value {
	if v.Kind() != KindObject {
		return Value{}
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(v.raw, &m); err != nil {
		return Value{}
	}
	return Of(m[name])
}

// Index returns the i-th element of an array, or an absent Value.
func (v Value) Index(i int) Value {
	if v.Kind() != KindArray || i < 0 {
		return Value{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v.raw, &items); err != nil || i >= len(items) {
		return Value{}
	}
	return Of(items[i])
}

// Decode unmarshals the value into dst.
func (v Value) Decode(dst any) error {
	if v.Kind() == KindAbsent {
		return ErrAbsent
	}
	return json.Unmarshal(v.raw, dst)
}

func (v Value) toInt() (int, bool) {
	var text string
	switch v.Kind() {
	case KindNumber:
		text = string(v.raw)
	case KindString:
		s, ok := v.unquote()
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}

	if n, err := strconv.Atoi(text); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

func (v Value) unquote() (string, bool) {
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return "", false
	}
	return s, true
}
