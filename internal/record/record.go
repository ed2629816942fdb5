// Package record defines the ordered, JSON-serializable data shapes shared by
// the loader, the denormalization engine, and the document writer.
//
// A Record keeps its fields in insertion order, and that order is the key order
// of the emitted JSON object. Absence is modeled only as "no key": a field that
// was never set is simply not present.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is an ordered mapping from field name to value. Values are scalars
// (string, int64, Float) or nested *Record / []*Record / []string.
//
// The zero value is not usable; construct with New.
type Record struct {
	m *orderedmap.OrderedMap[string, any]
}

// New returns an empty Record.
func New() *Record {
	return &Record{m: orderedmap.New[string, any]()}
}

// Set stores value under field. An existing field keeps its position.
func (r *Record) Set(field string, value any) {
	r.m.Set(field, value)
}

// Get returns the value stored under field.
func (r *Record) Get(field string) (any, bool) {
	return r.m.Get(field)
}

// Has reports whether field is present.
func (r *Record) Has(field string) bool {
	_, ok := r.m.Get(field)
	return ok
}

// String returns field as a string when present and of string type.
func (r *Record) String(field string) (string, bool) {
	v, ok := r.m.Get(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Delete removes field and reports whether it was present.
func (r *Record) Delete(field string) bool {
	_, ok := r.m.Delete(field)
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	for k := range r.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates fields in insertion order.
func (r *Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if r == nil || r.m == nil {
			return
		}
		for p := r.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Clone returns a deep copy. Nested records and slices are copied so that the
// clone can be modified or embedded elsewhere without aliasing r.
func (r *Record) Clone() *Record {
	return r.CloneExcept()
}

// CloneExcept returns a deep copy of r without the named fields.
func (r *Record) CloneExcept(skip ...string) *Record {
	out := New()
	for k, v := range r.All() {
		if contains(skip, k) {
			continue
		}
		out.Set(k, cloneValue(v))
	}
	return out
}

// MarshalJSON emits the fields as a JSON object in insertion order. Strings
// are written without HTML escaping, so "A & <B>" stays as is.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil || r.m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	put := func(v any) error {
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends '\n'
		return nil
	}

	buf.WriteByte('{')
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if err := put(p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := put(p.Value); err != nil {
			return nil, fmt.Errorf("record: field %s: %w", p.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Clone()
	case []*Record:
		out := make([]*Record, len(t))
		for i, c := range t {
			out[i] = c.Clone()
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Float is a floating-point field value. It always serializes with a decimal
// point or exponent so that a float column stays a float in the output
// (18.0, never 18).
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("record: unsupported float value %v", v)
	}

	// Same format selection as encoding/json.
	format := byte('f')
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, v, format, -1, 64)
	for _, c := range b {
		if c == '.' || c == 'e' {
			return b, nil
		}
	}
	return append(b, '.', '0'), nil
}

var (
	_ json.Marshaler = (*Record)(nil)
	_ json.Marshaler = Float(0)
)
