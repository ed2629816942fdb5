package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"denorm/internal/record"
)

// ErrTooFewTokens is returned when a line has fewer tokens than the table has
// fields.
var ErrTooFewTokens = errors.New("too few tokens")

// FieldError reports a token that could not be coerced to its field's kind.
type FieldError struct {
	Field string
	Kind  Kind
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q as %s: %v", e.Field, e.Value, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Plan is a compiled, per-column coercion plan for one table. Coercers are
// resolved once so the per-line loop does no kind switching.
type Plan struct {
	keyIdx int
	cols   []colPlan
}

type colPlan struct {
	name       string
	kind       Kind
	omitIfNull bool
	coerce     func(s string) (any, error)
}

// Compile validates t and builds its Plan.
func Compile(t Table) (*Plan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	p := &Plan{keyIdx: -1, cols: make([]colPlan, len(t.Fields))}
	for i, f := range t.Fields {
		if f.Name == t.Key {
			p.keyIdx = i
		}
		p.cols[i] = colPlan{
			name:       f.Name,
			kind:       f.Kind,
			omitIfNull: f.OmitIfNull,
			coerce:     coercerFor(f.Kind),
		}
	}
	return p, nil
}

// MustCompile is like Compile but panics on an invalid table. It is meant for
// package-level tables whose layout is fixed at build time.
func MustCompile(t Table) *Plan {
	p, err := Compile(t)
	if err != nil {
		panic(err)
	}
	return p
}

// Build turns the tokens of one line into the row key and its Record.
// Tokens beyond the declared fields are ignored. The key is the raw token and is never
// coerced.
func (p *Plan) Build(tokens []string) (string, *record.Record, error) {
	if len(tokens) < len(p.cols) {
		return "", nil, fmt.Errorf("%w: want %d, got %d", ErrTooFewTokens, len(p.cols), len(tokens))
	}

	rec := record.New()
	for i, c := range p.cols {
		raw := tokens[i]
		if c.omitIfNull && raw == NullToken {
			continue
		}
		v, err := c.coerce(raw)
		if err != nil {
			return "", nil, &FieldError{Field: c.name, Kind: c.kind, Value: raw, Err: err}
		}
		rec.Set(c.name, v)
	}
	return tokens[p.keyIdx], rec, nil
}

func coercerFor(k Kind) func(string) (any, error) {
	switch k {
	case KindInt:
		return func(s string) (any, error) {
			return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		}
	case KindFloat:
		return func(s string) (any, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("non-finite value")
			}
			return record.Float(f), nil
		}
	case KindDate:
		return func(s string) (any, error) {
			day, _, _ := strings.Cut(s, " ")
			return day, nil
		}
	default:
		return func(s string) (any, error) { return s, nil }
	}
}
