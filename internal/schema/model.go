// Package schema describes the fixed layout of every source table: its file
// name, delimiter, key, and the ordered list of typed fields. A Table is
// compiled into a Plan once and the Plan turns split lines into Records.
package schema

import (
	"fmt"
	"strings"
)

// Kind enumerates the coercion applied to a field's raw token.
type Kind uint8

const (
	// KindString keeps the raw token.
	KindString Kind = iota
	// KindInt parses a base-10 64-bit integer.
	KindInt
	// KindFloat parses a 64-bit float (NaN and Inf are rejected).
	KindFloat
	// KindDate keeps the date portion of a "date time" timestamp.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// NullToken is the sentinel a source uses for a missing value.
const NullToken = "NULL"

// Field is one positional column of a source table.
type Field struct {
	Name string
	Kind Kind
	// OmitIfNull drops the field from the Record when the raw token is NullToken.
	OmitIfNull bool
}

// Table is the layout of one delimited source file.
type Table struct {
	// Name is used in diagnostics and metrics labels (e.g. "order-details").
	Name string
	// File is the file name relative to the input directory.
	File string
	// Comma is the field delimiter.
	Comma rune
	// Key names the primary-key field, or the parent-key field of a fan-out table.
	Key string
	// Fields lists the columns in file order.
	Fields []Field

	// FanOut marks a one-to-many table: rows are grouped under Key instead of
	// being stored one per key.
	FanOut bool
	// Child names the single field collected per row of a fan-out table. When
	// empty, the child is a Record of every non-key field.
	Child string
}

// FieldNames returns the ordered field names.
func (t Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks that the table layout is internally consistent.
func (t Table) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("schema: table name is empty")
	}
	if t.File == "" {
		return fmt.Errorf("schema %s: file is empty", t.Name)
	}
	if t.Comma == 0 {
		return fmt.Errorf("schema %s: delimiter is not set", t.Name)
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("schema %s: no fields", t.Name)
	}

	seen := make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field with empty name", t.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %q", t.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	key, ok := t.field(t.Key)
	if !ok {
		return fmt.Errorf("schema %s: key field %q not declared", t.Name, t.Key)
	}
	if key.OmitIfNull {
		return fmt.Errorf("schema %s: key field %q cannot be omitted", t.Name, t.Key)
	}
	if t.Child != "" {
		if !t.FanOut {
			return fmt.Errorf("schema %s: child field set on a non fan-out table", t.Name)
		}
		if _, ok := t.field(t.Child); !ok {
			return fmt.Errorf("schema %s: child field %q not declared", t.Name, t.Child)
		}
	}
	return nil
}

func (t Table) field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
