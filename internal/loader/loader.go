// Package loader turns one delimited source table into an in-memory keyed
// Table, or into a one-to-many Index for fan-out tables.
//
// Loading is best-effort: an open, read, or parse failure stops the table at
// the failing line, logs a table-specific diagnostic, and returns the rows
// accumulated so far together with a Result carrying the cause. Callers always
// get a usable (possibly empty) collection and can tell "empty" from "failed"
// through Result.Err.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"denorm/internal/datasource"
	"denorm/internal/parser/delimited"
	"denorm/internal/record"
	"denorm/internal/schema"
)

// Result describes the outcome of loading one table.
type Result struct {
	// Table is the schema name (e.g. "orders").
	Table string
	// Source identifies the input stream (usually a file path).
	Source string
	// Rows counts the data lines accepted before the load ended.
	Rows int
	// Elapsed is the wall time spent on the table.
	Elapsed time.Duration
	// Err is nil when every line was loaded.
	Err error
}

// OK reports whether the table loaded completely.
func (r Result) OK() bool { return r.Err == nil }

// LineError reports a line that could not be read or turned into a record.
type LineError struct {
	Table string
	Line  int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.Table, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// LoadTable loads a keyed table. Duplicate keys keep the last row.
func LoadTable(ctx context.Context, src datasource.Source, tbl schema.Table) (*record.Table, Result) {
	out := record.NewTable()
	if tbl.FanOut {
		return out, fail(tbl, src, fmt.Errorf("table %s is a fan-out table", tbl.Name))
	}
	res := scan(ctx, src, tbl, func(key string, rec *record.Record) {
		out.Put(key, rec)
	})
	return out, res
}

// LoadValues loads a fan-out table whose children are the values of its
// Child field, grouped under the Key field in input order.
func LoadValues(ctx context.Context, src datasource.Source, tbl schema.Table) (*record.Index[string], Result) {
	out := record.NewIndex[string]()
	if !tbl.FanOut || tbl.Child == "" {
		return out, fail(tbl, src, fmt.Errorf("table %s has no child field", tbl.Name))
	}
	res := scan(ctx, src, tbl, func(key string, rec *record.Record) {
		v, _ := rec.String(tbl.Child)
		out.Append(key, v)
	})
	return out, res
}

// LoadRecords loads a fan-out table whose children are the rows themselves,
// without the Key field, grouped under Key in input order.
func LoadRecords(ctx context.Context, src datasource.Source, tbl schema.Table) (*record.Index[*record.Record], Result) {
	out := record.NewIndex[*record.Record]()
	if !tbl.FanOut || tbl.Child != "" {
		return out, fail(tbl, src, fmt.Errorf("table %s is not a record fan-out table", tbl.Name))
	}
	res := scan(ctx, src, tbl, func(key string, rec *record.Record) {
		rec.Delete(tbl.Key)
		out.Append(key, rec)
	})
	return out, res
}

// scan drives the shared parse path: open, skip the header, split, coerce,
// and hand each row to emit. It stops at the first failure.
func scan(ctx context.Context, src datasource.Source, tbl schema.Table, emit func(key string, rec *record.Record)) Result {
	start := time.Now()
	res := Result{Table: tbl.Name, Source: src.Name()}

	plan, err := schema.Compile(tbl)
	if err != nil {
		return finish(&res, start, err)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return finish(&res, start, err)
	}
	defer rc.Close()

	r := delimited.NewReader(rc, delimited.Options{Comma: tbl.Comma, HasHeader: true})
	for {
		if err := ctx.Err(); err != nil {
			return finish(&res, start, err)
		}

		tokens, err := r.Read()
		if errors.Is(err, io.EOF) {
			return finish(&res, start, nil)
		}
		if err != nil {
			return finish(&res, start, &LineError{Table: tbl.Name, Line: r.Line() + 1, Err: err})
		}

		key, rec, err := plan.Build(tokens)
		if err != nil {
			return finish(&res, start, &LineError{Table: tbl.Name, Line: r.Line(), Err: err})
		}
		emit(key, rec)
		res.Rows++
	}
}

func finish(res *Result, start time.Time, err error) Result {
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("load %s: %w", res.Table, err)
		log.Printf("loader: unable to process %s (%d rows kept): %v", res.Table, res.Rows, err)
	}
	return *res
}

func fail(tbl schema.Table, src datasource.Source, err error) Result {
	res := Result{Table: tbl.Name, Source: src.Name()}
	return finish(&res, time.Now(), err)
}
