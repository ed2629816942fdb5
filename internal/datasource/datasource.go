// Package datasource abstracts where a source table's bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens one input stream. Name identifies the stream in diagnostics.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
