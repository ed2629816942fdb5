// Package delimited reads line-oriented, delimiter-separated text where a
// field can never contain the delimiter or a line break. Lines are split
// verbatim: there is no quoting or escaping, unlike encoding/csv.
package delimited

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrNoHeader is returned when a reader expecting a header line finds no
// input at all.
var ErrNoHeader = errors.New("missing header line")

// Options configures a Reader. The zero value reads comma-separated lines
// without a header.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// HasHeader skips the first line of the input.
	HasHeader bool

	// KeepBOM disables stripping of a leading byte order mark. Input is
	// checked for valid UTF-8 either way.
	KeepBOM bool
}

// Reader yields the tokens of each non-blank data line.
type Reader struct {
	br     *bufio.Reader
	sep    string
	header bool
	line   int
	done   bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opt Options) *Reader {
	r = strictUTF8(r, opt.KeepBOM)
	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}
	return &Reader{
		br:     bufio.NewReaderSize(r, 64*1024),
		sep:    string(comma),
		header: opt.HasHeader,
	}
}

// Line returns the 1-based physical line number of the last line read.
func (r *Reader) Line() int { return r.line }

// Read returns the tokens of the next data line. Each line is trimmed of
// surrounding whitespace before it is split; blank lines are skipped. At the
// end of input Read returns io.EOF, or ErrNoHeader when a header was expected
// and the input was empty. Invalid UTF-8 fails the read with an error wrapping
// encoding.ErrInvalidUTF8.
func (r *Reader) Read() ([]string, error) {
	for {
		s, err := r.next()
		if errors.Is(err, io.EOF) && r.header && r.line == 0 {
			return nil, ErrNoHeader
		}
		if err != nil {
			return nil, err
		}
		if r.header {
			r.header = false
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		return strings.Split(s, r.sep), nil
	}
}

// next reads one physical line without its terminator. On a read failure
// Line still reports the last good line.
func (r *Reader) next() (string, error) {
	if r.done {
		return "", io.EOF
	}
	s, err := r.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		r.done = true
		if s == "" {
			return "", io.EOF
		}
	}
	r.line++
	return strings.TrimRight(s, "\r\n"), nil
}
