// Package docwriter serializes document sets as newline-delimited JSON.
package docwriter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/zeebo/xxh3"

	"denorm/internal/record"
)

const writeBufSize = 256 * 1024

// Summary describes one written document file.
type Summary struct {
	Path     string
	Docs     int
	Bytes    int64
	Checksum uint64 // xxh3-64 of the file content
	Elapsed  time.Duration
}

// ChecksumHex formats Checksum the way it is logged.
func (s Summary) ChecksumHex() string {
	return fmt.Sprintf("%016x", s.Checksum)
}

// countingWriter tracks bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Encode writes each document of docs to w as compact JSON followed by '\n',
// in table order. HTML characters are not escaped. It returns the number of
// documents written.
func Encode(w io.Writer, docs *record.Table) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	n := 0
	for key, doc := range docs.All() {
		buf.Reset()
		if err := enc.Encode(doc); err != nil {
			return n, fmt.Errorf("encode document %s: %w", key, err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return n, fmt.Errorf("write document %s: %w", key, err)
		}
		n++
	}
	return n, nil
}

// WriteFile creates or truncates path and writes docs into it. Failures are
// logged and returned; the file handle is closed on every path.
func WriteFile(path string, docs *record.Table) (sum Summary, err error) {
	start := time.Now()
	sum.Path = path
	defer func() {
		sum.Elapsed = time.Since(start)
		if err != nil {
			log.Printf("docwriter: unable to write %s: %v", path, err)
			return
		}
		log.Printf("docwriter: wrote %s docs=%d bytes=%d xxh3=%s elapsed=%s",
			path, sum.Docs, sum.Bytes, sum.ChecksumHex(), sum.Elapsed)
	}()

	f, err := os.Create(path)
	if err != nil {
		return sum, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	h := xxh3.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	bw := bufio.NewWriterSize(cw, writeBufSize)

	sum.Docs, err = Encode(bw, docs)
	if err != nil {
		return sum, err
	}
	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("flush %s: %w", path, err)
	}
	sum.Bytes = cw.n
	sum.Checksum = h.Sum64()
	return sum, nil
}
