package delimited

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// strictUTF8 fails the read with encoding.ErrInvalidUTF8 at the first byte
// that is not valid UTF-8 instead of substituting U+FFFD. Unless keepBOM is
// set, a leading UTF-8 byte order mark is removed.
func strictUTF8(r io.Reader, keepBOM bool) io.Reader {
	if keepBOM {
		return transform.NewReader(r, encoding.UTF8Validator)
	}
	return transform.NewReader(r, transform.Chain(encoding.UTF8Validator, unicode.UTF8BOM.NewDecoder()))
}
