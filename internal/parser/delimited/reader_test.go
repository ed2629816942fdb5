package delimited

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

// readAll drains r and returns every token slice plus the line number seen
// with each.
func readAll(t *testing.T, r *Reader) ([][]string, []int) {
	t.Helper()

	var rows [][]string
	var lines []int
	for {
		tok, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, lines
		}
		require.NoError(t, err)
		rows = append(rows, tok)
		lines = append(lines, r.Line())
	}
}

func TestReader(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		input     string
		opt       Options
		wantRows  [][]string
		wantLines []int
	}{
		{
			name:      "header_skipped",
			input:     "RegionID,RegionDescription\n1,Eastern\n2,Western\n",
			opt:       Options{HasHeader: true},
			wantRows:  [][]string{{"1", "Eastern"}, {"2", "Western"}},
			wantLines: []int{2, 3},
		},
		{
			name:      "semicolon_delimiter",
			input:     "CategoryID;CategoryName;Description;Picture\n1;Beverages;Soft drinks, coffees;pic\n",
			opt:       Options{Comma: ';', HasHeader: true},
			wantRows:  [][]string{{"1", "Beverages", "Soft drinks, coffees", "pic"}},
			wantLines: []int{2},
		},
		{
			name:      "crlf_and_surrounding_space_trimmed",
			input:     "h\r\n  1,a  \r\n2,b\r\n",
			opt:       Options{HasHeader: true},
			wantRows:  [][]string{{"1", "a"}, {"2", "b"}},
			wantLines: []int{2, 3},
		},
		{
			name:      "blank_lines_skipped",
			input:     "h\n1,a\n\n   \n2,b\n\n",
			opt:       Options{HasHeader: true},
			wantRows:  [][]string{{"1", "a"}, {"2", "b"}},
			wantLines: []int{2, 5},
		},
		{
			name:      "no_trailing_newline",
			input:     "h\n1,a",
			opt:       Options{HasHeader: true},
			wantRows:  [][]string{{"1", "a"}},
			wantLines: []int{2},
		},
		{
			name:      "quotes_are_not_special",
			input:     "h\n1,\"a,b\"\n",
			opt:       Options{HasHeader: true},
			wantRows:  [][]string{{"1", "\"a", "b\""}},
			wantLines: []int{2},
		},
		{
			name:      "bom_stripped",
			input:     "\uFEFFRegionID,RegionDescription\n1,Eastern\n",
			opt:       Options{},
			wantRows:  [][]string{{"RegionID", "RegionDescription"}, {"1", "Eastern"}},
			wantLines: []int{1, 2},
		},
		{
			name:     "header_only",
			input:    "RegionID,RegionDescription\n",
			opt:      Options{HasHeader: true},
			wantRows: nil,
		},
		{
			name:     "empty_input_without_header",
			input:    "",
			opt:      Options{},
			wantRows: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rows, lines := readAll(t, NewReader(strings.NewReader(tc.input), tc.opt))
			assert.Equal(t, tc.wantRows, rows)
			if tc.wantLines != nil {
				assert.Equal(t, tc.wantLines, lines)
			}
		})
	}
}

func TestReader_KeepBOM(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("\uFEFFa,b\n"), Options{KeepBOM: true})
	tok, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "\uFEFFa", tok[0])
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReader_PropagatesReadErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk gone")
	r := NewReader(failingReader{err: boom}, Options{HasHeader: true, KeepBOM: true})
	_, err := r.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestReader_EmptyInputHasNoHeader(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader(""), Options{HasHeader: true})
	_, err := r.Read()
	assert.ErrorIs(t, err, ErrNoHeader)
	assert.Equal(t, 0, r.Line())
}

func TestReader_InvalidUTF8(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		opt   Options
	}{
		{name: "plain", input: "h\n1,Eastern\n2,West\xffern\n3,Northern\n", opt: Options{HasHeader: true}},
		{name: "after_bom", input: "\uFEFFh\n1,Eastern\n2,West\xffern\n", opt: Options{HasHeader: true}},
		{name: "keep_bom", input: "h\n1,Eastern\n2,West\xffern\n", opt: Options{HasHeader: true, KeepBOM: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewReader(strings.NewReader(tc.input), tc.opt)
			tok, err := r.Read()
			require.NoError(t, err)
			assert.Equal(t, []string{"1", "Eastern"}, tok)

			_, err = r.Read()
			require.ErrorIs(t, err, encoding.ErrInvalidUTF8)
			assert.Equal(t, 2, r.Line(), "line of the last good row")
		})
	}
}
