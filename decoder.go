package sentrypipe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Policy controls how the pipeline treats lines that do not decode as JSON
// objects.
type Policy int

const (
	// PolicyTolerant drops malformed lines and keeps the stream going.
	// This is the default: one bad log line never interrupts the stream.
	PolicyTolerant Policy = iota

	// PolicyStrict terminates the stream on the first malformed line.
	PolicyStrict
)

// lineReader frames an input stream into newline-delimited lines. It reads
// through bufio.Reader.ReadBytes rather than a Scanner so line length is
// unbounded.
type lineReader struct {
	r    *bufio.Reader
	line int
	eof  bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next non-empty line without its trailing newline. A final
// unterminated fragment at stream end counts as a complete line. It returns
// io.EOF once the input is exhausted and wraps any underlying failure in
// ErrStreamRead.
func (lr *lineReader) next() ([]byte, int, error) {
	for {
		if lr.eof {
			return nil, lr.line, io.EOF
		}
		line, err := lr.r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, lr.line, fmt.Errorf("%w: %w", ErrStreamRead, err)
			}
			lr.eof = true
		}
		if len(line) > 0 {
			lr.line++
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		return trimmed, lr.line, nil
	}
}
