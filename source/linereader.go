package source

import (
	"bytes"
	"io"
)

// LineReader releases input only in whole newline-terminated lines. This
// matters when parsing a trace file that is still being written: the CSV
// reader never sees a partial final row. An unterminated tail stays buffered
// until its newline arrives, even across reads that end in an error.
type LineReader struct {
	src     io.Reader
	buf     []byte
	ready   int // prefix of buf ending at the last newline seen
	scratch [1024]byte
}

var _ io.Reader = (*LineReader)(nil)

// NewLineReader wraps r so that reads stop at the last complete line.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{src: r}
}

func (l *LineReader) Read(p []byte) (int, error) {
	for l.ready == 0 {
		n, err := l.src.Read(l.scratch[:])
		if n > 0 {
			l.buf = append(l.buf, l.scratch[:n]...)
			if idx := bytes.LastIndexByte(l.buf, '\n'); idx >= 0 {
				l.ready = idx + 1
			}
		}
		if err != nil {
			if l.ready > 0 {
				break
			}
			return 0, err
		}
	}
	n := copy(p, l.buf[:l.ready])
	l.buf = l.buf[:copy(l.buf, l.buf[n:])]
	l.ready -= n
	return n, nil
}

// Buffered reports how many bytes of an unterminated final line are being
// held back from the caller.
func (l *LineReader) Buffered() int {
	return len(l.buf) - l.ready
}
