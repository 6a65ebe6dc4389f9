package source

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func expectToRead(t *testing.T, reader io.Reader, expected []byte) {
	t.Helper()
	var scratch [1024]byte
	n, err := reader.Read(scratch[:])
	if err != nil {
		t.Errorf("expected read to succeed, got: %v", err)
	} else if !bytes.Equal(scratch[:n], expected) {
		t.Errorf("expected read to yield %q, got: %q", expected, scratch[:n])
	}
}

func expectReadEOF(t *testing.T, reader io.Reader) {
	t.Helper()
	var scratch [1024]byte
	n, err := reader.Read(scratch[:])
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected read to give EOF, got: %v", err)
	} else if n != 0 {
		t.Errorf("expected read to read nothing, read %q", scratch[:n])
	}
}

func TestLineReader(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("0, 2.3\n")
	buf.WriteString("1, 1.9\n")
	l := NewLineReader(buf)
	expectToRead(t, l, []byte("0, 2.3\n1, 1.9\n"))
	// A partially written row must stay invisible until its newline lands.
	buf.WriteString("2, 1.")
	expectReadEOF(t, l)
	if got := l.Buffered(); got != len("2, 1.") {
		t.Errorf("expected %d held-back bytes, got %d", len("2, 1."), got)
	}
	buf.WriteString("7\n")
	expectToRead(t, l, []byte("2, 1.7\n"))
	buf.WriteString("3")
	expectReadEOF(t, l)
	buf.WriteString(", 1")
	expectReadEOF(t, l)
	buf.WriteString(".5\n4, 1.4")
	expectToRead(t, l, []byte("3, 1.5\n"))
	if got := l.Buffered(); got != len("4, 1.4") {
		t.Errorf("expected %d held-back bytes, got %d", len("4, 1.4"), got)
	}
}

func TestLineReaderSmallCallerBuffer(t *testing.T) {
	l := NewLineReader(bytes.NewBufferString("10, 0.5\n11, 0.4\n"))
	var tiny [10]byte
	n, err := l.Read(tiny[:])
	if err != nil {
		t.Fatalf("expected read to succeed, got: %v", err)
	}
	if want := "10, 0.5\n11"; string(tiny[:n]) != want {
		t.Errorf("expected read to yield %q, got: %q", want, tiny[:n])
	}
	// The remainder of the released data survives the undersized read.
	n, err = l.Read(tiny[:])
	if err != nil {
		t.Fatalf("expected read to succeed, got: %v", err)
	}
	if want := ", 0.4\n"; string(tiny[:n]) != want {
		t.Errorf("expected read to yield %q, got: %q", want, tiny[:n])
	}
}
