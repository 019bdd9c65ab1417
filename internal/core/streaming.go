package core

// streaming.go provides the reader chain placed in front of encoding/csv.
//
// Uploaded spreadsheets often start with a UTF-8 byte order mark and
// sometimes contain bytes from legacy encodings. Both are handled on the fly
// so the import never holds more than one read buffer of the file:
//
//   - CountingReader: raw bytes consumed, for the import result
//   - SkipBOM: drops a leading 0xEF 0xBB 0xBF
//   - UTF8Sanitizer: marks invalid UTF-8 bytes with U+FFFD and counts them
//
// Marked cells are rejected by row validation with an encoding reason, so a
// Latin-1 file is reported as such instead of failing format rules.

import (
	"bufio"
	"bytes"
	"io"
	"sync/atomic"
	"unicode/utf8"
)

var (
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
	replacementChar = []byte(string(utf8.RuneError))
)

// WrapForStreaming chains counting, BOM skipping and UTF-8 sanitizing around r.
// Read CSV from the returned sanitizer; the counter reports raw bytes consumed.
func WrapForStreaming(r io.Reader) (*UTF8Sanitizer, *CountingReader) {
	counter := NewCountingReader(r)
	return NewUTF8Sanitizer(SkipBOM(counter)), counter
}

// SkipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// UTF8Sanitizer replaces each byte that is not part of a valid UTF-8
// sequence with U+FFFD. Multi-byte runes split across reads are carried over,
// never mangled.
type UTF8Sanitizer struct {
	r        io.Reader
	carry    []byte // bytes read but not yet emitted
	chunk    [4096]byte
	err      error
	replaced atomic.Int64
}

// NewUTF8Sanitizer creates a sanitizing reader over r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r}
}

// Read implements io.Reader. p must have room for at least one full rune.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		n := s.drain(p)
		if n > 0 {
			return n, nil
		}
		if len(s.carry) > 0 && (s.err != nil || utf8.FullRune(s.carry)) {
			// A complete rune is pending but p is too small for it.
			return 0, io.ErrShortBuffer
		}
		if s.err != nil {
			return 0, s.err
		}

		m, err := s.r.Read(s.chunk[:])
		s.carry = append(s.carry, s.chunk[:m]...)
		if err != nil {
			s.err = err
		}
	}
}

// drain moves complete runes from carry into p. An incomplete trailing
// sequence stays in carry until more input arrives or the source ends.
func (s *UTF8Sanitizer) drain(p []byte) int {
	n := 0
	for len(s.carry) > 0 && n < len(p) {
		b := s.carry[0]
		if b < utf8.RuneSelf {
			p[n] = b
			n++
			s.carry = s.carry[1:]
			continue
		}

		if !utf8.FullRune(s.carry) && s.err == nil {
			break
		}

		r, size := utf8.DecodeRune(s.carry)
		if r == utf8.RuneError && size == 1 {
			if n+len(replacementChar) > len(p) {
				break
			}
			n += copy(p[n:], replacementChar)
			s.carry = s.carry[1:]
			s.replaced.Add(1)
			continue
		}
		if n+size > len(p) {
			break
		}
		copy(p[n:], s.carry[:size])
		n += size
		s.carry = s.carry[size:]
	}

	return n
}

// Replaced returns how many invalid bytes have been replaced so far.
func (s *UTF8Sanitizer) Replaced() int64 {
	return s.replaced.Load()
}

// CountingReader tracks bytes read from the underlying reader.
type CountingReader struct {
	r io.Reader
	n atomic.Int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (c *CountingReader) BytesRead() int64 {
	return c.n.Load()
}
