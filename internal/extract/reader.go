package extract

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewReader wraps r so that a leading UTF-8 BOM is dropped and invalid
// UTF-8 bytes are replaced with '?'. Memory use is a fixed buffer
// regardless of input size.
func NewReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &sanitizer{src: br}
}

// sanitizer replaces invalid UTF-8 as it reads. A multi-byte sequence
// split across two reads is carried over until the rest of it arrives.
type sanitizer struct {
	src     io.Reader
	buf     [4096]byte
	carry   []byte
	carried [utf8.UTFMax]byte
	out     []byte
	err     error
}

func (s *sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *sanitizer) fill() {
	off := copy(s.buf[:], s.carry)
	n, err := s.src.Read(s.buf[off:])
	n += off
	s.err = err

	keep := n
	if err == nil {
		keep -= partialTail(s.buf[:n])
	}
	s.carry = append(s.carried[:0], s.buf[keep:n]...)
	s.out = s.buf[:scrub(s.buf[:keep])]
}

// scrub rewrites b so every invalid byte becomes '?' and returns the new length.
func scrub(b []byte) int {
	if utf8.Valid(b) {
		return len(b)
	}
	w := 0
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			b[w] = '?'
			w++
			i++
			continue
		}
		w += copy(b[w:], b[i:i+size])
		i += size
	}
	return w
}

// partialTail returns how many trailing bytes of b start a multi-byte
// sequence that is not yet complete.
func partialTail(b []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if c >= utf8.RuneSelf && !utf8.FullRune(b[len(b)-i:]) {
			return i
		}
		return 0
	}
	return 0
}
