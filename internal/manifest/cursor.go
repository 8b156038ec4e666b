package manifest

import (
	"fmt"

	"fortio.org/safecast"
)

// cursor is a byte position inside a type expression.
type cursor struct {
	src   string
	off   uint32
	limit uint32
}

func newCursor(src string) cursor {
	limit, err := safecast.Conv[uint32](len(src))
	if err != nil {
		panic(fmt.Errorf("type expression length overflow: %w", err))
	}
	return cursor{src: src, limit: limit}
}

func (c *cursor) eof() bool {
	return c.off >= c.limit
}

// peek returns the current byte, or 0 at the end.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

// peek2 returns the current and next byte.
func (c *cursor) peek2() (b0, b1 byte, ok bool) {
	if c.off+1 >= c.limit {
		return 0, 0, false
	}
	return c.src[c.off], c.src[c.off+1], true
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

// eat consumes the next byte if it is b.
func (c *cursor) eat(b byte) bool {
	if !c.eof() && c.src[c.off] == b {
		c.off++
		return true
	}
	return false
}

type mark uint32

func (c *cursor) mark() mark { return mark(c.off) }

// textFrom returns what was consumed since m.
func (c *cursor) textFrom(m mark) string {
	return c.src[m:c.off]
}

func (c *cursor) skipSpace() {
	for !c.eof() {
		switch c.peek() {
		case ' ', '\t', '\n', '\r':
			c.off++
		default:
			return
		}
	}
}
