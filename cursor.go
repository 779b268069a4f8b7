// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"encoding/binary"
	"fmt"
)

// cursor provides bounded reads over a byte buffer. PNG chunk fields are
// big-endian throughout, so the helpers are fixed to that order. Every read
// past the end reports a truncation error; no read ever panics.
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) remaining() int {
	return len(c.b) - c.pos
}

// readN returns the next n bytes as a view into the buffer and advances the
// cursor. The view stays valid only until the buffer is spliced.
func (c *cursor) readN(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("exifedit: unexpected end of data at offset %d", c.pos)
	}
	b := c.b[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) read4() (uint32, error) {
	b, err := c.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cursor) skip(n int) error {
	_, err := c.readN(n)
	return err
}
