// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"slices"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestInsertAt(t *testing.T) {
	c := qt.New(t)

	buf := []byte("abcdef")
	c.Assert(string(insertAt(slices.Clone(buf), 0, []byte("XY"))), qt.Equals, "XYabcdef")
	c.Assert(string(insertAt(slices.Clone(buf), 3, []byte("XY"))), qt.Equals, "abcXYdef")
	c.Assert(string(insertAt(slices.Clone(buf), 6, []byte("XY"))), qt.Equals, "abcdefXY")
	c.Assert(string(insertAt(slices.Clone(buf), 3, nil)), qt.Equals, "abcdef")
}

func TestRemoveRange(t *testing.T) {
	c := qt.New(t)

	buf := []byte("abcdef")
	c.Assert(string(removeRange(slices.Clone(buf), 0, 2)), qt.Equals, "cdef")
	c.Assert(string(removeRange(slices.Clone(buf), 2, 4)), qt.Equals, "abef")
	c.Assert(string(removeRange(slices.Clone(buf), 4, 6)), qt.Equals, "abcd")
	c.Assert(string(removeRange(slices.Clone(buf), 3, 3)), qt.Equals, "abcdef")
}

func TestSpliceRoundTrip(t *testing.T) {
	c := qt.New(t)

	buf := []byte("abcdef")
	out := insertAt(slices.Clone(buf), 2, []byte("12345"))
	out = removeRange(out, 2, 7)
	c.Assert(string(out), qt.Equals, "abcdef")
}
