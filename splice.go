// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import "slices"

// Splice primitives over a growable byte buffer. Both shift every byte
// after the edited range, so any offset computed before a splice is invalid
// afterwards; callers recompute positions in a single running pass instead
// of retaining offsets across splices.

// insertAt returns buf with data inserted at pos. Bytes before pos keep
// their position, bytes at and after pos shift forward by len(data).
// pos must be in [0, len(buf)].
func insertAt(buf []byte, pos int, data []byte) []byte {
	return slices.Insert(buf, pos, data...)
}

// removeRange returns buf with the range [start, end) excised. Bytes before
// start keep their position, bytes at and after end shift back by
// end-start. 0 <= start <= end <= len(buf) must hold.
func removeRange(buf []byte, start, end int) []byte {
	return slices.Delete(buf, start, end)
}
