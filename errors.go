// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"errors"
	"fmt"
)

// ErrNoMetadata is returned by Codec.ReadMetadata when the container parses
// successfully but carries no embedded metadata. It is a normal negative
// result, not a sign of corruption.
var ErrNoMetadata = errors.New("exifedit: no metadata found")

// invalidFormatError marks failures where the container itself is invalid:
// a wrong signature or a checksum mismatch. Truncated streams and other
// structural read failures are reported as plain errors.
type invalidFormatError struct {
	err error
}

func (e *invalidFormatError) Error() string {
	return "exifedit: invalid format: " + e.err.Error()
}

func (e *invalidFormatError) Unwrap() error {
	return e.err
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return &invalidFormatError{err: fmt.Errorf(format, args...)}
}

// IsInvalidFormat reports whether err signals a container that failed
// signature or checksum validation.
func IsInvalidFormat(err error) bool {
	var ife *invalidFormatError
	return errors.As(err, &ife)
}
