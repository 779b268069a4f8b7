// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"encoding"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Rat is a rational number, the value form of the EXIF RATIONAL and
// SRATIONAL data types.
type Rat[T int32 | uint32] interface {
	Num() T
	Den() T
	Float64() float64

	// String returns the string representation of the rational number.
	// If the denominator is 1, the string will be the numerator only.
	String() string
}

var (
	_ encoding.TextUnmarshaler = (*rat[int32])(nil)
	_ encoding.TextMarshaler   = (*rat[int32])(nil)
	_ fmt.Formatter            = (*rat[int32])(nil)
)

// rat is a lightweight version of math/big.Rat.
type rat[T int32 | uint32] struct {
	num T
	den T
}

// NewRat returns a new Rat with the given numerator and denominator,
// normalized so that the greatest common divisor is removed and the
// denominator is positive.
func NewRat[T int32 | uint32](num, den T) (Rat[T], error) {
	if den == 0 {
		return nil, errors.New("denominator must be non-zero")
	}

	gcd := func(a, b T) T {
		for b != 0 {
			a, b = b, a%b
		}
		return a
	}
	d := gcd(num, den)
	if d != 1 && d != 0 {
		num, den = num/d, den/d
	}

	if den < 0 {
		num, den = -num, -den
	}

	return &rat[T]{num: num, den: den}, nil
}

// newRatRaw wraps numerator and denominator exactly as read from a file,
// without normalization, so that re-encoding reproduces the input bytes.
func newRatRaw[T int32 | uint32](num, den T) Rat[T] {
	return &rat[T]{num: num, den: den}
}

// Num returns the numerator of the rational number.
func (r *rat[T]) Num() T {
	return r.num
}

// Den returns the denominator of the rational number.
func (r *rat[T]) Den() T {
	return r.den
}

// Float64 returns the float64 representation of the rational number.
func (r *rat[T]) Float64() float64 {
	return float64(r.num) / float64(r.den)
}

// Equal reports whether two rational numbers have the same numerator and
// denominator. No cross-normalization is performed; 1/2 and 2/4 are not
// equal.
func (r *rat[T]) Equal(o *rat[T]) bool {
	if o == nil {
		return r == nil
	}
	return r.num == o.num && r.den == o.den
}

// String returns the string representation of the rational number.
// If the denominator is 1, the string will be the numerator only.
func (r *rat[T]) String() string {
	if r.den == 1 {
		return fmt.Sprintf("%d", r.num)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

func (r *rat[T]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'f', 'v', 'g', 'e':
		prec, ok := f.Precision()
		if !ok {
			prec = -1
		}
		if verb == 'v' {
			fmt.Fprint(f, r.String())
			return
		}
		fmt.Fprint(f, strconv.FormatFloat(r.Float64(), byte(verb), prec, 64))
	case 's':
		fmt.Fprint(f, r.String())
	default:
		fmt.Fprintf(f, "%%!%c(Rat=%s)", verb, r.String())
	}
}

func (r *rat[T]) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.Contains(s, "/") {
		num, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
		}
		r.num = T(num)
		r.den = 1
		return nil
	}
	if _, err := fmt.Sscanf(s, "%d/%d", &r.num, &r.den); err != nil {
		return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
	}
	return nil
}

func (r *rat[T]) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}

func trimBytesNulls(b []byte) []byte {
	var lo, hi int
	for lo = 0; lo < len(b) && b[lo] == 0; lo++ {
	}
	for hi = len(b) - 1; hi >= 0 && b[hi] == 0; hi-- {
	}
	if lo > hi {
		return nil
	}
	return b[lo : hi+1]
}
