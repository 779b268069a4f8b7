// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit_test

import (
	"testing"

	"github.com/mvik/exifedit"
)

func FuzzDecodeMetadata(f *testing.F) {
	m := exifedit.NewMetadata()
	tag, err := exifedit.NewTag(0x010f, exifedit.GroupGeneric, exifedit.TypeASCII, "Canon")
	if err != nil {
		f.Fatal(err)
	}
	m.EnsureIFD(exifedit.GroupGeneric, 0).SetTag(tag)
	seed, err := m.Encode()
	if err != nil {
		f.Fatal(err)
	}

	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte("Exif\x00\x00II\x2a\x00\x08\x00\x00\x00"))
	f.Add([]byte("Exif\x00\x00MM\x00\x2a\x00\x00\x00\x08\x00\x00"))

	f.Fuzz(func(t *testing.T, b []byte) {
		decoded, err := exifedit.DecodeMetadata(b, exifedit.Options{
			LimitNumTags: 100,
			LimitTagSize: 1000,
		})
		if err != nil {
			return
		}
		// Whatever decodes must also encode.
		if _, err := decoded.Encode(); err != nil {
			t.Fatal(err)
		}
	})
}
