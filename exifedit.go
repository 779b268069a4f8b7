// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

// Package exifedit reads and writes EXIF metadata embedded in image
// container files without decoding the image itself.
//
// The package has two layers: a container-agnostic metadata model (a tree
// of image file directories holding typed tags, see Metadata) and per-format
// codecs that know how to locate, validate and splice the byte region of a
// container that carries the metadata. PNG is the format implemented here;
// other formats plug in through the Codec interface.
package exifedit

// Codec locates, extracts and replaces the metadata region of one container
// format, given the generic byte stream produced by Metadata.Encode.
//
// All methods operate on an in-memory buffer owned by the caller; opening
// and saving files is the caller's responsibility. The mutating methods
// return a new buffer and never modify their input.
type Codec interface {
	// ReadMetadata returns the generic metadata byte stream embedded in buf.
	// It returns ErrNoMetadata if the container is valid but carries none.
	ReadMetadata(buf []byte) ([]byte, error)

	// ClearMetadata returns a copy of buf with every embedded metadata
	// region removed. All other bytes are preserved untouched.
	ClearMetadata(buf []byte) ([]byte, error)

	// WriteMetadata returns a copy of buf with m embedded, replacing any
	// metadata already present.
	WriteMetadata(buf []byte, m *Metadata) ([]byte, error)
}

// Options contains the options for DecodeMetadata.
type Options struct {
	// LimitNumTags is the maximum number of tags to read.
	// Default value is 5000.
	LimitNumTags uint32

	// LimitTagSize is the maximum size in bytes of a tag value to read.
	// Tag values larger than this will be skipped.
	// Default value is 10000.
	LimitTagSize uint32

	// Warnf will be called for each non-fatal anomaly found while decoding,
	// e.g. a tag with an unknown data type.
	Warnf func(string, ...any)
}

func (o Options) withDefaults() Options {
	const (
		defaultLimitNumTags = 5000
		defaultLimitTagSize = 10000
	)
	if o.LimitNumTags == 0 {
		o.LimitNumTags = defaultLimitNumTags
	}
	if o.LimitTagSize == 0 {
		o.LimitTagSize = defaultLimitTagSize
	}
	if o.Warnf == nil {
		o.Warnf = func(string, ...any) {}
	}
	return o
}
