// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"slices"
)

// pngSignature is the fixed 8-byte magic sequence opening every PNG file.
var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// rawProfileTypeExif opens the zTXt payload that carries Exif metadata:
// the keyword, its NUL terminator and the zero compression-method byte.
var rawProfileTypeExif = []byte("Raw profile type exif\x00\x00")

const (
	chunkTypeZTXT = "zTXt"
	chunkTypeIEND = "IEND"

	// chunkOverhead is the fixed per-chunk cost of the length, type and CRC
	// fields surrounding the payload.
	chunkOverhead = 12
)

// PNGChunk describes one parsed chunk: its 4-character ASCII type name and
// its payload length. The payload bytes are not retained; they are re-read
// from the source buffer by position when needed.
type PNGChunk struct {
	Name   string
	Length uint32
}

// PNG reads and writes Exif metadata embedded in PNG buffers. The metadata
// travels in a zTXt chunk with the "Raw profile type exif" keyword, placed
// directly after the IHDR chunk.
var PNG Codec = pngCodec{}

type pngCodec struct{}

// checkSignature verifies the PNG magic and returns a cursor positioned
// past it.
func checkSignature(buf []byte) (*cursor, error) {
	if len(buf) < len(pngSignature) || !bytes.Equal(buf[:len(pngSignature)], pngSignature) {
		return nil, newInvalidFormatErrorf("wrong PNG signature")
	}
	return &cursor{b: buf, pos: len(pngSignature)}, nil
}

// nextChunkDescriptor reads one chunk at the cursor: length, type name,
// payload and CRC trailer. The CRC-32 (ISO-HDLC polynomial) is computed
// over the type name and payload and must match the trailer exactly.
func nextChunkDescriptor(c *cursor) (PNGChunk, error) {
	start, err := c.readN(8)
	if err != nil {
		return PNGChunk{}, fmt.Errorf("could not read start of chunk: %w", err)
	}
	length := binary.BigEndian.Uint32(start[:4])
	name := start[4:8]

	payload, err := c.readN(int(length))
	if err != nil {
		return PNGChunk{}, fmt.Errorf("could not read chunk data: %w", err)
	}
	trailer, err := c.read4()
	if err != nil {
		return PNGChunk{}, fmt.Errorf("could not read chunk CRC: %w", err)
	}

	crc := crc32.NewIEEE()
	crc.Write(name)
	crc.Write(payload)
	if crc.Sum32() != trailer {
		return PNGChunk{}, newInvalidFormatErrorf("checksum mismatch in %q chunk", name)
	}

	if !validChunkName(name) {
		return PNGChunk{}, fmt.Errorf("invalid PNG chunk name %q", name)
	}

	return PNGChunk{Name: string(name), Length: length}, nil
}

// validChunkName reports whether all four bytes of the type name are ASCII
// letters, per the PNG chunk naming grammar.
func validChunkName(name []byte) bool {
	for _, b := range name {
		lower := b | 0x20
		if lower < 'a' || lower > 'z' {
			return false
		}
	}
	return true
}

// ParsePNG validates buf as a PNG byte stream and returns the descriptors
// of its chunks, up to and including the first IEND chunk. Bytes after IEND
// are never inspected. The first failure aborts the parse.
func ParsePNG(buf []byte) ([]PNGChunk, error) {
	c, err := checkSignature(buf)
	if err != nil {
		return nil, err
	}

	var chunks []PNGChunk
	for {
		chunk, err := nextChunkDescriptor(c)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)

		if chunk.Name == chunkTypeIEND {
			return chunks, nil
		}
	}
}

// ClearMetadata removes every Exif-carrying zTXt chunk. zTXt chunks with a
// different keyword are preserved, as is every other chunk. The buffer is
// fully parsed and validated before any byte is touched.
func (pngCodec) ClearMetadata(buf []byte) ([]byte, error) {
	chunks, err := ParsePNG(buf)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(buf)
	c := &cursor{b: out, pos: len(pngSignature)}

	for _, chunk := range chunks {
		chunkStart := c.pos

		if chunk.Name != chunkTypeZTXT {
			if err := c.skip(int(chunk.Length) + chunkOverhead); err != nil {
				return nil, fmt.Errorf("could not seek past %q chunk: %w", chunk.Name, err)
			}
			continue
		}

		// Skip chunk length and type (4+4 bytes).
		if err := c.skip(8); err != nil {
			return nil, fmt.Errorf("could not read start of chunk: %w", err)
		}
		payload, err := c.readN(int(chunk.Length))
		if err != nil {
			return nil, fmt.Errorf("could not read chunk data: %w", err)
		}
		match := bytes.HasPrefix(payload, rawProfileTypeExif)

		// The CRC was already validated by ParsePNG.
		if err := c.skip(4); err != nil {
			return nil, fmt.Errorf("could not read chunk CRC: %w", err)
		}

		if !match {
			continue
		}

		out = removeRange(out, chunkStart, c.pos)
		c.b = out
		c.pos = chunkStart
	}

	return out, nil
}

// ReadMetadata returns the generic metadata byte stream carried by the
// Exif zTXt chunk, decompressed and unwrapped from its PNG profile
// encoding. It returns ErrNoMetadata when no such chunk exists.
func (pngCodec) ReadMetadata(buf []byte) ([]byte, error) {
	chunks, err := ParsePNG(buf)
	if err != nil {
		return nil, err
	}

	c, err := checkSignature(buf)
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		if chunk.Name != chunkTypeZTXT {
			if err := c.skip(int(chunk.Length) + chunkOverhead); err != nil {
				return nil, fmt.Errorf("could not seek past %q chunk: %w", chunk.Name, err)
			}
			continue
		}

		if err := c.skip(8); err != nil {
			return nil, fmt.Errorf("could not read start of chunk: %w", err)
		}
		// No need to re-verify via CRC; ParsePNG already did.
		payload, err := c.readN(int(chunk.Length))
		if err != nil {
			return nil, fmt.Errorf("could not read chunk data: %w", err)
		}

		if !bytes.HasPrefix(payload, rawProfileTypeExif) {
			if err := c.skip(4); err != nil {
				return nil, fmt.Errorf("could not read chunk CRC: %w", err)
			}
			continue
		}

		inflated, err := zlibInflate(payload[len(rawProfileTypeExif):])
		if err != nil {
			return nil, fmt.Errorf("could not inflate compressed chunk data: %w", err)
		}
		return decodeMetadataPNG(inflated)
	}

	return nil, ErrNoMetadata
}

// WriteMetadata embeds m directly after the IHDR chunk, replacing any Exif
// zTXt chunk already present so that writing never duplicates metadata.
func (p pngCodec) WriteMetadata(buf []byte, m *Metadata) ([]byte, error) {
	// Clearing also parses the PNG and checks its validity, so the buffer
	// is known to be a usable PNG from here on.
	out, err := p.ClearMetadata(buf)
	if err != nil {
		return nil, err
	}

	chunks, err := ParsePNG(out)
	if err != nil {
		return nil, err
	}
	ihdrLength := chunks[0].Length

	generic, err := m.Encode()
	if err != nil {
		return nil, err
	}
	compressed, err := zlibDeflate(encodeMetadataPNG(generic))
	if err != nil {
		return nil, err
	}

	chunkData := make([]byte, 0, 4+len(rawProfileTypeExif)+len(compressed)+4)
	chunkData = append(chunkData, chunkTypeZTXT...)
	chunkData = append(chunkData, rawProfileTypeExif...)
	chunkData = append(chunkData, compressed...)
	chunkData = binary.BigEndian.AppendUint32(chunkData, crc32.ChecksumIEEE(chunkData))

	// The length field counts the payload only: the assembled chunk minus
	// the 4 type-name bytes and the 4 CRC bytes.
	var lengthField [4]byte
	binary.BigEndian.PutUint32(lengthField[:], uint32(len(chunkData)-8))

	insertPos := len(pngSignature) + int(ihdrLength) + chunkOverhead
	out = insertAt(out, insertPos, lengthField[:])
	out = insertAt(out, insertPos+4, chunkData)

	return out, nil
}

func zlibDeflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zlibInflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
