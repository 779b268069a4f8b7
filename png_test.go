// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/mvik/exifedit"

	qt "github.com/frankban/quicktest"
)

var pngSig = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func pngChunk(name string, payload []byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	out = append(out, name...)
	out = append(out, payload...)
	crc := crc32.NewIEEE()
	crc.Write([]byte(name))
	crc.Write(payload)
	return binary.BigEndian.AppendUint32(out, crc.Sum32())
}

func makePNG(chunks ...[]byte) []byte {
	out := bytes.Clone(pngSig)
	for _, ch := range chunks {
		out = append(out, ch...)
	}
	return out
}

// basePNG returns a minimal valid PNG with no metadata.
func basePNG() []byte {
	return makePNG(
		pngChunk("IHDR", make([]byte, 13)),
		pngChunk("IDAT", []byte{0x08, 0x1d, 0x01, 0x02, 0x00}),
		pngChunk("IEND", nil),
	)
}

func TestParsePNG(t *testing.T) {
	c := qt.New(t)

	buf := basePNG()
	// Bytes after IEND are never inspected.
	buf = append(buf, []byte("trailing garbage")...)

	chunks, err := exifedit.ParsePNG(buf)
	c.Assert(err, qt.IsNil)
	c.Assert(chunks, qt.DeepEquals, []exifedit.PNGChunk{
		{Name: "IHDR", Length: 13},
		{Name: "IDAT", Length: 5},
		{Name: "IEND", Length: 0},
	})
}

func TestParsePNGBadSignature(t *testing.T) {
	c := qt.New(t)

	for i := 0; i < len(pngSig); i++ {
		buf := basePNG()
		buf[i] ^= 0x01
		_, err := exifedit.ParsePNG(buf)
		c.Assert(exifedit.IsInvalidFormat(err), qt.IsTrue, qt.Commentf("byte %d", i))
	}

	_, err := exifedit.ParsePNG(pngSig[:5])
	c.Assert(exifedit.IsInvalidFormat(err), qt.IsTrue)
}

func TestParsePNGChecksumMismatch(t *testing.T) {
	c := qt.New(t)

	buf := basePNG()
	// Flip one bit inside the IHDR payload.
	buf[len(pngSig)+8] ^= 0x01

	_, err := exifedit.ParsePNG(buf)
	c.Assert(exifedit.IsInvalidFormat(err), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `.*checksum mismatch in "IHDR" chunk`)
}

func TestParsePNGTruncated(t *testing.T) {
	c := qt.New(t)

	buf := basePNG()
	for _, cut := range []int{len(pngSig) + 3, len(pngSig) + 10, len(buf) - 2} {
		_, err := exifedit.ParsePNG(buf[:cut])
		c.Assert(err, qt.IsNotNil, qt.Commentf("cut: %d", cut))
		// Truncation is an I/O style failure, not a format violation.
		c.Assert(exifedit.IsInvalidFormat(err), qt.IsFalse, qt.Commentf("cut: %d", cut))
	}

	// A stream that simply never reaches IEND.
	buf = makePNG(pngChunk("IHDR", make([]byte, 13)))
	_, err := exifedit.ParsePNG(buf)
	c.Assert(err, qt.IsNotNil)
}

func TestParsePNGInvalidChunkName(t *testing.T) {
	c := qt.New(t)

	buf := makePNG(
		pngChunk("IHDR", make([]byte, 13)),
		pngChunk("ID1T", []byte{1, 2, 3}),
		pngChunk("IEND", nil),
	)
	_, err := exifedit.ParsePNG(buf)
	c.Assert(err, qt.ErrorMatches, `invalid PNG chunk name "ID1T"`)
	c.Assert(exifedit.IsInvalidFormat(err), qt.IsFalse)
}

func TestPNGReadMetadataAbsent(t *testing.T) {
	c := qt.New(t)

	_, err := exifedit.PNG.ReadMetadata(basePNG())
	c.Assert(errors.Is(err, exifedit.ErrNoMetadata), qt.IsTrue)

	// A zTXt chunk with a foreign keyword is not ours.
	buf := makePNG(
		pngChunk("IHDR", make([]byte, 13)),
		pngChunk("zTXt", []byte("Comment\x00\x00some compressed bytes")),
		pngChunk("IDAT", []byte{1, 2, 3}),
		pngChunk("IEND", nil),
	)
	_, err = exifedit.PNG.ReadMetadata(buf)
	c.Assert(errors.Is(err, exifedit.ErrNoMetadata), qt.IsTrue)
}

func TestPNGWriteReadRoundTrip(t *testing.T) {
	c := qt.New(t)

	m := newTestMetadata(c, exifedit.LittleEndian)

	out, err := exifedit.PNG.WriteMetadata(basePNG(), m)
	c.Assert(err, qt.IsNil)

	chunks, err := exifedit.ParsePNG(out)
	c.Assert(err, qt.IsNil)
	// The metadata chunk sits directly after IHDR.
	c.Assert(chunks[0].Name, qt.Equals, "IHDR")
	c.Assert(chunks[1].Name, qt.Equals, "zTXt")

	generic, err := exifedit.PNG.ReadMetadata(out)
	c.Assert(err, qt.IsNil)
	decoded, err := exifedit.DecodeMetadata(generic, exifedit.Options{})
	c.Assert(err, qt.IsNil)
	assertMetadataEqual(c, decoded, m)
}

func TestPNGWriteMetadataLengthField(t *testing.T) {
	c := qt.New(t)

	m := newTestMetadata(c, exifedit.BigEndian)
	out, err := exifedit.PNG.WriteMetadata(basePNG(), m)
	c.Assert(err, qt.IsNil)

	// The zTXt chunk starts right after the signature and the IHDR chunk.
	ztxtStart := len(pngSig) + 13 + 12
	c.Assert(string(out[ztxtStart+4:ztxtStart+8]), qt.Equals, "zTXt")

	// Its declared length must place the next chunk exactly at IDAT.
	declared := binary.BigEndian.Uint32(out[ztxtStart : ztxtStart+4])
	next := ztxtStart + int(declared) + 12
	c.Assert(string(out[next+4:next+8]), qt.Equals, "IDAT")
}

func TestPNGWriteMetadataReplaces(t *testing.T) {
	c := qt.New(t)

	m1 := newTestMetadata(c, exifedit.LittleEndian)

	m2 := exifedit.NewMetadata()
	m2.EnsureIFD(exifedit.GroupGeneric, 0).SetTag(
		mustTag(c, 0x010f, exifedit.GroupGeneric, exifedit.TypeASCII, "Fujifilm"))

	out, err := exifedit.PNG.WriteMetadata(basePNG(), m1)
	c.Assert(err, qt.IsNil)
	out, err = exifedit.PNG.WriteMetadata(out, m2)
	c.Assert(err, qt.IsNil)

	chunks, err := exifedit.ParsePNG(out)
	c.Assert(err, qt.IsNil)
	var nZTXT int
	for _, chunk := range chunks {
		if chunk.Name == "zTXt" {
			nZTXT++
		}
	}
	c.Assert(nZTXT, qt.Equals, 1)

	generic, err := exifedit.PNG.ReadMetadata(out)
	c.Assert(err, qt.IsNil)
	decoded, err := exifedit.DecodeMetadata(generic, exifedit.Options{})
	c.Assert(err, qt.IsNil)
	assertMetadataEqual(c, decoded, m2)
}

func TestPNGClearMetadata(t *testing.T) {
	c := qt.New(t)

	original := basePNG()
	m := newTestMetadata(c, exifedit.LittleEndian)

	out, err := exifedit.PNG.WriteMetadata(original, m)
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(out, original), qt.IsFalse)

	cleared, err := exifedit.PNG.ClearMetadata(out)
	c.Assert(err, qt.IsNil)
	c.Assert(cleared, qt.DeepEquals, original)

	// Clearing is idempotent.
	cleared2, err := exifedit.PNG.ClearMetadata(cleared)
	c.Assert(err, qt.IsNil)
	c.Assert(cleared2, qt.DeepEquals, original)
}

func TestPNGClearMetadataPreservesForeignZTXT(t *testing.T) {
	c := qt.New(t)

	foreign := pngChunk("zTXt", []byte("Comment\x00\x00some compressed bytes"))
	buf := makePNG(
		pngChunk("IHDR", make([]byte, 13)),
		foreign,
		pngChunk("IDAT", []byte{1, 2, 3}),
		pngChunk("IEND", nil),
	)

	m := newTestMetadata(c, exifedit.LittleEndian)
	out, err := exifedit.PNG.WriteMetadata(buf, m)
	c.Assert(err, qt.IsNil)

	cleared, err := exifedit.PNG.ClearMetadata(out)
	c.Assert(err, qt.IsNil)
	c.Assert(cleared, qt.DeepEquals, buf)
	c.Assert(bytes.Contains(cleared, foreign), qt.IsTrue)
}

func TestPNGClearMetadataAdjacentChunks(t *testing.T) {
	c := qt.New(t)

	// Two Exif chunks back to back; both must go in one pass.
	m := newTestMetadata(c, exifedit.LittleEndian)
	out, err := exifedit.PNG.WriteMetadata(basePNG(), m)
	c.Assert(err, qt.IsNil)

	// Duplicate the written zTXt chunk manually.
	chunks, err := exifedit.ParsePNG(out)
	c.Assert(err, qt.IsNil)
	ztxtStart := len(pngSig) + int(chunks[0].Length) + 12
	ztxtEnd := ztxtStart + int(chunks[1].Length) + 12
	dup := bytes.Clone(out[ztxtStart:ztxtEnd])
	withDup := append(bytes.Clone(out[:ztxtEnd]), append(dup, out[ztxtEnd:]...)...)

	cleared, err := exifedit.PNG.ClearMetadata(withDup)
	c.Assert(err, qt.IsNil)
	c.Assert(cleared, qt.DeepEquals, basePNG())
}

func FuzzParsePNG(f *testing.F) {
	f.Add([]byte{})
	f.Add(basePNG())
	f.Add(makePNG(pngChunk("IHDR", make([]byte, 13))))
	f.Add(makePNG(pngChunk("IHDR", make([]byte, 13)), pngChunk("zTXt", []byte("Raw profile type exif\x00\x00junk")), pngChunk("IEND", nil)))
	truncated := basePNG()
	f.Add(truncated[:len(truncated)-3])

	f.Fuzz(func(t *testing.T, buf []byte) {
		chunks, err := exifedit.ParsePNG(buf)
		if err != nil {
			return
		}
		if len(chunks) == 0 || chunks[len(chunks)-1].Name != "IEND" {
			t.Fatalf("parse succeeded without reaching IEND: %v", chunks)
		}
		// Anything that parses must also survive a metadata read attempt.
		_, _ = exifedit.PNG.ReadMetadata(buf)
	})
}
