// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
)

// The PNG-specific transport encoding of the generic metadata byte stream
// follows the ImageMagick "Raw profile type" text layout:
//
//	\n
//	exif\n
//	<decimal byte length, right-aligned to 8 characters>\n
//	<lowercase hex, 72 characters per line>\n
//
// The pair encodeMetadataPNG/decodeMetadataPNG is bijective; other container
// formats supply their own wrapping of the same generic stream.

const profileHexLineLen = 72

func encodeMetadataPNG(generic []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("\nexif\n")
	fmt.Fprintf(&buf, "%8d\n", len(generic))

	const bytesPerLine = profileHexLineLen / 2
	for i, b := range generic {
		fmt.Fprintf(&buf, "%02x", b)
		if (i+1)%bytesPerLine == 0 && i+1 != len(generic) {
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')

	return buf.Bytes()
}

func decodeMetadataPNG(profile []byte) ([]byte, error) {
	rest, ok := bytes.CutPrefix(profile, []byte("\nexif\n"))
	if !ok {
		return nil, fmt.Errorf("malformed PNG profile: missing exif header line")
	}

	lengthLine, rest, ok := bytes.Cut(rest, []byte{'\n'})
	if !ok {
		return nil, fmt.Errorf("malformed PNG profile: missing length line")
	}
	declared, err := strconv.ParseUint(string(bytes.TrimSpace(lengthLine)), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed PNG profile: bad length line: %w", err)
	}

	hexed := make([]byte, 0, 2*declared)
	for _, b := range rest {
		if b == '\n' || b == '\r' || b == ' ' {
			continue
		}
		hexed = append(hexed, b)
	}

	generic := make([]byte, hex.DecodedLen(len(hexed)))
	if _, err := hex.Decode(generic, hexed); err != nil {
		return nil, fmt.Errorf("malformed PNG profile: %w", err)
	}
	if uint64(len(generic)) != declared {
		return nil, fmt.Errorf("malformed PNG profile: declared %d bytes, found %d", declared, len(generic))
	}

	return generic, nil
}
