// Copyright 2025 Martin Vik
// SPDX-License-Identifier: MIT

package exifedit

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// UnknownPrefix is used as prefix for unknown tags.
const UnknownPrefix = "UnknownTag_"

// Pointer tags link the primary directory chain to its sub-directories.
// They are synthesized while encoding and consumed while decoding; they
// never appear as tags in the metadata model.
const (
	exifIFDPointer    = 0x8769
	gpsIFDPointer     = 0x8825
	interopIFDPointer = 0xa005
)

// Source: https://exiftool.org/TagNames/EXIF.html
var tagNames = map[uint16]string{
	0x0100: "ImageWidth",
	0x0101: "ImageHeight",
	0x0102: "BitsPerSample",
	0x0103: "Compression",
	0x010e: "ImageDescription",
	0x010f: "Make",
	0x0110: "Model",
	0x0112: "Orientation",
	0x011a: "XResolution",
	0x011b: "YResolution",
	0x0128: "ResolutionUnit",
	0x0131: "Software",
	0x0132: "DateTime",
	0x013b: "Artist",
	0x0201: "ThumbnailOffset",
	0x0202: "ThumbnailLength",
	0x0213: "YCbCrPositioning",
	0x8298: "Copyright",
	0x829a: "ExposureTime",
	0x829d: "FNumber",
	0x8822: "ExposureProgram",
	0x8827: "ISOSpeedRatings",
	0x9000: "ExifVersion",
	0x9003: "DateTimeOriginal",
	0x9004: "DateTimeDigitized",
	0x9201: "ShutterSpeedValue",
	0x9202: "ApertureValue",
	0x9204: "ExposureBiasValue",
	0x9205: "MaxApertureValue",
	0x9209: "Flash",
	0x920a: "FocalLength",
	0x9286: "UserComment",
	0xa000: "FlashpixVersion",
	0xa001: "ColorSpace",
	0xa002: "PixelXDimension",
	0xa003: "PixelYDimension",
	0xa402: "ExposureMode",
	0xa403: "WhiteBalance",
	0xa406: "SceneCaptureType",
	0xa420: "ImageUniqueID",
	0x0000: "GPSVersionID",
	0x0001: "GPSLatitudeRef",
	0x0002: "GPSLatitude",
	0x0003: "GPSLongitudeRef",
	0x0004: "GPSLongitude",
	0x0005: "GPSAltitudeRef",
	0x0006: "GPSAltitude",
	0x0007: "GPSTimeStamp",
	0x001d: "GPSDateStamp",
}

// TagName returns the conventional name of the given tag code, or an
// UnknownPrefix name if the code is not in the table. Note that some codes
// are reused between the GPS directory and the others; the table favors
// the GPS names for the low codes.
func TagName(code uint16) string {
	if name, ok := tagNames[code]; ok {
		return name
	}
	return fmt.Sprintf("%s0x%04x", UnknownPrefix, code)
}

// KnownTagCodes returns the tag codes with a conventional name, sorted
// ascending.
func KnownTagCodes() []uint16 {
	codes := maps.Keys(tagNames)
	slices.Sort(codes)
	return codes
}
