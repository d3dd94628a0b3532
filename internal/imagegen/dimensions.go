package imagegen

import (
	"bytes"
	"encoding/binary"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

var (
	jpegMagic   = []byte{0xFF, 0xD8}
	pngMagic    = []byte{0x89, 'P', 'N', 'G'}
	riffMagic   = []byte("RIFF")
	webpMagic   = []byte("WEBP")
	vp8Lossy    = []byte("VP8 ")
	vp8Lossless = []byte("VP8L")
)

// Dimensions recovers the pixel size encoded in a JPEG, PNG or WebP header
// without decoding the image. ok is false when the format is not recognised or
// the buffer is too short; callers fall back to a default canvas in that case.
func Dimensions(data []byte) (width, height int, ok bool) {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return jpegDimensions(data)
	case bytes.HasPrefix(data, pngMagic):
		return pngDimensions(data)
	case isWebP(data):
		return webpDimensions(data)
	default:
		return 0, 0, false
	}
}

// Format returns the content type matching the buffer signature, or "" when
// the format is unknown.
func Format(data []byte) string {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return MIMEJPEG
	case bytes.HasPrefix(data, pngMagic):
		return MIMEPNG
	case isWebP(data):
		return MIMEWebP
	default:
		return ""
	}
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], riffMagic) && bytes.Equal(data[8:12], webpMagic)
}

// jpegDimensions scans for a baseline (SOF0) or progressive (SOF2) frame
// header. Height sits 5 bytes after the marker, width right after it.
func jpegDimensions(data []byte) (int, int, bool) {
	for i := 2; i+1 < len(data); i++ {
		if data[i] != 0xFF {
			continue
		}
		marker := data[i+1]
		if marker != 0xC0 && marker != 0xC2 {
			continue
		}
		if i+9 > len(data) {
			return 0, 0, false
		}
		height := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
		width := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
		return width, height, true
	}
	return 0, 0, false
}

func pngDimensions(data []byte) (int, int, bool) {
	if len(data) < 24 {
		return 0, 0, false
	}
	width := int(binary.BigEndian.Uint32(data[16:20]))
	height := int(binary.BigEndian.Uint32(data[20:24]))
	return width, height, true
}

func webpDimensions(data []byte) (int, int, bool) {
	if len(data) < 16 {
		return 0, 0, false
	}
	chunk := data[12:16]
	switch {
	case bytes.Equal(chunk, vp8Lossy):
		if len(data) < 30 {
			return 0, 0, false
		}
		width := int(binary.LittleEndian.Uint16(data[26:28]) & 0x3FFF)
		height := int(binary.LittleEndian.Uint16(data[28:30]) & 0x3FFF)
		return width, height, true
	case bytes.Equal(chunk, vp8Lossless):
		if len(data) < 25 {
			return 0, 0, false
		}
		bits := binary.LittleEndian.Uint32(data[21:25])
		width := int(bits&0x3FFF) + 1
		height := int((bits>>14)&0x3FFF) + 1
		return width, height, true
	default:
		return 0, 0, false
	}
}
