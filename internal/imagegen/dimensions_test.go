package imagegen

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// progressiveJPEG builds the minimal header the sniffer reads: SOI, an APP0
// segment and an SOF2 frame header.
func progressiveJPEG(w, h int) []byte {
	buf := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00}
	frame := []byte{0xFF, 0xC2, 0x00, 0x11, 0x08, 0, 0, 0, 0, 0x03}
	binary.BigEndian.PutUint16(frame[5:7], uint16(h))
	binary.BigEndian.PutUint16(frame[7:9], uint16(w))
	return append(buf, frame...)
}

func lossyWebP(w, h int) []byte {
	buf := make([]byte, 30)
	copy(buf[0:4], "RIFF")
	copy(buf[8:12], "WEBP")
	copy(buf[12:16], "VP8 ")
	// keyframe start code
	buf[23], buf[24], buf[25] = 0x9D, 0x01, 0x2A
	binary.LittleEndian.PutUint16(buf[26:28], uint16(w)|0xC000)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(h))
	return buf
}

func losslessWebP(w, h int) []byte {
	buf := make([]byte, 25)
	copy(buf[0:4], "RIFF")
	copy(buf[8:12], "WEBP")
	copy(buf[12:16], "VP8L")
	buf[20] = 0x2F
	bits := uint32(w-1) | uint32(h-1)<<14
	binary.LittleEndian.PutUint32(buf[21:25], bits)
	return buf
}

func TestDimensions(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		width  int
		height int
		format string
	}{
		{"png", encodePNG(t, 640, 480), 640, 480, MIMEPNG},
		{"png tall", encodePNG(t, 3, 7), 3, 7, MIMEPNG},
		{"baseline jpeg", encodeJPEG(t, 120, 180), 120, 180, MIMEJPEG},
		{"progressive jpeg", progressiveJPEG(1200, 1800), 1200, 1800, MIMEJPEG},
		{"lossy webp", lossyWebP(800, 600), 800, 600, MIMEWebP},
		{"lossless webp", losslessWebP(16383, 1), 16383, 1, MIMEWebP},
		{"lossless webp small", losslessWebP(1, 2), 1, 2, MIMEWebP},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h, ok := Dimensions(tc.data)
			require.True(t, ok)
			assert.Equal(t, tc.width, w)
			assert.Equal(t, tc.height, h)
			assert.Equal(t, tc.format, Format(tc.data))
		})
	}
}

func TestDimensionsTruncated(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		need int
	}{
		{"png", encodePNG(t, 10, 10), 24},
		{"progressive jpeg", progressiveJPEG(10, 10), 29},
		{"lossy webp", lossyWebP(10, 10), 30},
		{"lossless webp", losslessWebP(10, 10), 25},
	}
	for _, tc := range cases {
		for n := 0; n < tc.need; n++ {
			_, _, ok := Dimensions(tc.data[:n])
			assert.False(t, ok, "%s truncated to %d bytes", tc.name, n)
		}
		_, _, ok := Dimensions(tc.data[:tc.need])
		assert.True(t, ok, tc.name)
	}
}

func TestDimensionsUnknown(t *testing.T) {
	others := [][]byte{
		nil,
		{},
		[]byte("GIF89a\x01\x00\x01\x00"),
		[]byte("RIFF\x00\x00\x00\x00WAVEfmt "),
		append([]byte("RIFF\x00\x00\x00\x00WEBPVP8X"), make([]byte, 20)...),
		{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
		{0xFF, 0xD8, 0xFF, 0xC0, 0x00},
	}
	for _, data := range others {
		w, h, ok := Dimensions(data)
		assert.False(t, ok, "data %q", data)
		assert.Zero(t, w)
		assert.Zero(t, h)
	}
	assert.Equal(t, "", Format([]byte("plain text")))
}
