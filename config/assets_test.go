package config

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeLUTPassesThroughExactSize(t *testing.T) {
	data := encodeTestPNG(t, 16, 16)
	pix, err := DecodeLUT(bytes.NewReader(data), 16, 16)
	require.NoError(t, err)
	assert.Len(t, pix, 16*16*4)
}

func TestDecodeLUTResamplesToTargetSize(t *testing.T) {
	data := encodeTestPNG(t, 8, 8)
	pix, err := DecodeLUT(bytes.NewReader(data), 32, 32)
	require.NoError(t, err)
	assert.Len(t, pix, 32*32*4)
}

func TestDecodeLUTRejectsNonPositiveTarget(t *testing.T) {
	data := encodeTestPNG(t, 4, 4)
	_, err := DecodeLUT(bytes.NewReader(data), 0, 4)
	assert.Error(t, err)
}

func TestDecodeLUTRejectsUndecodableData(t *testing.T) {
	_, err := DecodeLUT(bytes.NewReader([]byte("not an image")), 4, 4)
	assert.Error(t, err)
}
