package config

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"

	ximgdraw "golang.org/x/image/draw"
)

// DecodeLUT decodes r as a 2D image and resamples it to targetW x
// targetH RGBA8 texels, returning the result in row-major order ready
// for upload to a driver.Image. The BRDF LUT and environment-map
// assets RenderConfig.BRDFLUTPath/EnvironmentMapPath name are
// authored at whatever resolution the tool that produced them used;
// the render core always wants a fixed size matching its sampler
// setup, so this resamples rather than requiring an exact match.
func DecodeLUT(r io.Reader, targetW, targetH int) ([]byte, error) {
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("config: non-positive LUT target size %dx%d", targetW, targetH)
	}
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("config: decoding LUT image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	if src.Bounds().Dx() == targetW && src.Bounds().Dy() == targetH {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		ximgdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), ximgdraw.Over, nil)
	}
	return dst.Pix, nil
}
