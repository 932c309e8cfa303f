/*
PURPOSE:
  Prepares a degraded photo for a second decode attempt: grayscale,
  resize, blur, fixed threshold.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (trial.go)
  - Dependencies: github.com/disintegration/imaging

IMPLEMENTATION RULES:
  - The threshold is fixed, never computed from the histogram.
*/

package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/daryltucker/qr-bench/internal/model"
)

// Params is the pre-processing recipe.
type Params struct {
	// Size is the resize target. Scaling up more improves recognition but costs time;
	// the blur sigma should grow with it.
	Size      model.Size
	BlurSigma float64
	Threshold uint8
}

// ReadGray decodes JPEG (or PNG) bytes into a grayscale image.
func ReadGray(data []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return imaging.Grayscale(img), nil
}

// Preprocess resizes, blurs and binarizes a grayscale image.
// A fixed threshold keeps the non-QR part of the photo from shifting the cut-off.
func Preprocess(gray image.Image, p Params) *image.NRGBA {
	img := imaging.Clone(gray)
	if !p.Size.IsZero() {
		img = imaging.Resize(img, p.Size.Width, p.Size.Height, imaging.Box)
	}
	if p.BlurSigma > 0 {
		img = imaging.Blur(img, p.BlurSigma)
	}
	return Binarize(img, p.Threshold)
}

// Binarize maps pixels brighter than t to white and everything else to black.
func Binarize(img image.Image, t uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R > t {
			return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
		}
		return color.NRGBA{A: c.A}
	})
}
