/*
PURPOSE:
  Reads QR codes back out of images with gozxing.

REQUIREMENTS:
  Implementation-discovered:
  - TRY_HARDER is needed for small codes on busy backgrounds.
  - A gozxing reader keeps state between calls; one Decoder per goroutine.

ERROR HANDLING:
  - "nothing found" maps to ErrNotFound so callers count a miss instead of failing.

RELATED FILES:
  - internal/qr/render.go
*/

package qr

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNotFound is returned when no QR code could be read from an image.
var ErrNotFound = errors.New("no QR code found in image")

// Decoder reads QR codes from images.
type Decoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewDecoder returns a decoder that searches the whole image.
// Decoders are not safe for concurrent use.
func NewDecoder() *Decoder {
	return &Decoder{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the text of the first QR code found in img.
func (d *Decoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("creating bitmap: %w", err)
	}

	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return result.GetText(), nil
}
