/*
PURPOSE:
  Renders payloads as framed QR images: the code itself with a white quiet zone,
  surrounded by a colored frame carrying a "Verified by" label.

REQUIREMENTS:
  User-specified:
  - Configurable box size (pixels per module), quiet zone, EC level and frame color.

  Implementation-discovered:
  - The library border is disabled so the quiet zone can be sized independently.
  - Frame is 4 px on each side and 48 px taller to fit two label lines.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (generate)
  - Dependencies: github.com/skip2/go-qrcode, github.com/disintegration/imaging,
    golang.org/x/image/font/basicfont

ERROR HANDLING:
  - Returns the encoder error when data does not fit any QR version.

USAGE:
  img, err := qr.Render(data, qr.Options{BoxSize: 4, QuietZone: 4, Level: model.ECLevelH})

RELATED FILES:
  - internal/qr/decode.go
*/

package qr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/daryltucker/qr-bench/internal/model"
)

const (
	framePad    = 4  // frame width left, right and top
	labelHeight = 48 // extra frame height below the code
)

// Options controls how a payload is rendered.
type Options struct {
	BoxSize     int
	QuietZone   int
	Level       model.ECLevel
	BorderColor color.Color
	Label       []string
}

// RecoveryLevel maps an EC level onto the encoder's recovery level.
func RecoveryLevel(l model.ECLevel) qrcode.RecoveryLevel {
	switch l {
	case model.ECLevelM:
		return qrcode.Medium
	case model.ECLevelQ:
		return qrcode.High
	case model.ECLevelH:
		return qrcode.Highest
	default:
		return qrcode.Low
	}
}

// Code renders only the QR symbol and its quiet zone.
func Code(data string, boxSize, quietZone int, level model.ECLevel) (*image.NRGBA, error) {
	q, err := qrcode.New(data, RecoveryLevel(level))
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	modules := len(bitmap) + 2*quietZone
	img := imaging.New(modules*boxSize, modules*boxSize, color.White)
	black := image.NewUniform(color.Black)
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			px, py := (x+quietZone)*boxSize, (y+quietZone)*boxSize
			draw.Draw(img, image.Rect(px, py, px+boxSize, py+boxSize), black, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// Render builds the framed QR image.
func Render(data string, opts Options) (*image.NRGBA, error) {
	code, err := Code(data, opts.BoxSize, opts.QuietZone, opts.Level)
	if err != nil {
		return nil, err
	}

	border := opts.BorderColor
	if border == nil {
		border = color.Black
	}
	w := code.Bounds().Dx() + 2*framePad
	h := code.Bounds().Dy() + labelHeight
	frame := imaging.New(w, h, border)

	drawLabel(frame, opts.Label, h)
	return imaging.Paste(frame, code, image.Pt(framePad, framePad)), nil
}

// drawLabel writes up to two lines into the space below the code.
func drawLabel(dst draw.Image, lines []string, h int) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	tops := []int{h - 40, h - 20}
	for i, line := range lines {
		if i >= len(tops) {
			break
		}
		d.Dot = fixed.P(2*framePad, tops[i]+face.Ascent)
		d.DrawString(line)
	}
}

// ParseHexColor parses "#RRGGBB" (the leading "#" is optional).
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
