/*
PURPOSE:
  Loads the photographs QR codes are embedded in, and provides synthetic
  backgrounds (white, black, checkerboard) for quick baseline runs.

REQUIREMENTS:
  User-specified:
  - Backgrounds are image files on disk.

  Implementation-discovered:
  - Built-in backgrounds use the LinkedIn banner size (1584x396) so the default
    target sizes behave like real uploads.
  - Camera photos may carry an EXIF orientation; honour it when loading.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (backgrounds export)
  - Dependencies: github.com/disintegration/imaging

ERROR HANDLING:
  - Unknown built-in names and unreadable files return errors.

USAGE:
  bg, err := imageproc.LoadBackground("builtin:checkerboard")
  bg, err := imageproc.LoadBackground("./backgrounds/hacker.jpg")

RELATED FILES:
  - internal/imageproc/composite.go
*/

package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// BuiltinPrefix selects a generated background instead of a file.
const BuiltinPrefix = "builtin:"

// Banner is the size of the built-in backgrounds.
var Banner = image.Pt(1584, 396)

const checkerSquare = 44

var builtins = map[string]func() *image.NRGBA{
	"white": func() *image.NRGBA { return imaging.New(Banner.X, Banner.Y, color.White) },
	"black": func() *image.NRGBA { return imaging.New(Banner.X, Banner.Y, color.Black) },
	"checkerboard": func() *image.NRGBA {
		img := imaging.New(Banner.X, Banner.Y, color.White)
		dark := color.NRGBA{A: 0xff}
		for y := 0; y < Banner.Y; y++ {
			for x := 0; x < Banner.X; x++ {
				if (x/checkerSquare+y/checkerSquare)%2 == 1 {
					img.SetNRGBA(x, y, dark)
				}
			}
		}
		return img
	},
}

// BuiltinNames lists the available generated backgrounds.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns the named generated background.
func Builtin(name string) (*image.NRGBA, error) {
	gen, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in background %q (have %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return gen(), nil
}

// LoadBackground opens a background file or generates a built-in one.
func LoadBackground(spec string) (*image.NRGBA, error) {
	if name, ok := strings.CutPrefix(spec, BuiltinPrefix); ok {
		return Builtin(name)
	}
	img, err := imaging.Open(spec, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open background %s: %w", spec, err)
	}
	return imaging.Clone(img), nil
}

// Stem is the background name used in artifact file names.
func Stem(spec string) string {
	if name, ok := strings.CutPrefix(spec, BuiltinPrefix); ok {
		return name
	}
	base := filepath.Base(spec)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
