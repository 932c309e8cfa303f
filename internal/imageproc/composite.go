/*
PURPOSE:
  Pastes a rendered code at a random position on a background.

ERROR HANDLING:
  - An overlay larger than the background is an error, not a crop.
*/

package imageproc

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rand supplies positions; *payload.Generator satisfies it.
type Rand interface {
	IntN(n int) int
}

// PlaceRandom returns a copy of bg with overlay pasted at a uniformly random
// position that keeps it fully inside bg. bg itself is not modified.
func PlaceRandom(bg, overlay image.Image, rnd Rand) (*image.NRGBA, image.Point, error) {
	bw, bh := bg.Bounds().Dx(), bg.Bounds().Dy()
	ow, oh := overlay.Bounds().Dx(), overlay.Bounds().Dy()
	if ow > bw || oh > bh {
		return nil, image.Point{}, fmt.Errorf("qr image %dx%d does not fit background %dx%d", ow, oh, bw, bh)
	}

	pos := image.Pt(rnd.IntN(bw-ow+1), rnd.IntN(bh-oh+1))
	return imaging.Paste(bg, overlay, pos), pos, nil
}
