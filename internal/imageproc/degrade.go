/*
PURPOSE:
  Simulates a social-media upload: JPEG re-encode, rescale, JPEG re-encode.
  Both intermediate JPEGs are kept on disk for inspection.

REQUIREMENTS:
  User-specified:
  - Save at quality Q, reload, resize to WxH (possibly nonproportional), save at Q.
  - Intermediate files go to the image directory.

  Implementation-discovered:
  - Files are replaced atomically (renameio) so parallel workers never
    leave a half-written JPEG behind.
  - The final bytes are returned so the reader does not need to hit the disk.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Dependencies: github.com/disintegration/imaging, github.com/google/renameio/v2

ERROR HANDLING:
  - Encoding and file errors are returned wrapped.

USAGE:
  paths := imageproc.ArtifactPaths(dir, "hacker", 4, model.ECLevelH, "#AA336A", 80, size)
  jpg, err := imageproc.Degrade(img, 80, size, paths)

RELATED FILES:
  - internal/imageproc/preprocess.go
*/

package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/renameio/v2"

	"github.com/daryltucker/qr-bench/internal/model"
)

// Artifacts names the two intermediate JPEG files. Empty paths are not written.
type Artifacts struct {
	Encoded string // after the first JPEG pass
	Scaled  string // after resizing and the second JPEG pass
}

// ArtifactPaths builds the file names for one configuration, e.g.
// hacker_bs_4_ec_H_bc_AA336A_q80.jpg and hacker_bs_4_ec_H_bc_AA336A_q80_1400x350.jpg.
func ArtifactPaths(dir, stem string, boxSize int, level model.ECLevel, borderColor string, quality int, size model.Size) Artifacts {
	if dir == "" {
		return Artifacts{}
	}
	base := fmt.Sprintf("%s_bs_%d_ec_%s_bc_%s_q%d", stem, boxSize, level, strings.TrimPrefix(borderColor, "#"), quality)
	return Artifacts{
		Encoded: filepath.Join(dir, base+".jpg"),
		Scaled:  filepath.Join(dir, base+"_"+size.String()+".jpg"),
	}
}

// Degrade re-encodes img as JPEG, scales it to size and re-encodes it again.
// It returns the final JPEG bytes.
func Degrade(img image.Image, quality int, size model.Size, out Artifacts) ([]byte, error) {
	first, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, fmt.Errorf("first jpeg pass: %w", err)
	}
	if err := writeAtomic(out.Encoded, first); err != nil {
		return nil, err
	}

	decoded, err := imaging.Decode(bytes.NewReader(first))
	if err != nil {
		return nil, fmt.Errorf("reload jpeg: %w", err)
	}
	scaled := imaging.Resize(decoded, size.Width, size.Height, imaging.CatmullRom)

	second, err := encodeJPEG(scaled, quality)
	if err != nil {
		return nil, fmt.Errorf("second jpeg pass: %w", err)
	}
	if err := writeAtomic(out.Scaled, second); err != nil {
		return nil, err
	}
	return second, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic replaces path with data. An empty path is a no-op.
func writeAtomic(path string, data []byte) error {
	if path == "" {
		return nil
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
