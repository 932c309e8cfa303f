/*
PURPOSE:
  Defines the 'decode' subcommand.
  Reads QR codes from image files, e.g. a banner downloaded back from a
  social network, using the same reader as the sweep.

REQUIREMENTS:
  Implementation-discovered:
  - Useful validation step before a full run.
  - Payload URLs are split into their index and key so they can be checked.

ARCHITECTURE INTEGRATION:
  - Calls: internal/imageproc, internal/qr, internal/payload

ERROR HANDLING:
  - Unreadable images are reported per file; the command fails if any
    image could not be decoded.

USAGE:
  qr-bench decode --preprocess ./downloaded.jpg
*/

package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/qr-bench/internal/config"
	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/model"
	"github.com/daryltucker/qr-bench/internal/output"
	"github.com/daryltucker/qr-bench/internal/payload"
	"github.com/daryltucker/qr-bench/internal/qr"
)

var decodePreprocess bool

var decodeCmd = &cobra.Command{
	Use:   "decode <image>...",
	Short: "Read QR codes from image files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		dec := qr.NewDecoder()
		failed := 0
		for _, path := range args {
			text, err := decodeFile(dec, path, cfg)
			if err != nil {
				output.Logger.Error("Failed to decode", "file", path, "error", err)
				failed++
				continue
			}

			fmt.Fprintf(out, "%s: %s\n", path, text)
			if index, key, err := payload.Parse(text); err == nil {
				fmt.Fprintf(out, "  index: %s\n", hex.EncodeToString(index))
				fmt.Fprintf(out, "  key:   %s\n", hex.EncodeToString(key))
			} else {
				output.Logger.Debug("Not a verification payload", "file", path, "error", err)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d images could not be decoded", failed, len(args))
		}
		return nil
	},
}

func decodeFile(dec *qr.Decoder, path string, cfg *config.Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	gray, err := imageproc.ReadGray(data)
	if err != nil {
		return "", err
	}
	if decodePreprocess {
		p := imageproc.Params{
			Size:      cfg.Preprocessing.Size,
			BlurSigma: cfg.Preprocessing.BlurSigma,
			Threshold: cfg.Preprocessing.Threshold,
		}
		if p.Size.IsZero() {
			b := gray.Bounds()
			p.Size = model.Size{Width: b.Dx(), Height: b.Dy()}
		}
		gray = imageproc.Preprocess(gray, p)
	}
	return dec.Decode(gray)
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodePreprocess, "preprocess", false, "resize, blur and threshold before decoding")
}
