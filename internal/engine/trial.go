/*
PURPOSE:
  One trial: payload, render, composite, degrade, decode, compare.

ARCHITECTURE INTEGRATION:
  - Called by: engine.go (per configuration, per iteration)
  - Uses: internal/payload, internal/qr, internal/imageproc

ERROR HANDLING:
  - A failed read is a trial result (Success=false), not an error.
  - Render or encode failures abort the sweep.

SELF-HEALING INSTRUCTIONS:
  - If success rates drop to zero everywhere, check the preprocess threshold
    before the decoder.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/model"
	"github.com/daryltucker/qr-bench/internal/output"
	"github.com/daryltucker/qr-bench/internal/payload"
	"github.com/daryltucker/qr-bench/internal/qr"
)

// Setup is the part of a trial that does not change across the sweep.
type Setup struct {
	BaseURL     string
	IndexLength int
	KeyLength   int
	QuietZone   int
	Label       []string

	// ImageDir receives the intermediate JPEGs; empty keeps them in memory.
	ImageDir string

	// Preprocessing.Size zero means the background's own size.
	Preprocessing imageproc.Params
}

// TrialInput is everything one create-degrade-read cycle needs.
type TrialInput struct {
	Setup      Setup
	Params     model.Params
	Background *image.NRGBA
	Border     color.Color
	Rand       *payload.Generator
	Decoder    *qr.Decoder // nil uses a fresh decoder
}

// Trial generates a payload, renders and composites it, degrades the
// composite like an upload would and tries to read it back.
// A code that cannot be found or reads wrong is a failed trial, not an error.
func Trial(ctx context.Context, in TrialInput) (model.Trial, error) {
	if err := ctx.Err(); err != nil {
		return model.Trial{}, err
	}
	p := in.Params
	s := in.Setup

	data := in.Rand.Generate(s.BaseURL, s.IndexLength, s.KeyLength)

	code, err := qr.Render(data, qr.Options{
		BoxSize:     p.BoxSize,
		QuietZone:   s.QuietZone,
		Level:       p.ECLevel,
		BorderColor: in.Border,
		Label:       s.Label,
	})
	if err != nil {
		return model.Trial{}, fmt.Errorf("render qr: %w", err)
	}

	composite, _, err := imageproc.PlaceRandom(in.Background, code, in.Rand)
	if err != nil {
		return model.Trial{}, err
	}

	artifacts := imageproc.ArtifactPaths(s.ImageDir, imageproc.Stem(p.Background),
		p.BoxSize, p.ECLevel, p.BorderColor, p.Quality, p.Size)
	jpg, err := imageproc.Degrade(composite, p.Quality, p.Size, artifacts)
	if err != nil {
		return model.Trial{}, err
	}

	dec := in.Decoder
	if dec == nil {
		dec = qr.NewDecoder()
	}

	start := time.Now()
	decoded, err := read(dec, jpg, p.Preprocess, preprocessParams(s.Preprocessing, in.Background))
	elapsed := time.Since(start)

	t := model.Trial{Payload: data, Decoded: decoded, ReadTime: elapsed}
	switch {
	case errors.Is(err, qr.ErrNotFound):
		output.Logger.Debug("QR not found", "size", p.Size, "quality", p.Quality, "preprocess", p.Preprocess)
	case err != nil:
		return model.Trial{}, err
	default:
		t.Success = decoded == data
		if !t.Success {
			output.Logger.Debug("QR misread", "want", data, "got", decoded)
		}
	}
	return t, nil
}

// read is the timed part of a trial.
func read(dec *qr.Decoder, jpg []byte, preprocess bool, pp imageproc.Params) (string, error) {
	gray, err := imageproc.ReadGray(jpg)
	if err != nil {
		return "", err
	}
	if preprocess {
		gray = imageproc.Preprocess(gray, pp)
	}
	return dec.Decode(gray)
}

func preprocessParams(p imageproc.Params, bg image.Image) imageproc.Params {
	if p.Size.IsZero() {
		b := bg.Bounds()
		p.Size = model.Size{Width: b.Dx(), Height: b.Dy()}
	}
	return p
}
