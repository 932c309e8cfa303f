/*
PURPOSE:
  Core engine for the scan-reliability sweep.
  Holds the configuration and the seeded random stream shared by all trials.

REQUIREMENTS:
  User-specified:
  - Every configuration is the cartesian product of the sweep dimensions.
  - Results must be reproducible from a seed.

  Implementation-discovered:
  - Each configuration gets its own forked generator, handed out in sweep
    order, so the random stream does not depend on worker scheduling.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/config, internal/payload, internal/qr, internal/imageproc

USAGE:
  e := engine.New(cfg, payload.NewGenerator(cfg.Seed))
  summary, err := e.Run(ctx, runID, sinks)

RELATED FILES:
  - internal/engine/trial.go
  - internal/engine/runner.go
*/

package engine

import (
	"github.com/daryltucker/qr-bench/internal/config"
	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/model"
	"github.com/daryltucker/qr-bench/internal/payload"
)

// Engine runs sweeps for one configuration.
type Engine struct {
	Config *config.Config
	rand   *payload.Generator
}

// New creates a new Engine. A nil generator is seeded from cfg.Seed.
func New(cfg *config.Config, gen *payload.Generator) *Engine {
	if gen == nil {
		gen = payload.NewGenerator(cfg.Seed)
	}
	return &Engine{Config: cfg, rand: gen}
}

// Seed is the effective seed of the run.
func (e *Engine) Seed() uint64 {
	return e.rand.Seed()
}

// Configurations lists the rows of one table in output order:
// box size, EC level, JPEG quality, size, then the pre-processing variants.
func (e *Engine) Configurations(background, borderColor string) []model.Params {
	c := e.Config
	params := make([]model.Params, 0,
		len(c.BoxSizes)*len(c.ECLevels)*len(c.JPEGQualities)*len(c.Sizes)*len(c.Preprocess))
	for _, box := range c.BoxSizes {
		for _, level := range c.ECLevels {
			for _, quality := range c.JPEGQualities {
				for _, size := range c.Sizes {
					for _, pre := range c.Preprocess {
						params = append(params, model.Params{
							Background:  background,
							BorderColor: borderColor,
							BoxSize:     box,
							ECLevel:     level,
							Quality:     quality,
							Size:        size,
							Preprocess:  pre,
						})
					}
				}
			}
		}
	}
	return params
}

func (e *Engine) setup() Setup {
	c := e.Config
	return Setup{
		BaseURL:     c.BaseURL,
		IndexLength: c.IndexLength,
		KeyLength:   c.KeyLength,
		QuietZone:   c.QuietZone,
		Label:       c.Label,
		ImageDir:    c.ImageDir,
		Preprocessing: imageproc.Params{
			Size:      c.Preprocessing.Size,
			BlurSigma: c.Preprocessing.BlurSigma,
			Threshold: c.Preprocessing.Threshold,
		},
	}
}
