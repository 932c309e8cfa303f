/*
PURPOSE:
  High-level runner that orchestrates the sweep.
  Loops through backgrounds -> border colors -> configurations and runs
  the trials of each configuration.

REQUIREMENTS:
  User-specified:
  - One table per (background, border color) pair.
  - Log results to CSV/JSON as they complete.

  Implementation-discovered:
  - Configurations within a table can run in parallel (workers > 1); rows are
    still released to the sinks in sweep order.
  - Read timings get noisier with more workers.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine (Trial), internal/output

ERROR HANDLING:
  - Sink errors are logged and the sweep continues (resilience).
  - Trial errors (I/O, rendering) abort the sweep.
  - Context cancellation stops the sweep.

IMPLEMENTATION RULES:
  - Load each background once.
  - One decoder per configuration; decoders are not shared between goroutines.

USAGE:
  summary, err := engine.New(cfg, nil).Run(ctx, runID, engine.Sinks{Rows: w})

RELATED FILES:
  - internal/engine/trial.go
  - internal/output/writer.go

MAINTENANCE:
  - Update Configurations() when a sweep dimension is added.
*/

package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/model"
	"github.com/daryltucker/qr-bench/internal/output"
	"github.com/daryltucker/qr-bench/internal/qr"
)

// Sinks receive the sweep's output. Both are optional.
type Sinks struct {
	Rows   output.RowWriter
	Groups []output.GroupWriter
}

// Summary totals a finished sweep.
type Summary struct {
	Rows      int
	Trials    int
	Successes int
	Elapsed   time.Duration
}

// Run executes the full sweep.
func (e *Engine) Run(ctx context.Context, runID string, sinks Sinks) (Summary, error) {
	start := time.Now()
	var sum Summary

	workers := e.Config.Workers
	if workers < 1 {
		workers = 1
	}

	output.Logger.Info("Starting sweep",
		"run_id", runID,
		"seed", e.Seed(),
		"backgrounds", len(e.Config.Backgrounds),
		"border_colors", len(e.Config.BorderColors),
		"iterations", e.Config.Iterations,
		"workers", workers,
	)

	for _, spec := range e.Config.Backgrounds {
		bg, err := imageproc.LoadBackground(spec)
		if err != nil {
			return sum, fmt.Errorf("failed to load background %s: %w", spec, err)
		}

		for _, bc := range e.Config.BorderColors {
			border, err := qr.ParseHexColor(bc)
			if err != nil {
				return sum, err
			}

			output.Logger.Info("Running table", "background", spec, "border_color", bc)
			group, err := e.runGroup(ctx, runID, spec, bc, bg, border, workers, sinks.Rows)
			if err != nil {
				return sum, err
			}

			for _, r := range group.Rows {
				sum.Rows++
				sum.Trials += r.Iterations
				sum.Successes += r.Successes
			}
			for _, gw := range sinks.Groups {
				if err := gw.WriteGroup(group); err != nil {
					output.Logger.Error("Failed to write table", "background", spec, "border_color", bc, "error", err)
				}
			}
		}
	}

	sum.Elapsed = time.Since(start)
	output.Logger.Info("Sweep complete",
		"rows", output.Count(sum.Rows),
		"trials", output.Count(sum.Trials),
		"successes", output.Count(sum.Successes),
		"elapsed", sum.Elapsed.Round(time.Millisecond),
	)
	return sum, nil
}

func (e *Engine) runGroup(ctx context.Context, runID, spec, bc string, bg *image.NRGBA, border color.Color, workers int, rows output.RowWriter) (model.Group, error) {
	params := e.Configurations(spec, bc)
	results := make([]model.Result, len(params))
	done := make([]bool, len(params))
	next := 0
	var mu sync.Mutex

	// release hands finished rows to the sinks strictly in sweep order.
	release := func(i int, r model.Result) {
		mu.Lock()
		defer mu.Unlock()
		results[i], done[i] = r, true
		for next < len(done) && done[next] {
			if rows != nil {
				if err := rows.Write(results[next]); err != nil {
					output.Logger.Error("Failed to write result", "error", err)
				}
			}
			next++
		}
	}

	setup := e.setup()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range params {
		in := TrialInput{
			Setup:      setup,
			Params:     p,
			Background: bg,
			Border:     border,
			Rand:       e.rand.Fork(),
			Decoder:    qr.NewDecoder(),
		}
		g.Go(func() error {
			r, err := e.runConfig(gctx, runID, in)
			if err != nil {
				return err
			}
			release(i, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Group{}, err
	}

	return model.Group{Background: spec, BorderColor: bc, Rows: results}, nil
}

func (e *Engine) runConfig(ctx context.Context, runID string, in TrialInput) (model.Result, error) {
	res := model.Result{RunID: runID, Params: in.Params}
	for i := 0; i < e.Config.Iterations; i++ {
		t, err := Trial(ctx, in)
		if err != nil {
			return res, err
		}
		res.Add(t)
	}
	res.Timestamp = time.Now()

	output.Logger.Debug("Configuration done",
		"box_size", in.Params.BoxSize,
		"ec_level", in.Params.ECLevel,
		"quality", in.Params.Quality,
		"size", in.Params.Size,
		"preprocess", in.Params.Preprocess,
		"success_rate", fmt.Sprintf("%.2f", res.SuccessRate()),
		"avg_read", res.AvgReadTime(),
	)
	return res, nil
}

