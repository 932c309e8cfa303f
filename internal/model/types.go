/*
PURPOSE:
  Defines the core data structures used throughout qr-bench.
  These models represent sweep parameters, single trials and aggregated results.

REQUIREMENTS:
  User-specified:
  - Record success rate and average time to read per configuration.
  - Track background, border color, box size, EC level, JPEG quality, target size
    and whether pre-processing was applied.

  Implementation-discovered:
  - Need JSON tags for NDJSON output and the run snapshot stored in SQLite.
  - Tables are printed per (background, border color) pair, so rows are grouped.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output, internal/store
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.

USAGE:
  res := model.Result{Params: p, Iterations: 100}
  res.Add(trial)

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update CSV/JSON/Influx/SQLite writers.

RELATED FILES:
  - internal/model/params.go
  - internal/output/csv.go
  - internal/store/store.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"time"
)

// Params is one point of the parameter sweep.
type Params struct {
	Background  string  `json:"background"`
	BorderColor string  `json:"border_color"`
	BoxSize     int     `json:"box_size"`
	ECLevel     ECLevel `json:"ec_level"`
	Quality     int     `json:"jpeg_quality"`
	Size        Size    `json:"size"`
	Preprocess  bool    `json:"preprocess"`
}

// Trial is the outcome of a single create-degrade-read cycle.
type Trial struct {
	Payload  string        `json:"payload"`
	Decoded  string        `json:"decoded"`
	Success  bool          `json:"success"`
	ReadTime time.Duration `json:"read_time"`
}

// Result represents the aggregated outcome of all trials for one Params.
type Result struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Params

	Iterations    int           `json:"iterations"`
	Successes     int           `json:"successes"`
	TotalReadTime time.Duration `json:"total_read_time"`
}

// Add folds a trial into the result.
func (r *Result) Add(t Trial) {
	r.Iterations++
	if t.Success {
		r.Successes++
	}
	r.TotalReadTime += t.ReadTime
}

// SuccessRate is successes / iterations, 0 when nothing ran.
func (r Result) SuccessRate() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Iterations)
}

// AvgReadTime is the mean read time over all iterations.
func (r Result) AvgReadTime() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.TotalReadTime / time.Duration(r.Iterations)
}

// Group holds the rows of one results table.
type Group struct {
	Background  string   `json:"background"`
	BorderColor string   `json:"border_color"`
	Rows        []Result `json:"rows"`
}

// Run describes one invocation of the sweep.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Seed      uint64    `json:"seed"`
	Config    string    `json:"config"` // YAML snapshot
}
