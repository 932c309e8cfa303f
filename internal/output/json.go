/*
PURPOSE:
  Writes sweep results to a JSON Lines file (NDJSON).
  Optimized for machine parsing (jq, notebooks).

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines is better for streaming/logging than a single large array (append-friendly).
  - Derived metrics (success_rate, avg_read_s) are included so consumers need not recompute.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (through MultiWriter)
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("qr_results.json")
  w.Write(result)
  w.Close()

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/daryltucker/qr-bench/internal/model"
)

// jsonRow is a Result plus its derived metrics.
type jsonRow struct {
	model.Result
	SuccessRate float64 `json:"success_rate"`
	AvgReadS    float64 `json:"avg_read_s"`
}

// JSONWriter handles writing results to a JSON Lines file.
type JSONWriter struct {
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		closer:  f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single result as a JSON line.
func (jw *JSONWriter) Write(r model.Result) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(jsonRow{
		Result:      r,
		SuccessRate: r.SuccessRate(),
		AvgReadS:    r.AvgReadTime().Seconds(),
	})
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	if jw.closer == nil {
		return nil
	}
	return jw.closer.Close()
}
