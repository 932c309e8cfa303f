/*
PURPOSE:
  Writes sweep results to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV, one row per configuration.

  Implementation-discovered:
  - Overwrites the file on each run (results of older runs live in the history DB).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (through MultiWriter)
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex; rows may arrive from parallel workers.

USAGE:
  w, err := output.NewCSVWriter("qr_results.csv")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/qr-bench/internal/model"
)

// CSVHeader is the first line of every CSV file.
var CSVHeader = []string{
	"run_id", "timestamp", "background", "border_color",
	"box_size", "ec_level", "jpeg_quality", "size", "preprocess",
	"iterations", "successes", "success_rate", "avg_read_s",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	closer io.Closer
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := newCSVWriter(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func newCSVWriter(out io.Writer, closer io.Closer) (*CSVWriter, error) {
	w := csv.NewWriter(out)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &CSVWriter{closer: closer, writer: w}, nil
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.RunID,
		r.Timestamp.Format(time.RFC3339),
		r.Background,
		r.BorderColor,
		strconv.Itoa(r.BoxSize),
		r.ECLevel.String(),
		strconv.Itoa(r.Quality),
		r.Size.String(),
		strconv.FormatBool(r.Preprocess),
		strconv.Itoa(r.Iterations),
		strconv.Itoa(r.Successes),
		fmt.Sprintf("%.4f", r.SuccessRate()),
		fmt.Sprintf("%.6f", r.AvgReadTime().Seconds()),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if cw.closer == nil {
		return nil
	}
	return cw.closer.Close()
}
