/*
PURPOSE:
  RowWriter and GroupWriter, and MultiWriter to fan rows out to every sink.

ERROR HANDLING:
  - MultiWriter keeps writing to the other sinks when one fails and joins
    the errors.
*/

package output

import (
	"errors"

	"github.com/daryltucker/qr-bench/internal/model"
)

// RowWriter receives every result row as soon as it is complete.
type RowWriter interface {
	Write(r model.Result) error
	Close() error
}

// GroupWriter receives a finished (background, border color) table.
type GroupWriter interface {
	WriteGroup(g model.Group) error
}

// MultiWriter fans rows out to several RowWriters.
// Every writer sees every row; errors are joined.
type MultiWriter struct {
	writers []RowWriter
}

// NewMultiWriter creates a RowWriter that writes to all provided writers.
func NewMultiWriter(writers ...RowWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Add appends another writer.
func (m *MultiWriter) Add(w RowWriter) {
	m.writers = append(m.writers, w)
}

func (m *MultiWriter) Write(r model.Result) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
