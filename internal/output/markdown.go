/*
PURPOSE:
  Writes result tables as a Markdown report.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run, history --markdown)
  - Dependencies: github.com/nao1215/markdown

RELATED FILES:
  - internal/output/table.go
*/

package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nao1215/markdown"

	"github.com/daryltucker/qr-bench/internal/model"
)

// MarkdownWriter collects groups and renders them as one Markdown report.
// The document is written on Close so a partial run still produces a report.
type MarkdownWriter struct {
	output io.Writer
	closer io.Closer
	title  string
	start  time.Time

	mu     sync.Mutex
	groups []model.Group
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, title string) *MarkdownWriter {
	return &MarkdownWriter{output: output, title: title, start: time.Now()}
}

// NewMarkdownFile creates the report file at path.
func NewMarkdownFile(path, title string) (*MarkdownWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewMarkdownWriter(f, title)
	w.closer = f
	return w, nil
}

func (w *MarkdownWriter) WriteGroup(g model.Group) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.groups = append(w.groups, g)
	return nil
}

// Close renders the report and closes the file, if any.
func (w *MarkdownWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	md := markdown.NewMarkdown(w.output)
	md.H1(w.title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", w.start.Format("2006-01-02 15:04:05 MST")},
			{"Tables", fmt.Sprintf("%d", len(w.groups))},
		},
	})
	md.PlainText("")

	for _, g := range w.groups {
		md.H2(Caption(g))
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: TableHeader,
			Rows:   TableRows(g),
		})
		md.PlainText("")
	}

	err := md.Build()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
