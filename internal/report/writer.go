package report

import (
	"fmt"
	"io"

	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/model"
)

// Writer renders scrape results.
type Writer interface {
	// Write outputs one result.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.ScrapeResult) (int, error)

	// WriteAll outputs a list of results, newest first as given.
	WriteAll(results []*model.ScrapeResult) (int, error)
}

// New returns the Writer for format.
func New(format config.OutputFormat, output io.Writer) (Writer, error) {
	switch format {
	case config.OutputJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case config.OutputMarkdown:
		return NewMarkdownWriter(output), nil
	case config.OutputTable, "":
		return NewTableWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidOutputFormat, format)
	}
}

// MultiWriter writes to multiple Writers in order and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write implements Writer.
func (m *MultiWriter) Write(result *model.ScrapeResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll implements Writer.
func (m *MultiWriter) WriteAll(results []*model.ScrapeResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// emptySlot is printed for a trend slot without a topic.
const emptySlot = "-"

// slotText returns the topic of slot i or emptySlot.
func slotText(r *model.ScrapeResult, i int) string {
	if topic, ok := r.Slot(i); ok {
		return topic
	}
	return emptySlot
}
