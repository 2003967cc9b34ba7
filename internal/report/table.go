package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/trendscan/internal/model"
)

// TableWriter outputs results as a terminal table.
type TableWriter struct {
	baseWriter

	style table.Style
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{
		baseWriter: newBaseWriter(output),
		style:      table.StyleRounded,
	}
}

// Write implements Writer.
func (w *TableWriter) Write(result *model.ScrapeResult) (int, error) {
	if result == nil {
		return io.WriteString(w.output, "No data available.\n")
	}

	t := w.newTable()
	t.SetTitle("Trending topics at " + result.Timestamp + " via " + result.IPAddress)
	t.AppendHeader(table.Row{"Rank", "Topic"})
	for i := 1; i <= model.MaxTrends; i++ {
		t.AppendRow(table.Row{i, slotText(result, i)})
	}
	return w.render(t)
}

// WriteAll implements Writer.
func (w *TableWriter) WriteAll(results []*model.ScrapeResult) (int, error) {
	if len(results) == 0 {
		return io.WriteString(w.output, "No data available.\n")
	}

	t := w.newTable()
	header := table.Row{}
	for _, h := range historyHeader() {
		header = append(header, h)
	}
	t.AppendHeader(header)
	for _, cols := range historyRows(results, func(s string) string { return s }) {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[i] = c
		}
		t.AppendRow(row)
	}
	return w.render(t)
}

func (w *TableWriter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(w.style)
	return t
}

func (w *TableWriter) render(t table.Writer) (int, error) {
	return io.WriteString(w.output, t.Render()+"\n")
}
