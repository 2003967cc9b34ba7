package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/trendscan/internal/model"
)

// MarkdownWriter outputs results in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(result *model.ScrapeResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Trending Topics")
	md.PlainText("")

	if result == nil {
		md.Note("No data available.")
		return len(md.String()), md.Build()
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + result.ID + "`"},
			{"Fetched At", result.Timestamp},
			{"Egress Proxy", "`" + result.IPAddress + "`"},
		},
	})
	md.PlainText("")

	rows := make([][]string, 0, model.MaxTrends)
	for i := 1; i <= model.MaxTrends; i++ {
		rows = append(rows, []string{strconv.Itoa(i), slotText(result, i)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Topic"},
		Rows:   rows,
	})
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll implements Writer.
func (w *MarkdownWriter) WriteAll(results []*model.ScrapeResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Trend History")
	md.PlainText("")

	if len(results) == 0 {
		md.Note("No data available.")
		return len(md.String()), md.Build()
	}

	md.Table(markdown.TableSet{
		Header: historyHeader(),
		Rows:   historyRows(results, func(s string) string { return "`" + s + "`" }),
	})
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by trendscan*")
}

func historyHeader() []string {
	return []string{"Fetched At", "Egress Proxy", "#1", "#2", "#3", "#4", "#5"}
}

// historyRows flattens results into one row each. quote decorates the
// proxy column.
func historyRows(results []*model.ScrapeResult, quote func(string) string) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{r.Timestamp, quote(r.IPAddress)}
		for i := 1; i <= model.MaxTrends; i++ {
			row = append(row, slotText(r, i))
		}
		rows = append(rows, row)
	}
	return rows
}
