package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pagecrawl/internal/model"
)

const defaultMarkdownTitle = "Crawl Report"

// MarkdownWriter outputs records in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTitle sets the top-level heading. Empty keeps the default.
func WithTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		if title != "" {
			w.title = title
		}
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      defaultMarkdownTitle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs a summary, a status chart and one table row per record.
func (w *MarkdownWriter) Write(records []*model.PageRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.title)
	md.PlainText("")

	failed := countFailed(records)
	w.writeSummary(md, records, failed)
	w.writePages(md, records)
	w.writeSelections(md, records)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeSummary writes the totals table, the status chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, records []*model.PageRecord, failed int) {
	seed := "-"
	if len(records) > 0 {
		seed = "`" + records[0].URL + "`"
	}

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", seed},
			{"Pages", strconv.Itoa(len(records))},
			{"Succeeded", strconv.Itoa(len(records) - failed)},
			{"Failed", strconv.Itoa(failed)},
			{"Max Depth Reached", strconv.Itoa(maxDepth(records))},
		},
	})
	md.PlainText("")

	if len(records) > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Page Status"),
			piechart.WithShowData(true),
		)
		if ok := len(records) - failed; ok > 0 {
			chart.LabelAndIntValue("OK", uint64(ok))
		}
		if failed > 0 {
			chart.LabelAndIntValue("Failed", uint64(failed))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case len(records) == 0:
		md.Note("No pages were crawled.")
	case failed > 0:
		md.Warningf("%d of %d page(s) could not be fetched or parsed.", failed, len(records))
	default:
		md.Tip("All pages were fetched successfully.")
	}
	md.PlainText("")
}

// writePages writes one table row per record.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, records []*model.PageRecord) {
	md.H2("Pages")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No pages.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		status := "OK"
		title := r.Title
		if r.Failed() {
			status = "Error: " + r.Error
			title = ""
		}
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			escapeCell(r.URL),
			strconv.Itoa(r.Depth),
			escapeCell(truncateString(title, 60)),
			strconv.Itoa(len(r.Links)),
			strconv.Itoa(len(r.Images)),
			escapeCell(truncateString(status, 60)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Depth", "Title", "Links", "Images", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSelections lists selector matches for pages that have any.
func (w *MarkdownWriter) writeSelections(md *markdown.Markdown, records []*model.PageRecord) {
	var withSelections []*model.PageRecord
	for _, r := range records {
		if len(r.Selected) > 0 {
			withSelections = append(withSelections, r)
		}
	}
	if len(withSelections) == 0 {
		return
	}

	md.H2("Selected Content")
	md.PlainText("")
	for _, r := range withSelections {
		md.H3(r.URL)
		md.PlainText("")
		md.BulletList(r.Selected...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pagecrawl](https://github.com/nao1215/pagecrawl)*")
}

// countFailed returns the number of failed records.
func countFailed(records []*model.PageRecord) int {
	n := 0
	for _, r := range records {
		if r.Failed() {
			n++
		}
	}
	return n
}

// maxDepth returns the deepest record depth.
func maxDepth(records []*model.PageRecord) int {
	d := 0
	for _, r := range records {
		if r.Depth > d {
			d = r.Depth
		}
	}
	return d
}

// escapeCell keeps pipes and newlines from breaking table rows.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
