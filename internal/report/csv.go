package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/pagecrawl/internal/model"
)

// csvHeader is the fixed column set of CSV output.
var csvHeader = []string{"url", "title", "description", "links_count", "images_count"}

// CSVWriter outputs one row per record.
// Fields containing a comma, quote or newline are quoted with internal
// quotes doubled (RFC 4180). Failed records have an empty title and
// description and zero counts.
type CSVWriter struct {
	baseWriter

	// errorColumn appends the record error as a sixth column.
	errorColumn bool
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithErrorColumn appends an "error" column so that failed pages can be
// told apart from empty ones.
func WithErrorColumn(enabled bool) CSVWriterOption {
	return func(w *CSVWriter) {
		w.errorColumn = enabled
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the header and one row per record.
func (w *CSVWriter) Write(records []*model.PageRecord) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	header := csvHeader
	if w.errorColumn {
		header = append(append([]string{}, csvHeader...), "error")
	}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}

	for _, r := range records {
		if err := cw.Write(w.row(r)); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// row converts a record into CSV fields.
func (w *CSVWriter) row(r *model.PageRecord) []string {
	row := []string{
		r.URL,
		r.Title,
		r.Description,
		strconv.Itoa(len(r.Links)),
		strconv.Itoa(len(r.Images)),
	}
	if r.Failed() {
		row[1], row[2], row[3], row[4] = "", "", "0", "0"
	}
	if w.errorColumn {
		row = append(row, r.Error)
	}
	return row
}
