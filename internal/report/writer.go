package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/pagecrawl/internal/model"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer defines the interface for report output.
type Writer interface {
	// Write serializes records to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(records []*model.PageRecord) (int, error)
}

// Options holds format-specific settings for NewWriter.
type Options struct {
	// CSVErrorColumn appends an "error" column to CSV output.
	CSVErrorColumn bool

	// Title is the heading of Markdown output. Empty uses a default.
	Title string
}

// NewWriter returns the Writer for format.
func NewWriter(format string, output io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatCSV:
		return NewCSVWriter(output, WithErrorColumn(opts.CSVErrorColumn)), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output, WithTitle(opts.Title)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// OpenOutput opens the report destination. An empty path means stdout,
// which is not closed by the returned closer. Otherwise parent directories
// are created and the file is truncated.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// nopCloser keeps stdout open when the report is done.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
