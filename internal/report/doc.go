// Package report serializes crawl results.
//
// This package contains writers for different output formats:
//   - JSONWriter: pretty-printed array of full page records
//   - CSVWriter: one row per page with url, title, description and counts
//   - MarkdownWriter: summary, status chart and per-page table for sharing
//
// Writers implement the Writer interface, so the CLI picks one with
// NewWriter and never depends on a concrete format.
package report
