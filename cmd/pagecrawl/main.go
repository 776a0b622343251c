// Package main provides the entry point for the pagecrawl CLI.
//
// pagecrawl is a bounded, polite web crawler. It fetches a start URL,
// follows links breadth-first up to a depth and page limit, and writes one
// record per page (title, description, meta tags, links, images and CSS
// selector matches) as JSON, CSV or Markdown.
//
// Usage:
//
//	pagecrawl crawl <url> [url...]
//	pagecrawl history <url>
//
// See --help for all available options.
package main

// main is the entry point for pagecrawl.
func main() {
	Execute()
}
