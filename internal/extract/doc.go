// Package extract turns raw HTML into a model.PageRecord.
//
// # What is extracted
//
//   - Title: text of the first <title> element
//   - Metas: <meta> name/property/http-equiv keys, lower-cased, first occurrence wins
//   - Description: the "description" meta
//   - Links: <a href> resolved to absolute http(s) URLs, with collapsed anchor text
//   - Images: <img src> resolved to absolute http(s) URLs, with alt text
//   - Selected: trimmed text of elements matching an optional CSS selector
//
// Hrefs that cannot be resolved are dropped silently. They never fail the page.
//
// # Usage
//
//	record, err := extract.Extract(body, "https://example.com/docs/", "article h2")
package extract
