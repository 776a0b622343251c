package model

import "encoding/json"

// PageRecord is the result of processing one frontier node.
// A record is either a success (content fields populated, Error empty) or
// a failure (only URL, Depth and Error populated).
//
// Records are immutable once produced by the engine. They are appended to
// the output list in the order nodes were processed.
type PageRecord struct {
	// URL is the exact URL that was dequeued and fetched.
	URL string `json:"url"`

	// Depth is the number of link hops from the seed URL.
	Depth int `json:"depth"`

	// Title is the trimmed text of the first <title> element.
	Title string `json:"title"`

	// Description is the content of the first "description" meta tag.
	Description string `json:"description"`

	// Metas maps lower-cased meta names to their content.
	Metas map[string]string `json:"metas"`

	// Links contains every <a href> resolved to an absolute URL.
	Links []Link `json:"links"`

	// Images contains every <img src> resolved to an absolute URL.
	Images []Image `json:"images"`

	// Selected contains the trimmed text of each element matching the
	// configured CSS selector, in document order.
	Selected []string `json:"selected"`

	// Error is the failure message for nodes whose fetch or extraction failed.
	Error string `json:"error,omitempty"`
}

// Link is an anchor found on a page.
type Link struct {
	// Href is the absolute URL the anchor points to.
	Href string `json:"href"`

	// Text is the whitespace-collapsed anchor text.
	Text string `json:"text"`
}

// Image is an image reference found on a page.
type Image struct {
	// Src is the absolute URL of the image.
	Src string `json:"src"`

	// Alt is the alt attribute, possibly empty.
	Alt string `json:"alt"`
}

// NewFailedRecord creates a record describing a node that could not be processed.
func NewFailedRecord(url string, depth int, err error) *PageRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &PageRecord{
		URL:   url,
		Depth: depth,
		Error: msg,
	}
}

// Failed reports whether the record describes a failed node.
func (r *PageRecord) Failed() bool {
	return r.Error != ""
}

// failedRecordJSON is the wire shape of a failed record.
// Content fields are absent rather than empty so consumers can tell a
// failed page from an empty one.
type failedRecordJSON struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
	Error string `json:"error"`
}

// MarshalJSON encodes failed records with url, depth and error only.
func (r PageRecord) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(failedRecordJSON{URL: r.URL, Depth: r.Depth, Error: r.Error})
	}

	// The alias drops the MarshalJSON method to avoid recursion.
	type recordAlias PageRecord
	alias := recordAlias(r)
	if alias.Metas == nil {
		alias.Metas = map[string]string{}
	}
	if alias.Links == nil {
		alias.Links = []Link{}
	}
	if alias.Images == nil {
		alias.Images = []Image{}
	}
	if alias.Selected == nil {
		alias.Selected = []string{}
	}
	return json.Marshal(alias)
}
