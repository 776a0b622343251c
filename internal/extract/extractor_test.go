package extract

import (
	"reflect"
	"testing"
)

// TestExtract tests extraction of page records from HTML.
func TestExtract(t *testing.T) {
	t.Parallel()

	const base = "https://example.com/docs/index.html"

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>  Test Page </title><title>Second</title></head><body></body></html>`
		record, err := Extract([]byte(html), base, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", record.Title)
		}
		if record.URL != base {
			t.Errorf("expected URL %q, got %q", base, record.URL)
		}
	})

	t.Run("extracts meta tags with lower-cased keys", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta name="Description" content="First description">
			<meta name="description" content="Second description">
			<meta property="og:Title" content="OG title">
			<meta http-equiv="Content-Language" content="en">
			<meta name="keywords" content="">
			<meta charset="utf-8">
		</head></html>`

		record, err := Extract([]byte(html), base, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if record.Description != "First description" {
			t.Errorf("expected first description to win, got %q", record.Description)
		}
		want := map[string]string{
			"description":      "First description",
			"og:title":         "OG title",
			"content-language": "en",
		}
		if !reflect.DeepEqual(record.Metas, want) {
			t.Errorf("expected metas %v, got %v", want, record.Metas)
		}
	})

	t.Run("resolves links against base URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about">About   <b>us</b></a>
			<a href="guide.html#intro">Guide</a>
			<a href="https://other.test/x">Other</a>
			<a href="mailto:me@example.com">Mail</a>
			<a href="javascript:void(0)">JS</a>
			<a href="#top">Top</a>
			<a href="http://[::1">Broken</a>
			<a>No href</a>
		</body></html>`

		record, err := Extract([]byte(html), base, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(record.Links) != 3 {
			t.Fatalf("expected 3 links, got %d: %v", len(record.Links), record.Links)
		}
		if record.Links[0].Href != "https://example.com/about" || record.Links[0].Text != "About us" {
			t.Errorf("unexpected first link: %+v", record.Links[0])
		}
		if record.Links[1].Href != "https://example.com/docs/guide.html" {
			t.Errorf("expected fragment to be dropped, got %q", record.Links[1].Href)
		}
		if record.Links[2].Href != "https://other.test/x" {
			t.Errorf("expected absolute link kept, got %q", record.Links[2].Href)
		}
	})

	t.Run("extracts images with alt text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<img src="logo.png" alt="Logo">
			<img src="//cdn.example.com/a.jpg">
			<img src="data:image/png;base64,AAAA" alt="inline">
		</body></html>`

		record, err := Extract([]byte(html), base, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(record.Images) != 2 {
			t.Fatalf("expected 2 images, got %d: %v", len(record.Images), record.Images)
		}
		if record.Images[0].Src != "https://example.com/docs/logo.png" || record.Images[0].Alt != "Logo" {
			t.Errorf("unexpected first image: %+v", record.Images[0])
		}
		if record.Images[1].Src != "https://cdn.example.com/a.jpg" || record.Images[1].Alt != "" {
			t.Errorf("unexpected second image: %+v", record.Images[1])
		}
	})

	t.Run("collects selector matches in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<h2 class="t"> One </h2>
			<div><h2 class="t">Two</h2></div>
			<h2>Skipped</h2>
		</body></html>`

		record, err := Extract([]byte(html), base, "h2.t")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"One", "Two"}
		if !reflect.DeepEqual(record.Selected, want) {
			t.Errorf("expected %v, got %v", want, record.Selected)
		}
	})

	t.Run("empty selector yields empty list", func(t *testing.T) {
		t.Parallel()

		record, err := Extract([]byte(`<p>text</p>`), base, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Selected == nil || len(record.Selected) != 0 {
			t.Errorf("expected empty non-nil list, got %#v", record.Selected)
		}
		if record.Links == nil || record.Images == nil || record.Metas == nil {
			t.Error("expected collections to be initialized")
		}
	})

	t.Run("invalid selector returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := Extract([]byte(`<p>x</p>`), base, "div["); err == nil {
			t.Error("expected error for invalid selector")
		}
	})

	t.Run("invalid base URL returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := Extract([]byte(`<p>x</p>`), "http://[::1", ""); err == nil {
			t.Error("expected error for invalid base URL")
		}
	})

	t.Run("malformed HTML is tolerated", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Broken<body><a href="/x">x</a`
		if _, err := Extract([]byte(html), base, ""); err != nil {
			t.Errorf("expected lenient parsing, got %v", err)
		}
	})
}

// TestExtractorMethod tests that the Extractor type delegates to Extract.
func TestExtractorMethod(t *testing.T) {
	t.Parallel()

	record, err := New().Extract([]byte(`<title>T</title>`), "https://example.com/", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Title != "T" {
		t.Errorf("expected title 'T', got %q", record.Title)
	}
}

// TestValidateSelector tests CSS selector validation.
func TestValidateSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector string
		wantErr  bool
	}{
		{selector: "h1", wantErr: false},
		{selector: "article > p.lead", wantErr: false},
		{selector: "a[href^='https']", wantErr: false},
		{selector: "h1, h2", wantErr: false},
		{selector: "div[", wantErr: true},
		{selector: ":::", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			t.Parallel()
			err := ValidateSelector(tt.selector)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSelector(%q) error = %v, wantErr %v", tt.selector, err, tt.wantErr)
			}
		})
	}
}
