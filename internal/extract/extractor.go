package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pagecrawl/internal/model"
)

// metaKeyAttrs are the attributes that name a <meta> tag, in lookup order.
// OpenGraph uses property, and pragma directives use http-equiv.
var metaKeyAttrs = []string{"name", "property", "http-equiv"}

// Extractor extracts page records from HTML.
// The zero value is ready to use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses body and builds a record for baseURL. See the package-level Extract.
func (e *Extractor) Extract(body []byte, baseURL, selector string) (*model.PageRecord, error) {
	return Extract(body, baseURL, selector)
}

// ValidateSelector reports whether selector is a valid CSS selector.
func ValidateSelector(selector string) error {
	if _, err := cascadia.Compile(selector); err != nil {
		return fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return nil
}

// Extract parses body and builds a record for baseURL.
// Relative hrefs and srcs are resolved against baseURL. When selector is
// non-empty, the trimmed text of every matching element is collected in
// document order.
//
// Extract returns an error only when baseURL or selector is invalid.
// Malformed markup is parsed leniently, the way browsers do.
func Extract(body []byte, baseURL, selector string) (*model.PageRecord, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var matcher goquery.Matcher
	if selector != "" {
		sel, err := cascadia.Compile(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
		}
		matcher = sel
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	p := &parser{
		base:  base,
		lower: cases.Lower(language.Und),
		record: &model.PageRecord{
			URL:      baseURL,
			Metas:    make(map[string]string),
			Links:    make([]model.Link, 0),
			Images:   make([]model.Image, 0),
			Selected: make([]string, 0),
		},
	}
	p.walk(doc)
	p.record.Description = p.record.Metas["description"]

	if matcher != nil {
		goquery.NewDocumentFromNode(doc).FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
			p.record.Selected = append(p.record.Selected, strings.TrimSpace(s.Text()))
		})
	}

	return p.record, nil
}

// parser holds the state of a single extraction pass.
type parser struct {
	base     *url.URL
	lower    cases.Caser
	record   *model.PageRecord
	hasTitle bool
}

// walk visits every node of the tree in document order.
func (p *parser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		p.processElement(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

// processElement handles HTML element nodes.
func (p *parser) processElement(n *html.Node) {
	switch n.Data {
	case "title":
		if !p.hasTitle {
			p.hasTitle = true
			p.record.Title = strings.TrimSpace(textContent(n))
		}

	case "meta":
		content := getAttr(n, "content")
		if content == "" {
			return
		}
		for _, attr := range metaKeyAttrs {
			key := strings.TrimSpace(getAttr(n, attr))
			if key == "" {
				continue
			}
			key = p.lower.String(key)
			if _, ok := p.record.Metas[key]; !ok {
				p.record.Metas[key] = content
			}
			return
		}

	case "a":
		href, ok := lookupAttr(n, "href")
		if !ok {
			return
		}
		if resolved := p.resolveURL(href); resolved != "" {
			p.record.Links = append(p.record.Links, model.Link{
				Href: resolved,
				Text: strings.Join(strings.Fields(textContent(n)), " "),
			})
		}

	case "img":
		src, ok := lookupAttr(n, "src")
		if !ok {
			return
		}
		if resolved := p.resolveURL(src); resolved != "" {
			p.record.Images = append(p.record.Images, model.Image{
				Src: resolved,
				Alt: getAttr(n, "alt"),
			})
		}
	}
}

// resolveURL resolves ref against the base URL.
// It returns "" for refs that fail to parse or do not resolve to http(s),
// such as "javascript:" and "mailto:" links, and for same-page "#" anchors.
// Fragments are stripped from the result.
func (p *parser) resolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	resolved := p.base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// textContent concatenates all text nodes below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

// lookupAttr is like getAttr but also reports whether the attribute exists.
func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
