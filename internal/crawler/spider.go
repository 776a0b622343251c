package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/pagecrawl/internal/model"
)

// ErrInvalidStartURL is returned by Crawl when the seed is not an absolute http(s) URL.
var ErrInvalidStartURL = errors.New("invalid start URL")

// Fetcher retrieves the markup of a page.
// Failures should be returned as errors; the Spider records them per page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Extractor turns markup into a page record.
type Extractor interface {
	Extract(body []byte, baseURL, selector string) (*model.PageRecord, error)
}

// Spider walks a site breadth-first from a seed URL.
// Pages are processed one at a time: fetch, extract, enqueue children, pause.
// A failing page becomes an error record and never aborts the crawl.
//
// A Spider may be reused for several crawls, but not concurrently. Use
// BatchCrawler to crawl several seeds at once.
type Spider struct {
	fetcher   Fetcher
	extractor Extractor

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of pages processed, failures included.
	maxPages int

	// delay is the pause after each processed page.
	delay time.Duration

	// rateLimit caps requests per second on top of delay. 0 disables it.
	rateLimit float64

	// sameOriginOnly restricts link following to the seed's origin.
	sameOriginOnly bool

	// selector is the CSS selector passed to the extractor.
	selector string

	// maxQueue bounds the frontier.
	maxQueue int

	// filter holds ignore/follow path patterns.
	filter pathFilter

	logger *slog.Logger

	// mu protects stats so Stats can be read while a crawl runs.
	mu    sync.Mutex
	stats Stats
}

// Stats contains crawl statistics for the most recent crawl.
type Stats struct {
	// PagesVisited is the number of pages processed, failures included.
	PagesVisited int

	// PagesFailed is the number of pages recorded with an error.
	PagesFailed int

	// LinksQueued is the number of links pushed onto the frontier.
	LinksQueued int

	// LinksDropped is the number of links discarded because the frontier was full.
	LinksDropped int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to process.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the pause after each processed page.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithRateLimit caps requests per second. 0 disables the limit.
func WithRateLimit(requestsPerSecond float64) SpiderOption {
	return func(s *Spider) {
		s.rateLimit = requestsPerSecond
	}
}

// WithSameOriginOnly restricts link following to the seed's scheme, host and port.
func WithSameOriginOnly(sameOrigin bool) SpiderOption {
	return func(s *Spider) {
		s.sameOriginOnly = sameOrigin
	}
}

// WithSelector sets the CSS selector whose matches are collected per page.
func WithSelector(selector string) SpiderOption {
	return func(s *Spider) {
		s.selector = selector
	}
}

// WithMaxQueue bounds the number of pending URLs.
func WithMaxQueue(n int) SpiderOption {
	return func(s *Spider) {
		s.maxQueue = n
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.ignore = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are queued.
// The seed itself is always fetched.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.follow = patterns
	}
}

// WithLogger sets the logger used to report progress.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that fetches with fetcher and extracts with extractor.
// Defaults: depth 0, 50 pages, 200ms delay, any origin, frontier of 10000.
func NewSpider(fetcher Fetcher, extractor Extractor, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:   fetcher,
		extractor: extractor,
		maxDepth:  0,
		maxPages:  50,
		delay:     200 * time.Millisecond,
		maxQueue:  DefaultMaxQueue,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl starts at startURL and returns one record per processed page, in
// processing order.
//
// The error is non-nil only when startURL is invalid or ctx is done. On
// cancellation the records collected so far are returned with ctx.Err().
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.PageRecord, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStartURL, err)
	}
	if (start.Scheme != "http" && start.Scheme != "https") || start.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidStartURL, startURL)
	}

	s.resetStats()
	pacer := NewPacer(s.delay, s.rateLimit)
	seed := model.FrontierNode{URL: start.String(), Depth: 0}

	s.logger.Debug("starting crawl",
		"url", seed.URL,
		"max_depth", s.maxDepth,
		"max_pages", s.maxPages,
		"delay", s.delay,
	)

	// Single-page mode: no frontier and no pause.
	if s.maxDepth == 0 {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		record, _, err := s.processNode(ctx, seed)
		if err != nil {
			return nil, err
		}
		return []*model.PageRecord{record}, nil
	}

	records := make([]*model.PageRecord, 0)
	visited := make(map[string]struct{})
	origin := originOf(start)

	frontier := NewFrontier(s.maxQueue)
	if err := frontier.Push(seed); err != nil {
		return nil, err
	}

	for frontier.Len() > 0 && len(visited) < s.maxPages {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		node, _ := frontier.Pop()
		if _, ok := visited[node.URL]; ok {
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			return records, err
		}

		record, links, err := s.processNode(ctx, node)
		if err != nil {
			return records, err
		}
		records = append(records, record)
		visited[node.URL] = struct{}{}

		if node.Depth < s.maxDepth {
			for _, link := range links {
				s.enqueue(frontier, visited, origin, link, node.Depth+1)
			}
		}

		if err := pacer.Pause(ctx); err != nil {
			return records, err
		}
	}

	s.logger.Debug("crawl finished",
		"url", seed.URL,
		"pages", len(records),
		"pending", frontier.Len(),
	)

	return records, nil
}

// processNode fetches and extracts one node. Fetch and extraction failures
// become error records; the returned error is non-nil only when ctx is done.
func (s *Spider) processNode(ctx context.Context, node model.FrontierNode) (*model.PageRecord, []string, error) {
	body, err := s.fetcher.Fetch(ctx, node.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return s.fail(node, err), nil, nil
	}

	record, err := s.extractor.Extract(body, node.URL, s.selector)
	if err != nil {
		return s.fail(node, fmt.Errorf("extract: %w", err)), nil, nil
	}
	record.URL = node.URL
	record.Depth = node.Depth

	s.mu.Lock()
	s.stats.PagesVisited++
	s.mu.Unlock()

	s.logger.Debug("page processed",
		"url", node.URL,
		"depth", node.Depth,
		"links", len(record.Links),
	)

	links := make([]string, 0, len(record.Links))
	for _, l := range record.Links {
		links = append(links, l.Href)
	}
	return record, links, nil
}

// fail records a failed node.
func (s *Spider) fail(node model.FrontierNode, err error) *model.PageRecord {
	s.mu.Lock()
	s.stats.PagesVisited++
	s.stats.PagesFailed++
	s.mu.Unlock()

	s.logger.Debug("page failed",
		"url", node.URL,
		"depth", node.Depth,
		"error", err,
	)
	return model.NewFailedRecord(node.URL, node.Depth, err)
}

// enqueue pushes link onto the frontier unless it is filtered out,
// already visited or already queued.
func (s *Spider) enqueue(frontier *Frontier, visited map[string]struct{}, seedOrigin, link string, depth int) {
	if s.sameOriginOnly && !sameOrigin(seedOrigin, link) {
		return
	}
	if _, ok := visited[link]; ok {
		return
	}
	if frontier.Contains(link) {
		return
	}
	if !s.filter.allows(link) {
		return
	}

	err := frontier.Push(model.FrontierNode{URL: link, Depth: depth})
	switch {
	case err == nil:
		s.mu.Lock()
		s.stats.LinksQueued++
		s.mu.Unlock()
	case errors.Is(err, ErrFrontierFull):
		s.mu.Lock()
		s.stats.LinksDropped++
		s.mu.Unlock()
		s.logger.Debug("frontier full, dropping link",
			"url", link,
			"capacity", frontier.Cap(),
		)
	}
}

// Stats returns statistics for the current or most recent crawl.
func (s *Spider) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// resetStats clears statistics at the start of a crawl.
func (s *Spider) resetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
}

// originOf returns "scheme://hostname:port" with the scheme and hostname
// lower-cased and the default port filled in.
func originOf(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	return scheme + "://" + strings.ToLower(u.Hostname()) + ":" + port
}

// sameOrigin reports whether targetURL has the given origin.
func sameOrigin(origin, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	return originOf(u) == origin
}
