// Package crawler implements the bounded breadth-first traversal engine.
//
// # Architecture
//
// The Spider coordinates one crawl. It owns a Frontier (a bounded FIFO of
// pending URLs) and a visited set, and for each node it runs
// fetch -> extract -> enqueue children -> pause. Fetching and extraction are
// injected through the Fetcher and Extractor interfaces.
//
// # Components
//
//   - Spider: the traversal loop with depth, page-count and origin limits
//   - Frontier: ring buffer with an O(1) queued set; full pushes fail with ErrFrontierFull
//   - Pacer: fixed delay after each page plus an optional token bucket
//   - BatchCrawler: several seeds, one Spider each, bounded by errgroup
//
// # Limits
//
//   - Depth 0 fetches only the seed, with no frontier and no pause
//   - At most maxPages pages are processed; failures count
//   - A URL is processed at most once (exact string match)
//   - With same-origin on, only links sharing scheme, host and port are queued
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher, extract.New(), crawler.WithMaxDepth(2))
//	records, err := spider.Crawl(ctx, "https://example.com/")
package crawler
