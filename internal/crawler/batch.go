package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pagecrawl/internal/model"
)

// SeedResult is the outcome of crawling one seed in a batch.
type SeedResult struct {
	// Seed is the start URL as given.
	Seed string

	// Records are the pages processed for this seed, in processing order.
	Records []*model.PageRecord

	// Stats are the spider statistics for this seed.
	Stats Stats

	// StartedAt and FinishedAt bound the crawl of this seed.
	StartedAt  time.Time
	FinishedAt time.Time

	// Err is set when the seed was invalid or its crawl was cancelled.
	// Records may still hold the pages collected before cancellation.
	Err error
}

// BatchCrawler crawls several seeds, each with its own Spider.
// Spiders never share frontier or visited state. At most Concurrency
// seeds are crawled at once; each one is still processed serially.
type BatchCrawler struct {
	// spiderFactory creates a fresh spider per seed.
	spiderFactory SpiderFactory

	concurrency int
	logger      *slog.Logger
}

// SpiderFactory builds the spider for one seed. An error is recorded as
// that seed's result and does not stop the batch.
type SpiderFactory func(seed string) (*Spider, error)

// BatchOption configures a BatchCrawler.
type BatchOption func(*BatchCrawler)

// WithConcurrency sets the maximum number of seeds crawled at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchCrawler) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch progress.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchCrawler) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBatchCrawler creates a BatchCrawler. spiderFactory is called once per
// seed so that per-site settings can be applied.
func NewBatchCrawler(spiderFactory SpiderFactory, opts ...BatchOption) *BatchCrawler {
	b := &BatchCrawler{
		spiderFactory: spiderFactory,
		concurrency:   1,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Crawl crawls every seed and returns the results in seed order.
// A failing seed does not stop the others; its error is kept in its result.
// The returned error is ctx.Err() when the batch was cancelled.
func (b *BatchCrawler) Crawl(ctx context.Context, seeds []string) ([]*SeedResult, error) {
	b.logger.Debug("starting batch crawl",
		"seeds", len(seeds),
		"concurrency", b.concurrency,
	)

	// Pre-allocate results slice to maintain order
	results := make([]*SeedResult, len(seeds))

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			result := &SeedResult{Seed: seed, StartedAt: time.Now()}
			results[i] = result

			if err := ctx.Err(); err != nil {
				result.Err = err
				result.FinishedAt = time.Now()
				return nil
			}

			spider, err := b.spiderFactory(seed)
			if err == nil {
				result.Records, result.Err = spider.Crawl(ctx, seed)
				result.Stats = spider.Stats()
			} else {
				result.Err = err
			}
			result.FinishedAt = time.Now()

			if result.Err != nil {
				b.logger.Warn("crawl failed",
					"seed", seed,
					"error", result.Err,
				)
				return nil
			}

			b.logger.Debug("crawl completed",
				"seed", seed,
				"pages", len(result.Records),
				"failed", result.Stats.PagesFailed,
			)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	return results, ctx.Err()
}
