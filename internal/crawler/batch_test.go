package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/pagecrawl/internal/extract"
)

// TestBatchCrawler tests crawling several seeds.
func TestBatchCrawler(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"https://a.test/":  page("A", "/1"),
		"https://a.test/1": page("A1"),
		"https://b.test/":  page("B", "/1"),
		"https://b.test/1": page("B1"),
		"https://c.test/":  page("C"),
	}

	t.Run("results follow seed order", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(pages)
		factory := func(string) (*Spider, error) {
			return NewSpider(f, extract.New(), WithMaxDepth(1), WithDelay(10*time.Millisecond)), nil
		}
		batch := NewBatchCrawler(factory, WithConcurrency(3))

		seeds := []string{"https://c.test/", "https://a.test/", "https://b.test/"}
		results, err := batch.Crawl(context.Background(), seeds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		wantPages := []int{1, 2, 2}
		for i, r := range results {
			if r.Seed != seeds[i] {
				t.Errorf("position %d: expected seed %s, got %s", i, seeds[i], r.Seed)
			}
			if r.Err != nil {
				t.Errorf("seed %s: unexpected error %v", r.Seed, r.Err)
			}
			if len(r.Records) != wantPages[i] {
				t.Errorf("seed %s: expected %d records, got %d", r.Seed, wantPages[i], len(r.Records))
			}
			if r.Stats.PagesVisited != wantPages[i] {
				t.Errorf("seed %s: expected stats for %d pages, got %+v", r.Seed, wantPages[i], r.Stats)
			}
			if r.FinishedAt.Before(r.StartedAt) {
				t.Errorf("seed %s: finished before start", r.Seed)
			}
		}
	})

	t.Run("invalid seed does not stop others", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher(pages)
		factory := func(string) (*Spider, error) {
			return NewSpider(f, extract.New(), WithDelay(0)), nil
		}
		batch := NewBatchCrawler(factory, WithConcurrency(2))

		results, err := batch.Crawl(context.Background(), []string{"ftp://bad", "https://c.test/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(results[0].Err, ErrInvalidStartURL) {
			t.Errorf("expected ErrInvalidStartURL, got %v", results[0].Err)
		}
		if results[1].Err != nil || len(results[1].Records) != 1 {
			t.Errorf("expected second seed to succeed, got %+v", results[1])
		}
	})

	t.Run("cancelled batch reports context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := newFakeFetcher(pages)
		batch := NewBatchCrawler(func(string) (*Spider, error) {
			return NewSpider(f, extract.New(), WithDelay(0)), nil
		})

		results, err := batch.Crawl(ctx, []string{"https://a.test/", "https://b.test/"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		for _, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("seed %s: expected context.Canceled, got %v", r.Seed, r.Err)
			}
		}
		if calls := f.fetched(); len(calls) != 0 {
			t.Errorf("expected no fetches, got %v", calls)
		}
	})

	t.Run("factory error is kept per seed", func(t *testing.T) {
		t.Parallel()

		errBuild := errors.New("bad proxy")
		f := newFakeFetcher(pages)
		batch := NewBatchCrawler(func(seed string) (*Spider, error) {
			if seed == "https://a.test/" {
				return nil, errBuild
			}
			return NewSpider(f, extract.New(), WithDelay(0)), nil
		}, WithConcurrency(2))

		results, err := batch.Crawl(context.Background(), []string{"https://a.test/", "https://c.test/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(results[0].Err, errBuild) || len(results[0].Records) != 0 {
			t.Errorf("expected build error for first seed, got %+v", results[0])
		}
		if results[1].Err != nil || len(results[1].Records) != 1 {
			t.Errorf("expected second seed to succeed, got %+v", results[1])
		}
	})

	t.Run("default concurrency is 1", func(t *testing.T) {
		t.Parallel()

		batch := NewBatchCrawler(nil, WithConcurrency(0))
		if batch.concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", batch.concurrency)
		}
	})
}
