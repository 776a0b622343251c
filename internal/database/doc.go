// Package database provides SQLite-based storage for pagecrawl runs.
//
// This package implements the CrawlDB, which stores:
//   - One row per crawled seed with timing and page counts
//   - The page records of each run, in output order, with a SHA3-256
//     fingerprint so that two runs of the same seed can be diffed
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// archive is a single file and the CGO-free driver cross-compiles easily.
//
// The crawler never reads the archive. It is history, not crawl state.
package database
