// Package model defines the data structures shared by the crawler packages.
//
// This package contains the following main types:
//   - FrontierNode: A URL waiting to be crawled together with its link depth
//   - PageRecord: The result of processing one frontier node
//   - Link and Image: Resolved references extracted from a page
//
// Design decision: We keep models in their own package so that the engine,
// the extractor, the reporters and the archive can share them without
// importing each other.
package model
