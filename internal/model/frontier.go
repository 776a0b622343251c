package model

// FrontierNode is a discovered URL waiting to be crawled.
// Nodes are created when a link is discovered (or for the seed) and are
// never mutated afterwards.
type FrontierNode struct {
	// URL is the absolute URL to fetch.
	URL string

	// Depth is the number of link hops from the seed. The seed has depth 0.
	Depth int
}
