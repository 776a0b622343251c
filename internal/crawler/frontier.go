package crawler

import (
	"errors"

	"github.com/nao1215/pagecrawl/internal/model"
)

// DefaultMaxQueue is the frontier capacity used when none is configured.
const DefaultMaxQueue = 10000

var (
	// ErrFrontierFull is returned by Push when the frontier is at capacity.
	ErrFrontierFull = errors.New("frontier is full")

	// ErrAlreadyQueued is returned by Push when the URL is already pending.
	ErrAlreadyQueued = errors.New("url is already queued")
)

// Frontier is a bounded FIFO queue of pending nodes backed by a ring buffer.
// A set of queued URLs is kept alongside the buffer so that membership
// checks are O(1). A URL leaves the set when its node is popped.
//
// Frontier is not safe for concurrent use. Each Spider owns one.
type Frontier struct {
	buf    []model.FrontierNode
	head   int
	size   int
	queued map[string]struct{}
}

// NewFrontier creates an empty frontier that holds at most capacity nodes.
// A non-positive capacity uses DefaultMaxQueue.
func NewFrontier(capacity int) *Frontier {
	if capacity <= 0 {
		capacity = DefaultMaxQueue
	}
	return &Frontier{
		buf:    make([]model.FrontierNode, capacity),
		queued: make(map[string]struct{}),
	}
}

// Push appends node to the tail.
// It returns ErrAlreadyQueued if node.URL is pending, or ErrFrontierFull
// if the frontier is at capacity. The frontier is unchanged on error.
func (f *Frontier) Push(node model.FrontierNode) error {
	if _, ok := f.queued[node.URL]; ok {
		return ErrAlreadyQueued
	}
	if f.size == len(f.buf) {
		return ErrFrontierFull
	}
	f.buf[(f.head+f.size)%len(f.buf)] = node
	f.size++
	f.queued[node.URL] = struct{}{}
	return nil
}

// Pop removes and returns the head node. ok is false when the frontier is empty.
func (f *Frontier) Pop() (node model.FrontierNode, ok bool) {
	if f.size == 0 {
		return model.FrontierNode{}, false
	}
	node = f.buf[f.head]
	f.buf[f.head] = model.FrontierNode{}
	f.head = (f.head + 1) % len(f.buf)
	f.size--
	delete(f.queued, node.URL)
	return node, true
}

// Contains reports whether url is pending.
func (f *Frontier) Contains(url string) bool {
	_, ok := f.queued[url]
	return ok
}

// Len returns the number of pending nodes.
func (f *Frontier) Len() int {
	return f.size
}

// Cap returns the maximum number of pending nodes.
func (f *Frontier) Cap() int {
	return len(f.buf)
}
