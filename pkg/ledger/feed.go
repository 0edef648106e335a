package ledger

import (
	"sync"

	"github.com/shophabesha/shophabesha/pkg/models"
)

// Snapshot is a complete replacement view of one shop's sale records.
// Subscribers must not retain or mutate the slice across notifications;
// each snapshot supersedes the last.
type Snapshot struct {
	ShopID  string
	Records []*models.SaleRecord
}

// Feed fans full snapshots out to registered subscribers after every
// mutation. It replaces the implicit re-subscription lifecycle of the
// original client: consumers register explicitly and get an unsubscribe
// handle back.
type Feed struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(Snapshot)
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subscribers: make(map[int]func(Snapshot))}
}

// Subscribe registers fn to receive every published snapshot and returns
// a function that removes the subscription.
func (f *Feed) Subscribe(fn func(Snapshot)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subscribers[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subscribers, id)
	}
}

// Publish delivers a snapshot to every subscriber, synchronously and in
// no particular order.
func (f *Feed) Publish(snapshot Snapshot) {
	f.mu.Lock()
	fns := make([]func(Snapshot), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
