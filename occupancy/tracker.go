// Package occupancy maintains the in-memory cache of claimed raffle numbers.
// The cache has no authority: the persistence service owns the tickets, and
// two buyers refreshing at different times can still race each other.
package occupancy

import (
	"context"
	"sort"
	"sync"

	"rifa/entity"
	"rifa/metrics"
)

type NumbersSource interface {
	// OccupiedNumbers is the restricted read: claimed numbers only, no buyer data.
	OccupiedNumbers(ctx context.Context) ([]int, error)
	// FetchTickets is the operator read: full rows, used for the admin dashboard.
	FetchTickets(ctx context.Context) ([]entity.Ticket, error)
}

type Tracker struct {
	source NumbersSource

	lock    sync.RWMutex
	claimed map[int]struct{}
	stale   bool
}

func NewTracker(source NumbersSource) *Tracker {
	if source == nil {
		panic("missing numbers source")
	}
	return &Tracker{
		source:  source,
		claimed: map[int]struct{}{},
		stale:   true,
	}
}

// Refresh rebuilds the set from the restricted query. On failure the previous
// set is kept and marked stale: a stale grid beats one that shows every number
// as available.
func (t *Tracker) Refresh(ctx context.Context) error {
	numbers, err := t.source.OccupiedNumbers(ctx)
	if err != nil {
		t.markStale()
		return err
	}

	t.replace(numbers)
	return nil
}

// RefreshFull rebuilds the set from the full ticket list and returns the
// tickets for the operator dashboard.
func (t *Tracker) RefreshFull(ctx context.Context) ([]entity.Ticket, error) {
	tickets, err := t.source.FetchTickets(ctx)
	if err != nil {
		t.markStale()
		return nil, err
	}

	var numbers []int
	for _, ticket := range tickets {
		numbers = append(numbers, ticket.Numbers...)
	}

	t.replace(numbers)
	return tickets, nil
}

// MarkClaimed adds the numbers of a just-persisted ticket without a round trip.
// Idempotent: claiming the same set twice leaves the cache unchanged.
func (t *Tracker) MarkClaimed(numbers []int) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, n := range numbers {
		t.claimed[n] = struct{}{}
	}
	metrics.OccupiedNumbers.Set(float64(len(t.claimed)))
}

// Release reconciles after a ticket deletion. A full refresh is used instead
// of local subtraction: deletion is operator-only, so a re-sync is affordable
// and safer than trusting partial local state.
func (t *Tracker) Release(ctx context.Context, _ []int) error {
	return t.Refresh(ctx)
}

func (t *Tracker) IsClaimed(n int) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	_, ok := t.claimed[n]
	return ok
}

// Claimed returns a sorted snapshot of the occupancy set.
func (t *Tracker) Claimed() []int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	numbers := make([]int, 0, len(t.claimed))
	for n := range t.claimed {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

func (t *Tracker) Count() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return len(t.claimed)
}

// Stale reports whether the last reconciliation attempt failed.
func (t *Tracker) Stale() bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.stale
}

func (t *Tracker) replace(numbers []int) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.claimed = make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		t.claimed[n] = struct{}{}
	}
	t.stale = false
	metrics.OccupiedNumbers.Set(float64(len(t.claimed)))
}

func (t *Tracker) markStale() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.stale = true
}
