package progress

import (
	"context"
	"sort"
	"sync"
)

// Registry keeps one Tracker per learner so that all requests of a learner
// share the same in-memory state.
type Registry struct {
	store Store
	conf  TrackerConfig

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewRegistry(store Store, conf TrackerConfig) *Registry {
	return &Registry{
		store:    store,
		conf:     conf,
		trackers: make(map[string]*Tracker),
	}
}

// Tracker returns the learner's tracker, creating it on first use.
func (r *Registry) Tracker(learnerID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[learnerID]
	if !ok {
		t = NewTracker(learnerID, r.store, r.conf)
		r.trackers[learnerID] = t
	}
	return t
}

// Peek returns the learner's registered tracker, or an unregistered one reading
// straight from the store. Peek never adds to or replaces the registered trackers,
// so no request can be left writing through a tracker the registry dropped.
func (r *Registry) Peek(learnerID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[learnerID]; ok {
		return t
	}
	return NewTracker(learnerID, r.store, r.conf)
}

// Flush retries the pending saves of every tracker and returns the first error.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.Lock()
	learnerIDs := make([]string, 0, len(r.trackers))
	for id := range r.trackers {
		learnerIDs = append(learnerIDs, id)
	}
	r.mu.Unlock()
	sort.Strings(learnerIDs)

	var firstErr error
	for _, id := range learnerIDs {
		if err := r.Tracker(id).Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
