package scheduler

import "sync"

// inflightRegistry guards against overlapping runs of the same check. A tick
// that fires while the previous run is still going is dropped, not queued.
type inflightRegistry struct {
	mu     sync.Mutex
	active map[checkKey]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{active: make(map[checkKey]struct{})}
}

func (r *inflightRegistry) tryAcquire(key checkKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[key]; ok {
		return false
	}
	r.active[key] = struct{}{}
	return true
}

func (r *inflightRegistry) release(key checkKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}
