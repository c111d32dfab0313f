package notify

import "sync"

// Tracker remembers which follow-up ids this process has already raised a
// reminder for. It is owned by the Scheduler, never persisted, and never
// pruned: each process instance notifies a given follow-up at most once, and
// a restart may notify again if the item is still inside the due window.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

func (t *Tracker) Seen(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[id]
	return ok
}

func (t *Tracker) Mark(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[id] = struct{}{}
}
