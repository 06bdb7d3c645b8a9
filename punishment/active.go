package punishment

import "sync"

// ActiveSet tracks the users currently under one reversible sanction kind.
// Remove is the atomic check-then-act used to arbitrate between a manual
// reversal and a concurrently firing auto-reversal timer.
type ActiveSet struct {
	mu      sync.Mutex
	members map[string]struct{}
}

func NewActiveSet() *ActiveSet {
	return &ActiveSet{members: make(map[string]struct{})}
}

func (a *ActiveSet) Add(userID string) {
	a.mu.Lock()
	a.members[userID] = struct{}{}
	a.mu.Unlock()
}

func (a *ActiveSet) Contains(userID string) bool {
	a.mu.Lock()
	_, ok := a.members[userID]
	a.mu.Unlock()
	return ok
}

// Remove deletes userID and reports whether it was present. Whichever of two
// racing callers gets true owns the reversal; the other must no-op.
func (a *ActiveSet) Remove(userID string) bool {
	a.mu.Lock()
	_, ok := a.members[userID]
	if ok {
		delete(a.members, userID)
	}
	a.mu.Unlock()
	return ok
}
