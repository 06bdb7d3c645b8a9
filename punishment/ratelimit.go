package punishment

import (
	"sync"
	"time"

	"moderation-bot/model"
)

type rateEntry struct {
	At   time.Time
	Kind model.PunishmentKind
}

// RateLimiter caps punitive actions per moderator over a trailing window.
// Entries are filtered against the cutoff at query time; the optional Prune
// pass only bounds memory and never changes the answer.
type RateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]rateEntry
	now     func() time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		entries: make(map[string][]rateEntry),
		now:     time.Now,
	}
}

// Limited reports whether the moderator has reached the cap inside the
// trailing window.
func (r *RateLimiter) Limited(moderatorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	recent := 0
	for _, e := range r.entries[moderatorID] {
		if e.At.After(cutoff) {
			recent++
		}
	}
	return recent >= r.max
}

// Bump records one punitive action for the moderator.
func (r *RateLimiter) Bump(moderatorID string, kind model.PunishmentKind) {
	r.mu.Lock()
	r.entries[moderatorID] = append(r.entries[moderatorID], rateEntry{At: r.now(), Kind: kind})
	r.mu.Unlock()
}

// Prune drops entries that have aged out of the window, deleting moderators
// with nothing left.
func (r *RateLimiter) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	for id, entries := range r.entries {
		kept := entries[:0]
		for _, e := range entries {
			if e.At.After(cutoff) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(r.entries, id)
		} else {
			r.entries[id] = kept
		}
	}
}
