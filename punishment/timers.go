package punishment

import (
	"sync"
	"time"

	"moderation-bot/model"
)

type timerKey struct {
	SubjectID string
	Kind      model.PunishmentKind
}

// TimerService holds the pending one-shot auto-reversal timers, keyed by
// subject and sanction kind so a manual reversal can cancel the matching
// timer outright. Cancellation here is an optimization; the ActiveSet
// membership guard is what makes the race safe.
type TimerService struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
}

func NewTimerService() *TimerService {
	return &TimerService{timers: make(map[timerKey]*time.Timer)}
}

// Schedule registers fn to run once after d, replacing any timer already
// pending for the same subject and kind.
func (t *TimerService) Schedule(subjectID string, kind model.PunishmentKind, d time.Duration, fn func()) {
	key := timerKey{SubjectID: subjectID, Kind: kind}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[key]; ok {
		old.Stop()
	}
	t.timers[key] = time.AfterFunc(d, func() {
		t.mu.Lock()
		delete(t.timers, key)
		t.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending timer for the subject and kind, reporting whether
// one was still registered. A fired timer unregisters itself before running,
// so a true result means the expiry had not completed its bookkeeping yet.
func (t *TimerService) Cancel(subjectID string, kind model.PunishmentKind) bool {
	key := timerKey{SubjectID: subjectID, Kind: kind}

	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[key]
	if ok {
		timer.Stop()
		delete(t.timers, key)
	}
	return ok
}

// Shutdown stops every pending timer. Pending auto-reversals are dropped on
// process exit and are not persisted.
func (t *TimerService) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, timer := range t.timers {
		timer.Stop()
		delete(t.timers, key)
	}
}
