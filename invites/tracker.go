package invites

import (
	"fmt"
	"log"
	"sync"
	"time"

	"moderation-bot/model"
)

// Lister fetches live invite state for a guild.
type Lister interface {
	GuildInvites(guildID string) ([]model.InviteInfo, error)
	VanityURLCode(guildID string) (string, error)
}

// Tracker keeps per-guild invite-usage snapshots and infers which invite a
// joining member used by diffing a pre-join snapshot against a post-settle
// fetch. The inference is best-effort: two joins via different invites
// inside the same settle window can be misattributed.
type Tracker struct {
	mu        sync.Mutex
	lister    Lister
	settle    time.Duration
	snapshots map[string]map[string]model.InviteInfo
	joins     map[string]model.JoinAttribution
}

func NewTracker(lister Lister, settle time.Duration) *Tracker {
	return &Tracker{
		lister:    lister,
		settle:    settle,
		snapshots: make(map[string]map[string]model.InviteInfo),
		joins:     make(map[string]model.JoinAttribution),
	}
}

// Refresh wholesale-replaces the guild's snapshot from the live invite list.
// Called on invite create/delete, after join resolution, periodically, and
// once at startup.
func (t *Tracker) Refresh(guildID string) error {
	invites, err := t.lister.GuildInvites(guildID)
	if err != nil {
		return fmt.Errorf("failed to refresh invites for guild %s: %w", guildID, err)
	}
	snapshot := make(map[string]model.InviteInfo, len(invites))
	for _, inv := range invites {
		snapshot[inv.Code] = inv
	}

	t.mu.Lock()
	t.snapshots[guildID] = snapshot
	t.mu.Unlock()
	return nil
}

// ResolveJoin attributes a member join to an invite. It captures the current
// snapshot, waits out the settle delay so the platform's use counters can
// converge, fetches a fresh list and diffs the two. The result is remembered
// until the member leaves. Blocks for the settle delay; call from its own
// goroutine.
func (t *Tracker) ResolveJoin(guildID, userID string) model.JoinAttribution {
	t.mu.Lock()
	before, ok := t.snapshots[guildID]
	t.mu.Unlock()
	if !ok {
		if err := t.Refresh(guildID); err != nil {
			log.Printf("Error priming invite snapshot for guild %s: %v", guildID, err)
		}
		t.mu.Lock()
		before = t.snapshots[guildID]
		t.mu.Unlock()
	}

	if t.settle > 0 {
		time.Sleep(t.settle)
	}

	invites, err := t.lister.GuildInvites(guildID)
	if err != nil {
		log.Printf("Error fetching invites for join attribution in guild %s: %v", guildID, err)
		return t.remember(userID, model.UnknownJoin())
	}
	after := make(map[string]model.InviteInfo, len(invites))
	for _, inv := range invites {
		after[inv.Code] = inv
	}

	attribution := t.resolve(guildID, before, after)

	t.mu.Lock()
	t.snapshots[guildID] = after
	t.mu.Unlock()

	return t.remember(userID, attribution)
}

// resolve applies the first-match rules: a use-count increase wins, then a
// vanished (consumed or expired) invite, then the vanity URL, then Unknown.
func (t *Tracker) resolve(guildID string, before, after map[string]model.InviteInfo) model.JoinAttribution {
	for code, inv := range after {
		prev, ok := before[code]
		if ok && inv.Uses > prev.Uses {
			return model.JoinAttribution{Code: code, InviterID: inv.InviterID, InviterTag: inv.InviterTag}
		}
	}

	for code, inv := range before {
		if _, ok := after[code]; !ok {
			return model.JoinAttribution{Code: code, InviterID: inv.InviterID, InviterTag: inv.InviterTag}
		}
	}

	if code, err := t.lister.VanityURLCode(guildID); err == nil && code != "" {
		return model.JoinAttribution{Code: code, InviterTag: model.VanityInviter}
	}

	return model.UnknownJoin()
}

// ConsumeLeave returns and deletes the attribution captured at the member's
// most recent join, for annotating the leave audit entry.
func (t *Tracker) ConsumeLeave(userID string) (model.JoinAttribution, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	attribution, ok := t.joins[userID]
	if ok {
		delete(t.joins, userID)
	}
	return attribution, ok
}

func (t *Tracker) remember(userID string, a model.JoinAttribution) model.JoinAttribution {
	t.mu.Lock()
	t.joins[userID] = a
	t.mu.Unlock()
	return a
}
