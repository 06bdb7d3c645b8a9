package punishment

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

// fakePlatform implements Actions, Directory and Notifier, recording every
// call in order so tests can assert sequencing (e.g. DM before ban). All
// state is mutex-guarded so reversal races can run under the race detector.
type fakePlatform struct {
	mu    sync.Mutex
	calls []string

	timedOut bool
	muted    bool
	banned   bool
	bots     map[string]bool

	failOn   map[string]error
	dmStatus model.DMStatus

	notices []model.Notice
	audits  []model.AuditEntry
}

func (f *fakePlatform) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.failOn[name]
}

func (f *fakePlatform) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakePlatform) auditTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := make([]string, 0, len(f.audits))
	for _, a := range f.audits {
		titles = append(titles, a.Title)
	}
	return titles
}

func (f *fakePlatform) ApplyTimeout(guildID, userID string, until time.Time, reason string) error {
	return f.call("ApplyTimeout")
}
func (f *fakePlatform) RemoveTimeout(guildID, userID string) error { return f.call("RemoveTimeout") }
func (f *fakePlatform) AddMuteRole(guildID, userID string) error   { return f.call("AddMuteRole") }
func (f *fakePlatform) RemoveMuteRole(guildID, userID string) error {
	return f.call("RemoveMuteRole")
}
func (f *fakePlatform) Ban(guildID, userID, reason string, deleteDays int) error {
	return f.call("Ban")
}
func (f *fakePlatform) Unban(guildID, userID string) error        { return f.call("Unban") }
func (f *fakePlatform) Kick(guildID, userID, reason string) error { return f.call("Kick") }

func (f *fakePlatform) IsTimedOut(guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timedOut, nil
}

func (f *fakePlatform) HasMuteRole(guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted, nil
}

func (f *fakePlatform) IsBanned(guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banned, nil
}

func (f *fakePlatform) IsBot(userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bots[userID], nil
}

func (f *fakePlatform) NotifySubject(userID string, n model.Notice) model.DMStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DM")
	f.notices = append(f.notices, n)
	return f.dmStatus
}

func (f *fakePlatform) Audit(e model.AuditEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, e)
}

func newTestEngine(t *testing.T, p *fakePlatform) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		GuildID:   "guild",
		SelfID:    "bot",
		Actions:   p,
		Directory: p,
		Notifier:  p,
		Store:     OpenStore(filepath.Join(t.TempDir(), "history.json")),
		Limiter:   NewRateLimiter(3, time.Hour),
	})
}

func TestIssueTimeout(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	err := e.Issue("u1", "m1", model.KindTimeout, "spam", intPtr(10))
	require.NoError(t, err)

	assert.Contains(t, p.calls, "ApplyTimeout")
	assert.True(t, e.timedOut.Contains("u1"))

	hist := e.GetHistory("u1")
	require.Len(t, hist, 1)
	assert.Equal(t, model.KindTimeout, hist[0].Kind)
	assert.Equal(t, "m1", hist[0].ModeratorID)
	require.NotNil(t, hist[0].Duration)
	assert.Equal(t, 10, *hist[0].Duration)

	require.Len(t, p.audits, 1)
	assert.Equal(t, "User Timeout", p.audits[0].Title)
	require.Len(t, p.notices, 1)
	require.NotNil(t, p.notices[0].EndsAt)

	e.Shutdown()
}

func TestIssueTimeoutRequiresDuration(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	err := e.Issue("u1", "m1", model.KindTimeout, "spam", nil)
	_, ok := IsRejection(err)
	assert.True(t, ok)
	assert.Empty(t, p.calls)
}

func TestIssueRejectsDoubleSanction(t *testing.T) {
	p := &fakePlatform{timedOut: true}
	e := newTestEngine(t, p)

	err := e.Issue("u1", "m1", model.KindTimeout, "spam", intPtr(5))
	rej, ok := IsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "User is already timed out.", rej.Msg)
	assert.NotContains(t, p.calls, "ApplyTimeout")
	assert.Empty(t, e.GetHistory("u1"))
}

func TestIssuePreconditionOrder(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	// Missing reason beats self-targeting in the check order.
	err := e.Issue("m1", "m1", model.KindMute, "", nil)
	rej, ok := IsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "A reason is required for Mute.", rej.Msg)

	// Exhaust the rate limit; it then beats everything.
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Issue("u1", "m1", model.KindKick, "", nil))
	}
	err = e.Issue("m1", "m1", model.KindMute, "", nil)
	rej, ok = IsRejection(err)
	require.True(t, ok)
	assert.Contains(t, rej.Msg, "punishments in the past hour")
}

func TestIssueRejectsSelfAndBot(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	_, ok := IsRejection(e.Issue("m1", "m1", model.KindKick, "", nil))
	assert.True(t, ok)
	_, ok = IsRejection(e.Issue("bot", "m1", model.KindKick, "", nil))
	assert.True(t, ok)
	assert.Empty(t, p.calls)
}

func TestIssueRejectsBotSubjects(t *testing.T) {
	p := &fakePlatform{bots: map[string]bool{"b1": true}}
	e := newTestEngine(t, p)

	err := e.Issue("b1", "m1", model.KindKick, "", nil)
	rej, ok := IsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "You cannot kick bots.", rej.Msg)
	assert.NotContains(t, p.calls, "Kick")

	err = e.Reverse("b1", "m1", model.KindUnban, "")
	rej, ok = IsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "You cannot unban bots.", rej.Msg)
}

func TestRateLimitBeatsBotSubjectCheck(t *testing.T) {
	p := &fakePlatform{bots: map[string]bool{"b1": true}}
	e := newTestEngine(t, p)

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Issue("u1", "m1", model.KindKick, "", nil))
	}

	// A limited moderator targeting a bot sees the rate-limit rejection,
	// not the bot rejection.
	err := e.Issue("b1", "m1", model.KindKick, "", nil)
	rej, ok := IsRejection(err)
	require.True(t, ok)
	assert.Contains(t, rej.Msg, "punishments in the past hour")
}

func TestIssuePermanentMuteSchedulesNothing(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	require.NoError(t, e.Issue("u1", "m1", model.KindMute, "flood", nil))
	assert.True(t, e.muted.Contains("u1"))
	assert.Empty(t, e.timers.timers)

	hist := e.GetHistory("u1")
	require.Len(t, hist, 1)
	assert.Nil(t, hist[0].Duration)
}

func TestIssueTimedMuteSchedulesReversal(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)
	defer e.Shutdown()

	require.NoError(t, e.Issue("u1", "m1", model.KindMute, "flood", intPtr(2)))
	assert.Len(t, e.timers.timers, 1)
}

func TestIssueBanSendsDMFirst(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	require.NoError(t, e.Issue("u1", "m1", model.KindBan, "", intPtr(3)))
	require.GreaterOrEqual(t, len(p.calls), 2)
	assert.Equal(t, "DM", p.calls[0])
	assert.Equal(t, "Ban", p.calls[1])
}

func TestIssueBanRejectsOverSevenDays(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	err := e.Issue("u1", "m1", model.KindBan, "", intPtr(8))
	rej, ok := IsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "Ban duration cannot exceed 7 days.", rej.Msg)
	assert.Empty(t, p.calls)
}

func TestIssueBanClearsActiveSanctions(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)
	defer e.Shutdown()

	require.NoError(t, e.Issue("u1", "m1", model.KindTimeout, "spam", intPtr(10)))
	require.NoError(t, e.Issue("u1", "m1", model.KindBan, "", nil))

	assert.False(t, e.timedOut.Contains("u1"))
	assert.Empty(t, e.timers.timers)
}

func TestIssueKickProceedsWhenDMBlocked(t *testing.T) {
	p := &fakePlatform{dmStatus: model.DMBlocked}
	e := newTestEngine(t, p)

	require.NoError(t, e.Issue("u1", "m1", model.KindKick, "", nil))
	assert.Equal(t, "DM", p.calls[0])
	assert.Equal(t, "Kick", p.calls[1])

	// The blocked DM produces a delivery-failure audit entry alongside the
	// kick entry.
	titles := p.auditTitles()
	assert.Contains(t, titles, "DM Delivery Failed")
	assert.Contains(t, titles, "User Kick")
}

func TestReverseRequiresActiveSanction(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	err := e.Reverse("u1", "m1", model.KindUnmute, "")
	rej, ok := IsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "User is not muted.", rej.Msg)
	assert.Empty(t, p.calls)
}

func TestReverseRecordsHistory(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	require.NoError(t, e.Issue("u1", "m1", model.KindMute, "flood", nil))
	p.muted = true
	require.NoError(t, e.Reverse("u1", "m2", model.KindUnmute, "appealed"))

	assert.Contains(t, p.calls, "RemoveMuteRole")
	assert.False(t, e.muted.Contains("u1"))

	hist := e.GetHistory("u1")
	require.Len(t, hist, 2)
	assert.Equal(t, model.KindUnmute, hist[1].Kind)
	assert.Equal(t, "m2", hist[1].ModeratorID)
	assert.Equal(t, "appealed", hist[1].Reason)
}

func TestReversalNotRateLimited(t *testing.T) {
	p := &fakePlatform{muted: false}
	e := newTestEngine(t, p)

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Issue("u1", "m1", model.KindKick, "", nil))
	}
	require.True(t, e.CheckRateLimit("m1"))

	// A reversal still goes through for a limited moderator.
	p.banned = true
	assert.NoError(t, e.Reverse("u1", "m1", model.KindUnban, ""))
}

func TestAutoReverseLosesToManualReversal(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	require.NoError(t, e.Issue("u1", "m1", model.KindMute, "flood", nil))
	p.muted = true
	require.NoError(t, e.Reverse("u1", "m2", model.KindUnmute, ""))
	require.Equal(t, 1, p.count("RemoveMuteRole"))

	// The timer fires late; the set membership is gone, so it must no-op.
	e.autoReverse("u1", model.KindMute)

	assert.Equal(t, 1, p.count("RemoveMuteRole"))
	assert.Len(t, e.GetHistory("u1"), 2)
}

func TestManualReversalLosesToAutoReverse(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)
	defer e.Shutdown()

	require.NoError(t, e.Issue("u1", "m1", model.KindMute, "flood", intPtr(2)))
	p.muted = true

	// The expiry claims the set entry first; the manual reversal still sees
	// a registered timer and must no-op without a second removal or record.
	e.autoReverse("u1", model.KindMute)
	require.Equal(t, 1, p.count("RemoveMuteRole"))

	require.NoError(t, e.Reverse("u1", "m2", model.KindUnmute, ""))
	assert.Equal(t, 1, p.count("RemoveMuteRole"))
	assert.Len(t, e.GetHistory("u1"), 1)
}

func TestConcurrentReversalSingleRemoval(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)
	defer e.Shutdown()

	require.NoError(t, e.Issue("u1", "m1", model.KindMute, "flood", intPtr(2)))
	p.muted = true

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.Reverse("u1", "m2", model.KindUnmute, "")
	}()
	go func() {
		defer wg.Done()
		e.autoReverse("u1", model.KindMute)
	}()
	wg.Wait()

	assert.Equal(t, 1, p.count("RemoveMuteRole"))
	assert.False(t, e.muted.Contains("u1"))
	// At most the winner's record: one for the mute, plus the unmute only
	// when the manual path won.
	assert.LessOrEqual(t, len(e.GetHistory("u1")), 2)
}

func TestAutoReverseEmitsNoRecord(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	require.NoError(t, e.Issue("u1", "m1", model.KindTimeout, "spam", intPtr(10)))
	e.Shutdown()

	e.autoReverse("u1", model.KindTimeout)

	assert.Contains(t, p.calls, "RemoveTimeout")
	assert.False(t, e.timedOut.Contains("u1"))
	// One record for the issue only; expiry is audit-only.
	assert.Len(t, e.GetHistory("u1"), 1)

	var found bool
	for _, a := range p.audits {
		if a.Title == "User Timeout Removed (Automatic)" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestReapplyOnRejoinPermanentMute(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	e.store.Record(model.PunishmentRecord{
		SubjectID: "u1", ModeratorID: "m1", Kind: model.KindMute,
		Reason: "flood", Timestamp: time.Now().Add(-48 * time.Hour),
	})

	e.ReapplyOnRejoin("u1")

	assert.Contains(t, p.calls, "AddMuteRole")
	assert.True(t, e.muted.Contains("u1"))
	assert.Empty(t, e.timers.timers)
}

func TestReapplyOnRejoinRemainingTime(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)
	defer e.Shutdown()

	e.store.Record(model.PunishmentRecord{
		SubjectID: "u1", ModeratorID: "m1", Kind: model.KindMute,
		Duration: intPtr(3), Timestamp: time.Now().Add(-24 * time.Hour),
	})

	e.ReapplyOnRejoin("u1")

	assert.Contains(t, p.calls, "AddMuteRole")
	assert.Len(t, e.timers.timers, 1)
}

func TestReapplyOnRejoinExpiredMute(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	e.store.Record(model.PunishmentRecord{
		SubjectID: "u1", ModeratorID: "m1", Kind: model.KindMute,
		Duration: intPtr(1), Timestamp: time.Now().Add(-48 * time.Hour),
	})

	e.ReapplyOnRejoin("u1")
	assert.Empty(t, p.calls)
}

func TestReapplyOnRejoinAfterUnmute(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(t, p)

	at := time.Now().Add(-time.Hour)
	e.store.Record(model.PunishmentRecord{SubjectID: "u1", ModeratorID: "m1", Kind: model.KindMute, Timestamp: at})
	e.store.Record(model.PunishmentRecord{SubjectID: "u1", ModeratorID: "m2", Kind: model.KindUnmute, Timestamp: at.Add(time.Minute)})

	e.ReapplyOnRejoin("u1")
	assert.Empty(t, p.calls)
}
