package punishment

import (
	"fmt"
	"log"
	"strings"
	"time"

	"moderation-bot/model"
)

const (
	colorIssue    = 0xFF0000
	colorReversal = 0x008000
	colorWarn     = 0xFFA500
)

// Actions are the platform-level moderation effects. Each call is a remote
// operation that can fail with a permission, not-found or network error;
// failures are surfaced to the caller and never retried.
type Actions interface {
	ApplyTimeout(guildID, userID string, until time.Time, reason string) error
	RemoveTimeout(guildID, userID string) error
	AddMuteRole(guildID, userID string) error
	RemoveMuteRole(guildID, userID string) error
	Ban(guildID, userID, reason string, deleteDays int) error
	Unban(guildID, userID string) error
	Kick(guildID, userID, reason string) error
}

// Directory answers point-in-time membership state questions used by
// precondition checks.
type Directory interface {
	IsTimedOut(guildID, userID string) (bool, error)
	HasMuteRole(guildID, userID string) (bool, error)
	IsBanned(guildID, userID string) (bool, error)
	IsBot(userID string) (bool, error)
}

// Notifier delivers subject DMs and audit entries. Both are best-effort;
// the engine never rolls back a completed action because a notification
// could not be delivered.
type Notifier interface {
	NotifySubject(userID string, n model.Notice) model.DMStatus
	Audit(e model.AuditEntry)
}

// Engine owns the punishment lifecycle: issuance, precondition validation,
// rate limiting, history recording, scheduled auto-reversal and rejoin
// re-application. All platform access goes through the injected interfaces
// so the engine never touches SDK objects.
type Engine struct {
	guildID   string
	selfID    string
	actions   Actions
	directory Directory
	notifier  Notifier
	store     *Store
	limiter   *RateLimiter
	muted     *ActiveSet
	timedOut  *ActiveSet
	timers    *TimerService
	now       func() time.Time
}

type EngineConfig struct {
	GuildID   string
	SelfID    string
	Actions   Actions
	Directory Directory
	Notifier  Notifier
	Store     *Store
	Limiter   *RateLimiter
}

func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		guildID:   cfg.GuildID,
		selfID:    cfg.SelfID,
		actions:   cfg.Actions,
		directory: cfg.Directory,
		notifier:  cfg.Notifier,
		store:     cfg.Store,
		limiter:   cfg.Limiter,
		muted:     NewActiveSet(),
		timedOut:  NewActiveSet(),
		timers:    NewTimerService(),
		now:       time.Now,
	}
}

// Issue applies a new sanction. Preconditions are checked in order and the
// first failure wins, returned as a *Rejection. Platform failures come back
// as ErrExecution with the cause logged.
func (e *Engine) Issue(subjectID, moderatorID string, kind model.PunishmentKind, reason string, duration *int) error {
	if kind.Punitive() && e.limiter.Limited(moderatorID) {
		return reject("You have issued %d punishments in the past hour. Please wait before punishing again.", e.limiter.max)
	}
	if kind.RequiresReason() && reason == "" {
		return reject("A reason is required for %s.", kind)
	}
	if subjectID == moderatorID {
		return reject("You cannot %s yourself.", verb(kind))
	}
	if subjectID == e.selfID {
		return reject("You cannot %s the bot.", verb(kind))
	}
	if err := e.rejectBotSubject(subjectID, kind); err != nil {
		return err
	}

	switch kind {
	case model.KindTimeout:
		return e.issueTimeout(subjectID, moderatorID, reason, duration)
	case model.KindMute:
		return e.issueMute(subjectID, moderatorID, reason, duration)
	case model.KindBan:
		return e.issueBan(subjectID, moderatorID, reason, duration)
	case model.KindKick:
		return e.issueKick(subjectID, moderatorID, reason)
	}
	return reject("Unknown punishment kind %q.", kind)
}

func (e *Engine) issueTimeout(subjectID, moderatorID, reason string, duration *int) error {
	if duration == nil || *duration <= 0 {
		return reject("A duration in minutes is required for Timeout.")
	}
	active, err := e.directory.IsTimedOut(e.guildID, subjectID)
	if err != nil {
		log.Printf("Error checking timeout state for %s: %v", subjectID, err)
		return ErrExecution
	}
	if active {
		return reject("User is already timed out.")
	}

	start := e.now()
	until := start.Add(time.Duration(*duration) * time.Minute)
	if err := e.actions.ApplyTimeout(e.guildID, subjectID, until, reason); err != nil {
		log.Printf("Error applying timeout to %s: %v", subjectID, err)
		return ErrExecution
	}

	e.timedOut.Add(subjectID)
	e.record(subjectID, moderatorID, model.KindTimeout, reason, duration, start)
	e.scheduleReversal(subjectID, model.KindTimeout, until.Sub(start))

	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "User Timeout",
		Kind:      string(model.KindTimeout),
		ActorID:   moderatorID,
		SubjectID: subjectID,
		Reason:    reason,
		Color:     colorIssue,
		Extra: []model.AuditField{
			{Name: "Duration", Value: model.DurationText(model.KindTimeout, duration)},
			{Name: "Start Time", Value: start.Format(time.RFC1123)},
			{Name: "End Time", Value: until.Format(time.RFC1123)},
		},
	})
	e.notifySubject(subjectID, model.Notice{
		Title:       "Timeout",
		Description: fmt.Sprintf("You have been timed out in the server for %d minutes.", *duration),
		Reason:      reason,
		EndsAt:      &until,
		Color:       colorWarn,
	})
	return nil
}

func (e *Engine) issueMute(subjectID, moderatorID, reason string, duration *int) error {
	active, err := e.directory.HasMuteRole(e.guildID, subjectID)
	if err != nil {
		log.Printf("Error checking mute state for %s: %v", subjectID, err)
		return ErrExecution
	}
	if active {
		return reject("User is already muted.")
	}

	start := e.now()
	if err := e.actions.AddMuteRole(e.guildID, subjectID); err != nil {
		log.Printf("Error muting %s: %v", subjectID, err)
		return ErrExecution
	}

	e.muted.Add(subjectID)
	e.record(subjectID, moderatorID, model.KindMute, reason, duration, start)

	durationText := model.DurationText(model.KindMute, duration)
	entry := model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "User Mute",
		Kind:      string(model.KindMute),
		ActorID:   moderatorID,
		SubjectID: subjectID,
		Reason:    reason,
		Color:     colorIssue,
		Extra: []model.AuditField{
			{Name: "Duration", Value: durationText},
			{Name: "Start Time", Value: start.Format(time.RFC1123)},
		},
	}
	notice := model.Notice{
		Title:       "Mute",
		Description: fmt.Sprintf("You have been muted in the server (%s).", durationText),
		Reason:      reason,
		Color:       colorIssue,
	}
	if d, ok := (model.PunishmentRecord{Kind: model.KindMute, Duration: duration}).SanctionDuration(); ok {
		end := start.Add(d)
		entry.Extra = append(entry.Extra, model.AuditField{Name: "End Time", Value: end.Format(time.RFC1123)})
		notice.EndsAt = &end
		e.scheduleReversal(subjectID, model.KindMute, d)
	}

	e.notifier.Audit(entry)
	e.notifySubject(subjectID, notice)
	return nil
}

func (e *Engine) issueBan(subjectID, moderatorID, reason string, duration *int) error {
	deleteDays := 0
	if duration != nil {
		if *duration < 0 || *duration > 7 {
			return reject("Ban duration cannot exceed 7 days.")
		}
		deleteDays = *duration
	}

	// DM first, so the subject is informed before losing access.
	e.notifySubject(subjectID, model.Notice{
		Title:       "Ban",
		Description: fmt.Sprintf("You have been banned from the server (%s).", model.DurationText(model.KindBan, duration)),
		Reason:      reason,
		Color:       colorIssue,
	})

	if err := e.actions.Ban(e.guildID, subjectID, reason, deleteDays); err != nil {
		log.Printf("Error banning %s: %v", subjectID, err)
		return ErrExecution
	}

	e.clearSanctions(subjectID)
	e.record(subjectID, moderatorID, model.KindBan, reason, duration, e.now())

	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "User Ban",
		Kind:      string(model.KindBan),
		ActorID:   moderatorID,
		SubjectID: subjectID,
		Reason:    reason,
		Color:     colorIssue,
		Extra: []model.AuditField{
			{Name: "Duration", Value: model.DurationText(model.KindBan, duration)},
		},
	})
	return nil
}

func (e *Engine) issueKick(subjectID, moderatorID, reason string) error {
	// DM first, same ordering rationale as Ban.
	e.notifySubject(subjectID, model.Notice{
		Title:       "Kick",
		Description: "You have been kicked from the server.",
		Reason:      reason,
		Color:       0xDAA520,
	})

	if err := e.actions.Kick(e.guildID, subjectID, reason); err != nil {
		log.Printf("Error kicking %s: %v", subjectID, err)
		return ErrExecution
	}

	e.clearSanctions(subjectID)
	e.record(subjectID, moderatorID, model.KindKick, reason, nil, e.now())

	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "User Kick",
		Kind:      string(model.KindKick),
		ActorID:   moderatorID,
		SubjectID: subjectID,
		Reason:    reason,
		Color:     colorIssue,
	})
	return nil
}

// Reverse lifts an active sanction. The sanction must be active per
// platform-reported state, otherwise a descriptive rejection is returned.
func (e *Engine) Reverse(subjectID, moderatorID string, kind model.PunishmentKind, reason string) error {
	if subjectID == moderatorID {
		return reject("You cannot %s yourself.", verb(kind))
	}
	if subjectID == e.selfID {
		return reject("You cannot %s the bot.", verb(kind))
	}
	if err := e.rejectBotSubject(subjectID, kind); err != nil {
		return err
	}

	switch kind {
	case model.KindUntimeout:
		return e.reverse(subjectID, moderatorID, kind, reason, reversal{
			check:    e.directory.IsTimedOut,
			inactive: "User is not timed out.",
			undo:     e.actions.RemoveTimeout,
			issued:   model.KindTimeout,
			set:      func() *ActiveSet { return e.timedOut },
			title:    "User Timeout Removed",
			notice:   "Your timeout in the server has been lifted.",
		})
	case model.KindUnmute:
		return e.reverse(subjectID, moderatorID, kind, reason, reversal{
			check:    e.directory.HasMuteRole,
			inactive: "User is not muted.",
			undo:     e.actions.RemoveMuteRole,
			issued:   model.KindMute,
			set:      func() *ActiveSet { return e.muted },
			title:    "User Mute Removed",
			notice:   "Your mute in the server has been lifted.",
		})
	case model.KindUnban:
		return e.reverseUnban(subjectID, moderatorID, reason)
	}
	return reject("Unknown reversal kind %q.", kind)
}

type reversal struct {
	check    func(guildID, userID string) (bool, error)
	inactive string
	undo     func(guildID, userID string) error
	issued   model.PunishmentKind
	set      func() *ActiveSet
	title    string
	notice   string
}

func (e *Engine) reverse(subjectID, moderatorID string, kind model.PunishmentKind, reason string, rv reversal) error {
	active, err := rv.check(e.guildID, subjectID)
	if err != nil {
		log.Printf("Error checking %s state for %s: %v", rv.issued, subjectID, err)
		return ErrExecution
	}
	if !active {
		return reject("%s", rv.inactive)
	}

	// Claim the reversal before touching the platform: cancel the pending
	// timer and take the subject out of the active set. Losing the set
	// removal while a timer had been registered means the expiry fired
	// mid-command and owns the reversal, so this path no-ops. A subject
	// absent from the set with no timer is an untracked sanction (applied
	// before a restart) and is still reversed.
	hadTimer := e.timers.Cancel(subjectID, rv.issued)
	owned := rv.set().Remove(subjectID)
	if !owned && hadTimer {
		return nil
	}

	if err := rv.undo(e.guildID, subjectID); err != nil {
		log.Printf("Error reversing %s for %s: %v", rv.issued, subjectID, err)
		if owned {
			rv.set().Add(subjectID)
		}
		return ErrExecution
	}

	e.record(subjectID, moderatorID, kind, reason, nil, e.now())

	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     rv.title,
		Kind:      string(kind),
		ActorID:   moderatorID,
		SubjectID: subjectID,
		Reason:    reason,
		Color:     colorReversal,
	})
	e.notifySubject(subjectID, model.Notice{
		Title:       rv.title,
		Description: rv.notice,
		Reason:      reason,
		Color:       colorReversal,
	})
	return nil
}

func (e *Engine) reverseUnban(subjectID, moderatorID, reason string) error {
	banned, err := e.directory.IsBanned(e.guildID, subjectID)
	if err != nil {
		log.Printf("Error checking ban state for %s: %v", subjectID, err)
		return ErrExecution
	}
	if !banned {
		return reject("User is not banned.")
	}

	if err := e.actions.Unban(e.guildID, subjectID); err != nil {
		log.Printf("Error unbanning %s: %v", subjectID, err)
		return ErrExecution
	}

	e.clearSanctions(subjectID)
	e.record(subjectID, moderatorID, model.KindUnban, reason, nil, e.now())

	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "User Ban Removed",
		Kind:      string(model.KindUnban),
		ActorID:   moderatorID,
		SubjectID: subjectID,
		Reason:    reason,
		Color:     colorReversal,
	})
	e.notifySubject(subjectID, model.Notice{
		Title:       "Ban Removed",
		Description: "Your ban from the server has been lifted.",
		Reason:      reason,
		Color:       colorReversal,
	})
	return nil
}

// ReapplyOnRejoin re-applies an outstanding mute when the subject rejoins.
// It looks for the most recent Mute with no later Unmute; a permanent mute
// is re-applied outright, a timed one only while its end is still in the
// future, with the remaining portion rescheduled.
func (e *Engine) ReapplyOnRejoin(subjectID string) {
	hist := e.store.History(subjectID)
	muteIdx, unmuteIdx := -1, -1
	for i, r := range hist {
		switch r.Kind {
		case model.KindMute:
			muteIdx = i
		case model.KindUnmute:
			unmuteIdx = i
		}
	}
	if muteIdx < 0 || unmuteIdx > muteIdx {
		return
	}

	rec := hist[muteIdx]
	var remaining time.Duration
	if d, ok := rec.SanctionDuration(); ok {
		remaining = rec.Timestamp.Add(d).Sub(e.now())
		if remaining <= 0 {
			return
		}
	}

	if err := e.actions.AddMuteRole(e.guildID, subjectID); err != nil {
		log.Printf("Error re-applying mute to %s on rejoin: %v", subjectID, err)
		return
	}
	e.muted.Add(subjectID)
	if remaining > 0 {
		e.scheduleReversal(subjectID, model.KindMute, remaining)
	}

	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "Mute Re-Applied on Rejoin",
		Kind:      string(model.KindMute),
		SubjectID: subjectID,
		Color:     colorWarn,
		Extra: []model.AuditField{
			{Name: "Remaining", Value: remainingText(remaining)},
		},
	})
}

// CheckRateLimit reports whether the moderator is currently blocked from
// punitive actions.
func (e *Engine) CheckRateLimit(moderatorID string) bool {
	return e.limiter.Limited(moderatorID)
}

// GetHistory returns the subject's full punishment history.
func (e *Engine) GetHistory(subjectID string) []model.PunishmentRecord {
	return e.store.History(subjectID)
}

// Shutdown drops all pending auto-reversal timers.
func (e *Engine) Shutdown() {
	e.timers.Shutdown()
}

func (e *Engine) scheduleReversal(subjectID string, kind model.PunishmentKind, d time.Duration) {
	e.timers.Schedule(subjectID, kind, d, func() {
		e.autoReverse(subjectID, kind)
	})
}

// autoReverse is the timer callback. The Remove call is the atomic
// check-then-act against a concurrent manual reversal: if the subject is no
// longer in the set, someone else already won and this is a no-op.
func (e *Engine) autoReverse(subjectID string, kind model.PunishmentKind) {
	var set *ActiveSet
	var undo func(guildID, userID string) error
	var title, notice string
	switch kind {
	case model.KindTimeout:
		set, undo = e.timedOut, e.actions.RemoveTimeout
		title, notice = "User Timeout Removed (Automatic)", "Your timeout in the server has expired and was lifted automatically."
	case model.KindMute:
		set, undo = e.muted, e.actions.RemoveMuteRole
		title, notice = "User Mute Removed (Automatic)", "Your mute in the server has expired and was lifted automatically."
	default:
		return
	}

	if !set.Remove(subjectID) {
		return
	}

	if err := undo(e.guildID, subjectID); err != nil {
		log.Printf("Error during automatic %s reversal for %s: %v", kind, subjectID, err)
	}

	// Synthetic audit entry only; auto-reversal is not a PunishmentRecord.
	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     title,
		Kind:      string(kind),
		SubjectID: subjectID,
		Color:     colorReversal,
	})
	e.notifySubject(subjectID, model.Notice{
		Title:       title,
		Description: notice,
		Color:       colorReversal,
	})
}

func (e *Engine) record(subjectID, moderatorID string, kind model.PunishmentKind, reason string, duration *int, at time.Time) {
	e.store.Record(model.PunishmentRecord{
		SubjectID:   subjectID,
		ModeratorID: moderatorID,
		Kind:        kind,
		Reason:      reason,
		Duration:    duration,
		Timestamp:   at,
	})
	if kind.Punitive() {
		e.limiter.Bump(moderatorID, kind)
	}
}

// clearSanctions drops the subject from both active sets and cancels any
// pending reversal timers, used when the subject leaves moderation scope
// entirely (ban, kick, unban).
func (e *Engine) clearSanctions(subjectID string) {
	e.muted.Remove(subjectID)
	e.timedOut.Remove(subjectID)
	e.timers.Cancel(subjectID, model.KindMute)
	e.timers.Cancel(subjectID, model.KindTimeout)
}

func (e *Engine) notifySubject(subjectID string, n model.Notice) {
	switch e.notifier.NotifySubject(subjectID, n) {
	case model.DMBlocked:
		e.deliveryFailed(subjectID, "User's privacy settings do not allow direct messages.")
	case model.DMFailed:
		e.deliveryFailed(subjectID, "Direct message delivery failed.")
	}
}

func (e *Engine) deliveryFailed(subjectID, detail string) {
	e.notifier.Audit(model.AuditEntry{
		GuildID:   e.guildID,
		Title:     "DM Delivery Failed",
		Kind:      "DMFailure",
		SubjectID: subjectID,
		Color:     colorWarn,
		Extra:     []model.AuditField{{Name: "Detail", Value: detail}},
	})
}

// rejectBotSubject refuses bot accounts as sanction subjects. Checked after
// the rate limit so a limited moderator always sees the rate-limit rejection
// first.
func (e *Engine) rejectBotSubject(subjectID string, kind model.PunishmentKind) error {
	isBot, err := e.directory.IsBot(subjectID)
	if err != nil {
		log.Printf("Error checking subject %s: %v", subjectID, err)
		return ErrExecution
	}
	if isBot {
		return reject("You cannot %s bots.", verb(kind))
	}
	return nil
}

func verb(kind model.PunishmentKind) string {
	return strings.ToLower(string(kind))
}

func remainingText(d time.Duration) string {
	if d <= 0 {
		return "Permanent"
	}
	return d.Round(time.Second).String()
}
