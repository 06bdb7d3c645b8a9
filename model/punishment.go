package model

import (
	"fmt"
	"time"
)

// PunishmentKind identifies a moderation action recorded in a user's history.
type PunishmentKind string

const (
	KindTimeout   PunishmentKind = "Timeout"
	KindUntimeout PunishmentKind = "Untimeout"
	KindMute      PunishmentKind = "Mute"
	KindUnmute    PunishmentKind = "Unmute"
	KindBan       PunishmentKind = "Ban"
	KindUnban     PunishmentKind = "Unban"
	KindKick      PunishmentKind = "Kick"
)

// Punitive reports whether the kind counts against a moderator's rate limit.
func (k PunishmentKind) Punitive() bool {
	switch k {
	case KindTimeout, KindMute, KindBan, KindKick:
		return true
	}
	return false
}

// RequiresReason reports whether a reason must be supplied when issuing.
func (k PunishmentKind) RequiresReason() bool {
	return k == KindTimeout || k == KindMute
}

// PunishmentRecord is a single immutable entry in a user's punishment history.
// Duration is minutes for Timeout and days for Mute/Ban; nil means permanent
// or not applicable.
type PunishmentRecord struct {
	SubjectID   string         `json:"subject_id"`
	ModeratorID string         `json:"moderator_id"`
	Kind        PunishmentKind `json:"kind"`
	Reason      string         `json:"reason,omitempty"`
	Duration    *int           `json:"duration,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// DurationText renders a duration for display using the kind's unit.
func DurationText(k PunishmentKind, d *int) string {
	switch k {
	case KindTimeout:
		if d != nil {
			return fmt.Sprintf("%d minutes", *d)
		}
		return "Permanent"
	case KindMute, KindBan:
		if d != nil {
			return fmt.Sprintf("%d days", *d)
		}
		return "Permanent"
	}
	return "N/A"
}

// DurationText renders the record's duration for display.
func (r PunishmentRecord) DurationText() string {
	return DurationText(r.Kind, r.Duration)
}

// SanctionDuration converts the record's duration to a concrete span using
// the kind's unit. ok is false for permanent or N/A records.
func (r PunishmentRecord) SanctionDuration() (d time.Duration, ok bool) {
	if r.Duration == nil {
		return 0, false
	}
	switch r.Kind {
	case KindTimeout:
		return time.Duration(*r.Duration) * time.Minute, true
	case KindMute, KindBan:
		return time.Duration(*r.Duration) * 24 * time.Hour, true
	}
	return 0, false
}
