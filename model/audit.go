package model

import "time"

// AuditEvent is a durable row in the audit_events table, mirroring what gets
// posted to the log channel.
type AuditEvent struct {
	EventID   int64  `db:"event_id"`
	GuildID   string `db:"guild_id"`
	Kind      string `db:"kind"`
	ActorID   string `db:"actor_id"`
	SubjectID string `db:"subject_id"`
	Details   string `db:"details"`
	Timestamp int64  `db:"timestamp"`
}

// AuditEntry is an audit notification before it is dispatched. ActorID is
// empty for automatic actions (auto-reversal, rejoin re-application).
type AuditEntry struct {
	GuildID   string
	Title     string
	Kind      string
	ActorID   string
	ActorTag  string
	SubjectID string
	Reason    string
	Extra     []AuditField
	Color     int
}

// AuditField is one name/value pair rendered on the audit embed.
type AuditField struct {
	Name  string
	Value string
}

// DMStatus classifies the outcome of a direct-message delivery attempt.
type DMStatus int

const (
	DMDelivered DMStatus = iota
	DMBlocked
	DMFailed
)

// Notice is a direct message sent to a sanction subject.
type Notice struct {
	Title       string
	Description string
	Reason      string
	EndsAt      *time.Time
	Color       int
}
