package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"moderation-bot/model"
)

// InitEventLog opens the audit event database and ensures the table exists.
func InitEventLog(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit event database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS audit_events (
	          event_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          kind TEXT NOT NULL,
	          actor_id TEXT NOT NULL,
	          subject_id TEXT NOT NULL,
	          details TEXT,
	          timestamp INTEGER NOT NULL
	      );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create audit_events table: %w", err)
	}

	return db, nil
}

// AddEvent appends one audit event row.
func AddEvent(db *sqlx.DB, event model.AuditEvent) (int64, error) {
	query := `INSERT INTO audit_events (guild_id, kind, actor_id, subject_id, details, timestamp) VALUES (:guild_id, :kind, :actor_id, :subject_id, :details, :timestamp)`

	result, err := db.NamedExec(query, event)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetRecentEvents returns the newest events for a guild, newest first.
func GetRecentEvents(db *sqlx.DB, guildID string, limit int) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	query := "SELECT * FROM audit_events WHERE guild_id = ? ORDER BY event_id DESC LIMIT ?"
	if err := db.Select(&events, query, guildID, limit); err != nil {
		return nil, fmt.Errorf("failed to get audit events for guild %s: %w", guildID, err)
	}
	return events, nil
}

// CountEvents returns the total number of stored audit events.
func CountEvents(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM audit_events"); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

// DeleteEventsBefore removes events older than cutoff, returning how many
// rows were dropped. Used by the retention cleaner.
func DeleteEventsBefore(db *sqlx.DB, cutoff time.Time) (int64, error) {
	result, err := db.Exec("DELETE FROM audit_events WHERE timestamp < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit events: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}
