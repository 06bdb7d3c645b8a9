package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

func testEvent(guildID, kind string, at time.Time) model.AuditEvent {
	return model.AuditEvent{
		GuildID:   guildID,
		Kind:      kind,
		ActorID:   "mod",
		SubjectID: "user",
		Details:   "details",
		Timestamp: at.Unix(),
	}
}

func TestEventLogRoundTrip(t *testing.T) {
	db, err := InitEventLog(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	_, err = AddEvent(db, testEvent("g1", "Timeout", now))
	require.NoError(t, err)
	_, err = AddEvent(db, testEvent("g1", "Unmute", now))
	require.NoError(t, err)
	_, err = AddEvent(db, testEvent("g2", "Ban", now))
	require.NoError(t, err)

	count, err := CountEvents(db)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	events, err := GetRecentEvents(db, "g1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "Unmute", events[0].Kind)
	assert.Equal(t, "Timeout", events[1].Kind)
}

func TestDeleteEventsBefore(t *testing.T) {
	db, err := InitEventLog(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	_, err = AddEvent(db, testEvent("g1", "Old", now.Add(-40*24*time.Hour)))
	require.NoError(t, err)
	_, err = AddEvent(db, testEvent("g1", "Fresh", now))
	require.NoError(t, err)

	dropped, err := DeleteEventsBefore(db, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, dropped)

	events, err := GetRecentEvents(db, "g1", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Fresh", events[0].Kind)
}
