package bot

import (
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
	"moderation-bot/punishment"
)

func TestNewSessionIntents(t *testing.T) {
	cfg := &model.Config{
		BotToken: "token",
		GuildID:  "guild",
		Settings: model.Settings{
			RateLimitMax:           3,
			RateLimitWindowMinutes: 60,
		},
	}
	store := punishment.OpenStore(filepath.Join(t.TempDir(), "history.json"))

	b, err := New(cfg, store, nil)
	require.NoError(t, err)

	intents := b.Session.Identify.Intents
	assert.NotZero(t, intents&discordgo.IntentsGuildMembers)
	assert.NotZero(t, intents&discordgo.IntentsGuildInvites)
	assert.NotZero(t, intents&discordgo.IntentsGuildVoiceStates)

	// Presence events are never consumed; the privileged intent stays off.
	assert.Zero(t, intents&discordgo.IntentsGuildPresences)
}
