package bot

import (
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"moderation-bot/commands"
	"moderation-bot/invites"
	"moderation-bot/model"
	"moderation-bot/punishment"
	"moderation-bot/utils"
)

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Store              *punishment.Store
	Engine             *punishment.Engine
	Invites            *invites.Tracker
	Audit              *utils.AuditLogger
	EventDB            *sqlx.DB
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand
	StartTime          time.Time

	// voiceStateUpdate bookkeeping: pending presence timers and the
	// notification message posted for each lingering user.
	VoiceMu      sync.Mutex
	VoiceTimers  map[string]*time.Timer
	VoiceNotices map[string]string

	limiter   *punishment.RateLimiter
	scheduler *Scheduler
}

func New(cfg *model.Config, store *punishment.Store, eventDB *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildInvites |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent

	b := &Bot{
		Session:      dg,
		Config:       cfg,
		Store:        store,
		EventDB:      eventDB,
		VoiceTimers:  make(map[string]*time.Timer),
		VoiceNotices: make(map[string]string),
		limiter:      punishment.NewRateLimiter(cfg.Settings.RateLimitMax, cfg.Settings.RateLimitWindow()),
	}
	b.Audit = utils.NewAuditLogger(dg, cfg.LogChannelID, eventDB)
	b.Invites = invites.NewTracker(&inviteLister{session: dg}, cfg.Settings.SettleDelay())
	b.scheduler = NewScheduler(b)
	return b, nil
}

// initEngine wires the lifecycle engine once the gateway session is open and
// the bot's own user ID is known.
func (b *Bot) initEngine() {
	adapter := &discordAdapter{
		session:      b.Session,
		muteRoleName: b.Config.MuteRoleName,
	}
	b.Engine = punishment.NewEngine(punishment.EngineConfig{
		GuildID:   b.Config.GuildID,
		SelfID:    b.Session.State.User.ID,
		Actions:   adapter,
		Directory: adapter,
		Notifier:  b.Audit,
		Store:     b.Store,
		Limiter:   b.limiter,
	})
}

// RefreshCommands bulk-overwrites the guild's slash commands.
func (b *Bot) RefreshCommands() error {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), b.Config.GuildID)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, b.Config.GuildID, cmds)
	if err != nil {
		return err
	}
	b.RegisteredCommands = registered
	return nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	if b.Engine != nil {
		b.Engine.Shutdown()
	}

	b.VoiceMu.Lock()
	for id, t := range b.VoiceTimers {
		t.Stop()
		delete(b.VoiceTimers, id)
	}
	b.VoiceMu.Unlock()

	b.Session.Close()
	if b.EventDB != nil {
		b.EventDB.Close()
	}
}
