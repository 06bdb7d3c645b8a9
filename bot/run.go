package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moderation-bot/model"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}
	b.StartTime = time.Now()
	b.initEngine()

	if err := b.RefreshCommands(); err != nil {
		log.Printf("cannot update commands for guild '%s': %v", b.Config.GuildID, err)
	}

	if err := b.Invites.Refresh(b.Config.GuildID); err != nil {
		log.Printf("Error priming invite snapshot: %v", err)
	}

	b.scheduler.Start()

	if err := b.Session.UpdateGameStatus(0, "over the server"); err != nil {
		log.Printf("Error setting presence: %v", err)
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	b.Audit.Audit(model.AuditEntry{
		GuildID: b.Config.GuildID,
		Title:   "Startup",
		Kind:    "System",
		Color:   0x009FD3,
		Extra: []model.AuditField{
			{Name: "Detail", Value: "Bot has started successfully."},
		},
	})

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
