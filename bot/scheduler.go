package bot

import (
	"log"
	"sync"
	"time"

	"moderation-bot/utils/database"
)

// Scheduler runs the periodic maintenance tasks: invite snapshot refresh,
// rate-limit window pruning, and audit event retention.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	snapshotTicker := time.NewTicker(s.bot.Config.Settings.SnapshotRefresh())
	pruneTicker := time.NewTicker(1 * time.Hour)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer snapshotTicker.Stop()
	defer pruneTicker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-snapshotTicker.C:
			if err := s.bot.Invites.Refresh(s.bot.Config.GuildID); err != nil {
				log.Printf("Error refreshing invite snapshot: %v", err)
			}
		case <-pruneTicker.C:
			log.Println("Pruning rate-limit entries...")
			s.bot.limiter.Prune()
		case <-retentionTicker.C:
			s.cleanAuditEvents()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) cleanAuditEvents() {
	if s.bot.EventDB == nil {
		return
	}
	maxAge := time.Duration(s.bot.Config.Settings.AuditMaxAgeDays) * 24 * time.Hour
	cutoff := time.Now().Add(-maxAge)
	dropped, err := database.DeleteEventsBefore(s.bot.EventDB, cutoff)
	if err != nil {
		log.Printf("Error cleaning audit events: %v", err)
		return
	}
	if dropped > 0 {
		log.Printf("Dropped %d audit events older than %d days", dropped, s.bot.Config.Settings.AuditMaxAgeDays)
	}
}
