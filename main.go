package main

import (
	"log"
	"os"

	"moderation-bot/bot"
	"moderation-bot/config"
	"moderation-bot/handlers"
	"moderation-bot/punishment"
	"moderation-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store := punishment.OpenStore(cfg.Settings.HistoryPath)

	eventDB, err := database.InitEventLog(cfg.Settings.AuditDBPath)
	if err != nil {
		log.Fatalf("Error initializing event log: %v", err)
	}

	b, err := bot.New(cfg, store, eventDB)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	defer b.Close()

	handlers.Register(b)

	b.Run()
}
