package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"moderation-bot/model"
)

// Load reads secrets from the environment (.env supported) and runtime
// settings from data/config.yaml, falling back to defaults when the file is
// absent.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	guildID := os.Getenv("GUILD_ID")
	if guildID == "" {
		log.Fatal("Error: GUILD_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, audit channel logging will be disabled")
	}

	muteRoleName := os.Getenv("MUTE_ROLE_NAME")
	if muteRoleName == "" {
		muteRoleName = "Muted"
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	return &model.Config{
		BotToken:     token,
		GuildID:      guildID,
		LogChannelID: logChannelID,
		MuteRoleName: muteRoleName,
		Settings:     settings,
	}, nil
}

func loadSettings() (model.Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")

	v.SetDefault("settle_delay_seconds", 7)
	v.SetDefault("rate_limit_max", 3)
	v.SetDefault("rate_limit_window_minutes", 60)
	v.SetDefault("history_path", "data/punishment_history.json")
	v.SetDefault("audit_db_path", "data/audit_events.db")
	v.SetDefault("audit_max_age_days", 30)
	v.SetDefault("snapshot_refresh_minutes", 15)
	v.SetDefault("voice_notify_seconds", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return model.Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("Warning: data/config.yaml not found, using default settings")
	}

	var settings model.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}
