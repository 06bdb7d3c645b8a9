package model

import "time"

// Config stores the application configuration. Secrets come from the
// environment, Settings from the viper config file.
type Config struct {
	BotToken     string
	GuildID      string
	LogChannelID string
	MuteRoleName string
	Settings     Settings
}

// Settings are the tunables loaded from data/config.yaml.
type Settings struct {
	SettleDelaySeconds     int    `mapstructure:"settle_delay_seconds"`
	RateLimitMax           int    `mapstructure:"rate_limit_max"`
	RateLimitWindowMinutes int    `mapstructure:"rate_limit_window_minutes"`
	HistoryPath            string `mapstructure:"history_path"`
	AuditDBPath            string `mapstructure:"audit_db_path"`
	AuditMaxAgeDays        int    `mapstructure:"audit_max_age_days"`
	SnapshotRefreshMinutes int    `mapstructure:"snapshot_refresh_minutes"`
	VoiceChannelID         string `mapstructure:"voice_channel_id"`
	VoiceNotifyChannelID   string `mapstructure:"voice_notify_channel_id"`
	VoiceNotifyRoleID      string `mapstructure:"voice_notify_role_id"`
	VoiceNotifySeconds     int    `mapstructure:"voice_notify_seconds"`
	LockRoleID             string `mapstructure:"lock_role_id"`
}

func (s Settings) SettleDelay() time.Duration {
	return time.Duration(s.SettleDelaySeconds) * time.Second
}

func (s Settings) RateLimitWindow() time.Duration {
	return time.Duration(s.RateLimitWindowMinutes) * time.Minute
}

func (s Settings) SnapshotRefresh() time.Duration {
	return time.Duration(s.SnapshotRefreshMinutes) * time.Minute
}

func (s Settings) VoiceNotifyDelay() time.Duration {
	return time.Duration(s.VoiceNotifySeconds) * time.Second
}
