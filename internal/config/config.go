// Package config provides application configuration.
package config

import (
	"os"
	"time"
)

// Config holds all application configuration. Every field is optional: a
// missing Gemini key means the AI features run in degraded mode, a missing
// Telegram token disables safety alerts.
type Config struct {
	GeminiAPIKey   string
	TelegramToken  string
	TelegramChatID string
	SplashDelay    time.Duration
	PeerReplyDelay time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		SplashDelay:    getEnvDuration("SPLASH_DELAY", 2*time.Second),
		PeerReplyDelay: getEnvDuration("PEER_REPLY_DELAY", 1500*time.Millisecond),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
