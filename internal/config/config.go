package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL   string `env:"DATABASE_URL,required"`
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Server
	Host  string `env:"HOST" envDefault:"127.0.0.1"`
	Port  int    `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	// Bootstrap admin, created on first start when no admin exists
	AdminCode        string `env:"ADMIN_CODE" envDefault:"4757"`
	AdminPassword    string `env:"ADMIN_PASSWORD" envDefault:"4757"`
	AdminDisplayName string `env:"ADMIN_DISPLAY_NAME" envDefault:"Admin"`

	// Telegram notifications (optional, disabled when token is empty)
	NotifyBotToken     string `env:"NOTIFY_BOT_TOKEN"`
	NotifyChatID       int64  `env:"NOTIFY_TELEGRAM_CHAT_ID"`
	NotifyTopicCredits int    `env:"NOTIFY_TOPIC_CREDITS"`
	NotifyTopicAdmin   int    `env:"NOTIFY_TOPIC_ADMIN"`
	NotifyTopicError   int    `env:"NOTIFY_TOPIC_ERROR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
