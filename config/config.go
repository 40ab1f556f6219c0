package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the moderation bot
type Config struct {
	Telegram   TelegramConfig
	Moderation ModerationConfig
	Kafka      KafkaConfig
	Logging    LoggingConfig
	Service    ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	// BotUsername is used in deep links; resolved from the platform when empty.
	BotUsername string

	// Webhook mode is used when WebhookBaseURL is set, long polling otherwise.
	WebhookBaseURL string
	WebhookPath    string
	WebhookSecret  string
}

// WebhookEnabled reports whether updates are delivered by webhook
func (c *TelegramConfig) WebhookEnabled() bool {
	return c.WebhookBaseURL != ""
}

// WebhookURL returns the public URL of the webhook endpoint
func (c *TelegramConfig) WebhookURL() string {
	return strings.TrimRight(c.WebhookBaseURL, "/") + c.WebhookPath
}

// ModerationConfig holds the chats the moderation flow works with
type ModerationConfig struct {
	ChannelID       int64
	ChannelUsername string
	AdminChatID     int64
	// DiscussionChatID restricts discussion echoes to one chat; 0 accepts any.
	DiscussionChatID int64

	AnonReplyTTL time.Duration
	// DiscussionLinkTTL bounds how long a post stays linked to its discussion message.
	DiscussionLinkTTL time.Duration
	JanitorInterval   time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	// Brokers is empty when the event stream is disabled.
	Brokers []string
	Topic   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	// Format is "console" for human-readable output, "json" otherwise.
	Format string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config     *Config
	Telegram   *TelegramConfig
	Moderation *ModerationConfig
	Kafka      *KafkaConfig
	Logging    *LoggingConfig
	Service    *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:     cfg,
		Telegram:   &cfg.Telegram,
		Moderation: &cfg.Moderation,
		Kafka:      &cfg.Kafka,
		Logging:    &cfg.Logging,
		Service:    &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	channelID, err := getEnvInt64("CHANNEL_ID", 0)
	if err != nil {
		return nil, err
	}
	adminChatID, err := getEnvInt64("ADMIN_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	discussionChatID, err := getEnvInt64("DISCUSSION_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	anonReplyTTL, err := getEnvDuration("ANON_REPLY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	discussionLinkTTL, err := getEnvDuration("DISCUSSION_LINK_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	janitorInterval, err := getEnvDuration("JANITOR_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			BotUsername:    strings.TrimPrefix(getEnv("TELEGRAM_BOT_USERNAME", ""), "@"),
			WebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),
			WebhookPath:    getEnv("WEBHOOK_PATH", "/webhook"),
			WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		},
		Moderation: ModerationConfig{
			ChannelID:         channelID,
			ChannelUsername:   strings.TrimPrefix(getEnv("CHANNEL_USERNAME", ""), "@"),
			AdminChatID:       adminChatID,
			DiscussionChatID:  discussionChatID,
			AnonReplyTTL:      anonReplyTTL,
			DiscussionLinkTTL: discussionLinkTTL,
			JanitorInterval:   janitorInterval,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "moderation.events"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "moderation-bot"),
			Port: getEnv("SERVICE_PORT", "10000"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Moderation.ChannelID == 0 {
		return fmt.Errorf("CHANNEL_ID is required")
	}

	if c.Moderation.AdminChatID == 0 {
		return fmt.Errorf("ADMIN_CHAT_ID is required")
	}

	if c.Moderation.AnonReplyTTL <= 0 {
		return fmt.Errorf("ANON_REPLY_TTL must be positive")
	}

	if c.Moderation.DiscussionLinkTTL <= 0 {
		return fmt.Errorf("DISCUSSION_LINK_TTL must be positive")
	}

	if c.Moderation.JanitorInterval <= 0 {
		return fmt.Errorf("JANITOR_INTERVAL must be positive")
	}

	if c.Telegram.WebhookEnabled() && !strings.HasPrefix(c.Telegram.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with /")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
