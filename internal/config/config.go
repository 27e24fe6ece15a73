package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Firebase FirebaseConfig
	Telegram TelegramConfig
	Expo     ExpoConfig
	Schedule ScheduleConfig
	Server   ServerConfig
	LogLevel string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

type TelegramConfig struct {
	BotToken      string
	AdminChatID   int64
	WebhookSecret string
	APIURL        string
}

type ExpoConfig struct {
	Enabled bool
	Host    string
}

type ScheduleConfig struct {
	TimeZone string
}

type ServerConfig struct {
	Port string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			AdminChatID:   getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
			APIURL:        getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		},
		Expo: ExpoConfig{
			Enabled: getEnvBool("EXPO_ENABLED", true),
			Host:    os.Getenv("EXPO_HOST"),
		},
		Schedule: ScheduleConfig{
			TimeZone: getEnv("TIMEZONE", "Asia/Seoul"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func (c *Config) Validate() error {
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase.project_id is required")
	}

	if _, err := time.LoadLocation(c.Schedule.TimeZone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Schedule.TimeZone, err)
	}

	if c.Telegram.BotToken != "" && c.Telegram.AdminChatID == 0 {
		return fmt.Errorf("telegram.admin_chat_id is required when a bot token is set")
	}

	return nil
}

// Location returns the configured schedule timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.AdminChatID != 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}
