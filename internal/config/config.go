package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	TelegramToken   string
	BaseAdminChatID int64
	DatabaseURL     string
	BotDebug        bool

	LogLevel    string
	Environment string
	Location    *time.Location

	HTTPAddr         string
	StoragePublicURL string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	DigestCron   string
	HolidaysFile string
}

// Load читает конфигурацию из окружения и .env (если файл есть)
func Load() (*BotConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf(".env not loaded: %v", err)
	}

	cfg := &BotConfig{
		TelegramToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseAdminChatID:  getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
		DatabaseURL:      getEnv("DATABASE_URL", "absences.db"),
		BotDebug:         getEnvAsBool("BOT_DEBUG", false),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:      strings.ToLower(getEnv("ENVIRONMENT", "development")),
		HTTPAddr:         getEnv("HTTP_ADDR", ""),
		StoragePublicURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", ""), "/"),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "absences"),
		AMQPQueue:        getEnv("AMQP_QUEUE", "absence_submitted"),
		DigestCron:       getEnv("DIGEST_CRON", "0 9 * * 1-5"),
		HolidaysFile:     getEnv("HOLIDAYS_FILE", ""),
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные поля и формат значений
func (c *BotConfig) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.BaseAdminChatID <= 0 {
		return fmt.Errorf("invalid BASE_ADMIN_CHAT_ID %d: must be positive", c.BaseAdminChatID)
	}
	if c.DigestCron != "" {
		if _, err := cron.ParseStandard(c.DigestCron); err != nil {
			return fmt.Errorf("invalid DIGEST_CRON '%s': %w", c.DigestCron, err)
		}
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP_EXCHANGE and AMQP_QUEUE are required when AMQP_URL is set")
	}
	if c.StoragePublicURL != "" && !strings.HasPrefix(c.StoragePublicURL, "http") {
		return fmt.Errorf("invalid STORAGE_PUBLIC_URL '%s': must start with http", c.StoragePublicURL)
	}
	return nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
