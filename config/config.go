package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	AppPassword string

	SerpAPIKey  string
	RapidAPIKey string

	GeminiAPIKey string
	GeminiModel  string

	TelegramToken  string
	TelegramChatID int64

	HTTPAddr string
	GinMode  string

	DealsCountry  string
	DealsPages    int
	AlertInterval time.Duration
}

// Load reads the configuration from the environment (and .env, when present)
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		AppPassword:   os.Getenv("APP_PASSWORD"),
		SerpAPIKey:    os.Getenv("SERP_API_KEY"),
		RapidAPIKey:   os.Getenv("RAPID_API_KEY"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   "gemini-2.5-flash",
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		HTTPAddr:      ":8080",
		GinMode:       os.Getenv("GIN_MODE"),
		DealsCountry:  "TR",
		DealsPages:    1,
		AlertInterval: 15 * time.Minute,
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}

	if country := os.Getenv("DEALS_COUNTRY"); country != "" {
		config.DealsCountry = country
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID has invalid format: %w", err)
		}
		config.TelegramChatID = parsed
	}

	if raw := os.Getenv("DEALS_PAGES"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("DEALS_PAGES must be a positive integer, got %q", raw)
		}
		config.DealsPages = parsed
	}

	if raw := os.Getenv("ALERT_INTERVAL_MINUTES"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("ALERT_INTERVAL_MINUTES must be a positive integer, got %q", raw)
		}
		config.AlertInterval = time.Duration(parsed) * time.Minute
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the required keys
func (c *Config) Validate() error {
	if c.AppPassword == "" {
		return fmt.Errorf("APP_PASSWORD environment variable is empty")
	}
	if c.SerpAPIKey == "" && c.RapidAPIKey == "" {
		return fmt.Errorf("at least one of SERP_API_KEY or RAPID_API_KEY must be set")
	}
	return nil
}
