package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string

	// Ghost CMS recipe catalog. Optional: without it only stored recipes are used.
	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string
	CatalogTimeout  time.Duration

	// Redis cache in front of the remote catalog
	CacheEnabled bool
	RedisAddr    string
	CacheTTL     time.Duration

	// Planning
	UniquePerWeek   bool
	SelectionPolicy string
	Allergens       []string
	DietaryTags     []string

	// HTTP API
	Port int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

var envKeys = map[string]string{
	"database_path":            "DATABASE_PATH",
	"log_level":                "LOG_LEVEL",
	"log_format":               "LOG_FORMAT",
	"ghost_url":                "GHOST_API_URL",
	"ghost_content_key":        "GHOST_CONTENT_API_KEY",
	"ghost_admin_key":          "GHOST_ADMIN_API_KEY",
	"catalog_timeout":          "CATALOG_TIMEOUT",
	"cache_enabled":            "CACHE_ENABLED",
	"redis_addr":               "REDIS_ADDR",
	"cache_ttl":                "CACHE_TTL",
	"unique_per_week":          "UNIQUE_PER_WEEK",
	"selection_policy":         "SELECTION_POLICY",
	"allergens":                "ALLERGENS",
	"dietary_tags":             "DIETARY_TAGS",
	"port":                     "PORT",
	"telegram_bot_token":       "TELEGRAM_BOT_TOKEN",
	"telegram_webhook_url":     "TELEGRAM_WEBHOOK_URL",
	"telegram_allowed_user_id": "TELEGRAM_ALLOW_USER_ID",
	"telegram_admin_id":        "TELEGRAM_ADMIN_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "data/meal-planner.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("cache_enabled", false)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("unique_per_week", true)
	v.SetDefault("selection_policy", "random")
	v.SetDefault("port", 8080)
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		DatabasePath:       v.GetString("database_path"),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
		LogFormat:          strings.ToLower(v.GetString("log_format")),
		GhostURL:           strings.TrimRight(v.GetString("ghost_url"), "/"),
		GhostContentKey:    v.GetString("ghost_content_key"),
		GhostAdminKey:      v.GetString("ghost_admin_key"),
		CatalogTimeout:     v.GetDuration("catalog_timeout"),
		CacheEnabled:       v.GetBool("cache_enabled"),
		RedisAddr:          v.GetString("redis_addr"),
		CacheTTL:           v.GetDuration("cache_ttl"),
		UniquePerWeek:      v.GetBool("unique_per_week"),
		SelectionPolicy:    strings.ToLower(v.GetString("selection_policy")),
		Allergens:          splitList(v.GetString("allergens")),
		DietaryTags:        splitList(v.GetString("dietary_tags")),
		Port:               v.GetInt("port"),
		TelegramBotToken:   v.GetString("telegram_bot_token"),
		TelegramWebhookURL: v.GetString("telegram_webhook_url"),
		AdminTelegramID:    v.GetInt64("telegram_admin_id"),
	}

	ids, err := parseUserIDs(v.GetString("telegram_allowed_user_id"))
	if err != nil {
		return nil, err
	}
	cfg.TelegramAllowedUserIDs = ids

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	if c.GhostURL != "" && c.GhostContentKey == "" && c.GhostAdminKey == "" {
		return fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}
	switch c.SelectionPolicy {
	case "first", "random":
	default:
		return fmt.Errorf("SELECTION_POLICY must be first or random, got %q", c.SelectionPolicy)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive")
	}
	if c.CacheEnabled && (c.RedisAddr == "" || c.CacheTTL <= 0) {
		return fmt.Errorf("CACHE_ENABLED requires REDIS_ADDR and a positive CACHE_TTL")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// HasCatalog reports whether a remote recipe catalog is configured.
func (c *Config) HasCatalog() bool {
	return c.GhostURL != ""
}

// IsAllowedUser reports whether a Telegram user may talk to the bot. An
// empty allow-list admits nobody.
func (c *Config) IsAllowedUser(id int64) bool {
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_ID entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
