package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NatsURL             string
	JWTSecret           string
	StructureCacheTTL   time.Duration
	NotificationChannel string
	CheckinRateLimit    int
	CheckinRateWindow   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FELLOWSHIP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Fellowship API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("structure.cache_ttl", "5m")
	v.SetDefault("notification.channel", "fellowship")
	v.SetDefault("checkin.rate_limit", 30)
	v.SetDefault("checkin.rate_window", "1m")

	ttl, err := time.ParseDuration(stringOrDefault(v.GetString("structure.cache_ttl"), "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid structure cache ttl: %w", err)
	}

	window, err := time.ParseDuration(stringOrDefault(v.GetString("checkin.rate_window"), "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid checkin rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NatsURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		StructureCacheTTL:   ttl,
		NotificationChannel: v.GetString("notification.channel"),
		CheckinRateLimit:    v.GetInt("checkin.rate_limit"),
		CheckinRateWindow:   window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.CheckinRateLimit <= 0 {
		cfg.CheckinRateLimit = 30
	}

	return cfg, nil
}

func stringOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
