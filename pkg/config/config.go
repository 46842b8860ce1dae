package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	APIBaseURL      string
	DiscountTimeout time.Duration
	BreakerFailures uint32
	Currency        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	KafkaBrokers    string
	SessionCapacity int
}

// Load reads configuration from the environment, layered over the optional file at
// path. An empty path means environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("API_BASE_URL", "http://localhost:9000/api")
	v.SetDefault("DISCOUNT_TIMEOUT", "5s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CART_TTL", "720h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("SESSION_CAPACITY", 10000)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		AppEnv:          v.GetString("APP_ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		HTTPPort:        v.GetInt("HTTP_PORT"),
		APIBaseURL:      strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		DiscountTimeout: v.GetDuration("DISCOUNT_TIMEOUT"),
		BreakerFailures: v.GetUint32("BREAKER_MAX_FAILURES"),
		Currency:        strings.ToUpper(v.GetString("CURRENCY")),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		CartTTL:         v.GetDuration("CART_TTL"),
		KafkaBrokers:    v.GetString("KAFKA_BROKERS"),
		SessionCapacity: v.GetInt("SESSION_CAPACITY"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.HTTPPort <= 0:
		return errors.New("HTTP_PORT must be positive")
	case c.APIBaseURL == "":
		return errors.New("API_BASE_URL is required")
	case c.DiscountTimeout <= 0:
		return errors.New("DISCOUNT_TIMEOUT must be positive")
	case c.SessionCapacity <= 0:
		return errors.New("SESSION_CAPACITY must be positive")
	}
	return nil
}
