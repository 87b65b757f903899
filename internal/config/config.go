// Package config reads service settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	RequestTimeout time.Duration
	Timezone       string

	CacheEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisTTL      time.Duration

	BookingStyle   string
	BookingBaseURL string

	DefaultTripDays int
	DefaultLeadDays int

	AirportsFile    string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int

	AssistantEnabled bool
	AssistantModel   string
	AssistantTimeout time.Duration
	AssistantRetries int
	AssistantRPS     float64
}

var defaults = map[string]any{
	"PORT":            "8080",
	"REQUEST_TIMEOUT": 5 * time.Second,
	"TIMEZONE":        "UTC",

	"CACHE_ENABLED":  false,
	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     "6379",
	"REDIS_PASSWORD": "",
	"REDIS_TTL":      24 * time.Hour,

	"BOOKING_STYLE":    "kayak",
	"BOOKING_BASE_URL": "https://www.kayak.com",

	"DEFAULT_TRIP_DAYS": 14,
	"DEFAULT_LEAD_DAYS": 7,

	"AIRPORTS_FILE":    "",
	"MONGO_URI":        "",
	"MONGO_DATABASE":   "airports",
	"MONGO_COLLECTION": "airports",

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",

	"RATE_LIMIT_RPS":   5.0,
	"RATE_LIMIT_BURST": 10,

	"ASSISTANT_ENABLED": false,
	"ASSISTANT_MODEL":   "gpt-4.1",
	"ASSISTANT_TIMEOUT": 10 * time.Second,
	"ASSISTANT_RETRIES": 2,
	"ASSISTANT_RPS":     1.0,
}

// Load reads the environment, then CONFIG_FILE if it is set. Environment
// variables take precedence over the file.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:           v.GetString("PORT"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		Timezone:       v.GetString("TIMEZONE"),

		CacheEnabled:  v.GetBool("CACHE_ENABLED"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisTTL:      v.GetDuration("REDIS_TTL"),

		BookingStyle:   strings.ToLower(v.GetString("BOOKING_STYLE")),
		BookingBaseURL: v.GetString("BOOKING_BASE_URL"),

		DefaultTripDays: v.GetInt("DEFAULT_TRIP_DAYS"),
		DefaultLeadDays: v.GetInt("DEFAULT_LEAD_DAYS"),

		AirportsFile:    v.GetString("AIRPORTS_FILE"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		MongoCollection: v.GetString("MONGO_COLLECTION"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		AssistantEnabled: v.GetBool("ASSISTANT_ENABLED"),
		AssistantModel:   v.GetString("ASSISTANT_MODEL"),
		AssistantTimeout: v.GetDuration("ASSISTANT_TIMEOUT"),
		AssistantRetries: v.GetInt("ASSISTANT_RETRIES"),
		AssistantRPS:     v.GetFloat64("ASSISTANT_RPS"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.DefaultTripDays < 1 {
		return fmt.Errorf("DEFAULT_TRIP_DAYS must be at least 1, got %d", c.DefaultTripDays)
	}
	if c.DefaultLeadDays < 0 {
		return fmt.Errorf("DEFAULT_LEAD_DAYS must not be negative, got %d", c.DefaultLeadDays)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// Location is the zone "today" is computed in. Validate has already
// checked the name.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
