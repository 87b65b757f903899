// Package app wires configuration into a running search service. The HTTP
// server and the command line tool both start from New.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/airports"
	"github.com/dharmasatrya/tripquery/internal/assist"
	"github.com/dharmasatrya/tripquery/internal/booking"
	"github.com/dharmasatrya/tripquery/internal/cache"
	"github.com/dharmasatrya/tripquery/internal/config"
	"github.com/dharmasatrya/tripquery/internal/dates"
	"github.com/dharmasatrya/tripquery/internal/interpreter"
	"github.com/dharmasatrya/tripquery/internal/passengers"
	"github.com/dharmasatrya/tripquery/internal/ratelimit"
	"github.com/dharmasatrya/tripquery/internal/search"
)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the service's reference clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type App struct {
	Config   config.Config
	Airports *airports.Table
	Builder  *booking.Builder
	Service  *search.Service
	// Limiter throttles inbound clients and outbound assistant calls.
	Limiter *ratelimit.Limiter

	closerFn map[string]func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config:   cfg,
		closerFn: map[string]func(context.Context) error{},
	}

	table, err := airports.Load(ctx, airports.Sources{
		File: cfg.AirportsFile,
		Mongo: airports.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		},
	})
	if err != nil {
		return nil, err
	}
	a.Airports = table
	log.Info().Int("airports", table.Len()).Msg("Airport table ready")

	a.Builder, err = booking.NewBuilder(booking.Config{
		Style:   booking.Style(cfg.BookingStyle),
		BaseURL: cfg.BookingBaseURL,
	})
	if err != nil {
		return nil, err
	}

	a.Limiter = ratelimit.NewLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	normalizer := passengers.NewNormalizer()
	interp := interpreter.New(
		table,
		dates.NewResolver(dates.Config{
			DefaultTripDays: cfg.DefaultTripDays,
			DefaultLeadDays: cfg.DefaultLeadDays,
		}),
		normalizer,
		a.interpreterConfig(),
	)

	linkCache, err := a.initCache()
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Service = search.NewService(table, normalizer, interp, a.Builder, linkCache, search.Config{
		Location: cfg.Location(),
		Now:      o.now,
	})
	return a, nil
}

func (a *App) interpreterConfig() interpreter.Config {
	ic := interpreter.Config{
		Timeout:    a.Config.AssistantTimeout,
		MaxRetries: a.Config.AssistantRetries,
		RetryDelays: []time.Duration{
			200 * time.Millisecond,
			400 * time.Millisecond,
			800 * time.Millisecond,
		},
		RateLimiter: a.Limiter,
	}
	if !a.Config.AssistantEnabled {
		return ic
	}

	assistant, err := assist.NewCopilot(assist.Config{Model: a.Config.AssistantModel})
	if err != nil {
		log.Warn().Err(err).Msg("Route assistant disabled")
		return ic
	}
	a.closerFn["Route assistant"] = func(context.Context) error {
		assistant.Close()
		return nil
	}
	a.Limiter.SetLimit(interpreter.AssistantKey, a.Config.AssistantRPS, 1)
	ic.Assistant = assistant
	log.Info().Str("model", a.Config.AssistantModel).Msg("Route assistant enabled")
	return ic
}

func (a *App) initCache() (cache.Cache, error) {
	if !a.Config.CacheEnabled {
		log.Info().Msg("Cache disabled")
		return cache.NewNoOpCache(), nil
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     a.Config.RedisHost,
		Port:     a.Config.RedisPort,
		Password: a.Config.RedisPassword,
		TTL:      a.Config.RedisTTL,
	})
	if err != nil {
		return nil, err
	}
	a.closerFn["Redis"] = func(context.Context) error {
		return redisCache.Close()
	}
	log.Info().Str("addr", a.Config.RedisAddr()).Dur("ttl", a.Config.RedisTTL).Msg("Redis cache enabled")
	return redisCache, nil
}

// Close releases everything New opened. Failures are logged.
func (a *App) Close(ctx context.Context) {
	for name, closer := range a.closerFn {
		if err := closer(ctx); err != nil {
			log.Error().Err(err).Str("name", name).Msg("Failed to close resource")
		}
	}
}
