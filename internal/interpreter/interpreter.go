// Package interpreter turns a free-text trip description into a validated
// StructuredFlightRequest.
//
// Route, dates and travellers are read by independent passes over the same
// text. The passes run concurrently and are merged once all have finished.
// A route is mandatory; unreadable dates fall back to defaults; travellers
// that cannot form a legal party fail the interpretation.
package interpreter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/airports"
	"github.com/dharmasatrya/tripquery/internal/dates"
	"github.com/dharmasatrya/tripquery/internal/models"
	"github.com/dharmasatrya/tripquery/internal/passengers"
	"github.com/dharmasatrya/tripquery/internal/ratelimit"
)

// RouteAssistant suggests an origin and destination for text the rule
// based route pass could not read. Its answers are resolved through the
// airport table like any other place name.
type RouteAssistant interface {
	SuggestRoute(ctx context.Context, query string) (from, to string, err error)
}

// AssistantKey is the rate limiter key for route assistant calls.
const AssistantKey = "route-assistant"

type Config struct {
	Assistant   RouteAssistant
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.Limiter
}

type Interpreter struct {
	airports   *airports.Table
	dates      *dates.Resolver
	passengers *passengers.Normalizer
	config     Config
}

func New(table *airports.Table, resolver *dates.Resolver, normalizer *passengers.Normalizer, config Config) *Interpreter {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if len(config.RetryDelays) == 0 {
		config.RetryDelays = []time.Duration{200 * time.Millisecond}
	}
	return &Interpreter{
		airports:   table,
		dates:      resolver,
		passengers: normalizer,
		config:     config,
	}
}

func (in *Interpreter) Interpret(ctx context.Context, query string, now time.Time) (models.ExtractionResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.ExtractionResult{}, &models.InterpretationError{
			Field: models.FieldQuery,
			Err:   &models.ValidationError{Field: models.FieldQuery, Message: "is required"},
		}
	}

	var (
		route    airports.Route
		routeErr error
		rng      dates.Range
		dateErr  error
		pax      passengers.Extraction
		paxErr   error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		route, routeErr = in.airports.ExtractRoute(query)
	}()
	go func() {
		defer wg.Done()
		rng, dateErr = in.dates.Extract(query, now)
	}()
	go func() {
		defer wg.Done()
		pax, paxErr = in.passengers.Extract(query)
	}()
	wg.Wait()

	res := models.ExtractionResult{
		Sources: make(map[string]models.FieldSource),
		Issues:  append([]string(nil), route.Issues...),
	}

	routeSource := models.SourceStated
	if routeErr != nil {
		endpoints, err := in.assistRoute(ctx, query)
		if err != nil {
			log.Debug().Err(err).Msg("Route assistant unavailable")
			return models.ExtractionResult{}, &models.InterpretationError{Field: models.FieldRoute, Err: routeErr}
		}
		route.Endpoints = endpoints
		routeSource = models.SourceInferred
	}
	res.Sources[models.FieldLeavingAirport] = routeSource
	res.Sources[models.FieldDestinationAirport] = routeSource

	if dateErr != nil {
		rng = in.dates.Defaults(now)
		res.Issues = append(res.Issues, dateErr.Error()+"; using default dates")
	}
	res.Sources[models.FieldDepartureDate] = rng.DepartureSource
	res.Sources[models.FieldReturnDate] = rng.ReturnSource

	if paxErr != nil {
		return models.ExtractionResult{}, &models.InterpretationError{Field: models.FieldPassengers, Err: paxErr}
	}
	for field, source := range pax.Sources {
		res.Sources[field] = source
	}
	res.Adjustments = pax.Adjustments

	req, err := models.NewStructuredFlightRequest(
		route.Endpoints,
		models.TripDates{Departure: rng.Departure, Return: rng.Return},
		pax.Mix,
		now,
	)
	if err != nil {
		field := models.FieldQuery
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			field = vErr.Field
		}
		return models.ExtractionResult{}, &models.InterpretationError{Field: field, Err: err}
	}
	res.Request = req
	return res, nil
}

var errNoAssistant = errors.New("no route assistant configured")

func (in *Interpreter) assistRoute(ctx context.Context, query string) (models.RouteEndpoints, error) {
	if in.config.Assistant == nil {
		return models.RouteEndpoints{}, errNoAssistant
	}

	assistCtx, cancel := context.WithTimeout(ctx, in.config.Timeout)
	defer cancel()

	from, to, err := in.suggestWithRetry(assistCtx, query)
	if err != nil {
		return models.RouteEndpoints{}, err
	}

	leaving, err := in.airports.Resolve(from)
	if err != nil {
		return models.RouteEndpoints{}, err
	}
	destination, err := in.airports.Resolve(to)
	if err != nil {
		return models.RouteEndpoints{}, err
	}
	log.Info().Str("from", leaving).Str("to", destination).Msg("Route suggested by assistant")
	return models.RouteEndpoints{Leaving: leaving, Destination: destination}, nil
}

func (in *Interpreter) suggestWithRetry(ctx context.Context, query string) (string, string, error) {
	var lastErr error

	for attempt := 0; attempt <= in.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(in.config.RetryDelays) {
				delayIdx = len(in.config.RetryDelays) - 1
			}

			select {
			case <-time.After(in.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return "", "", ctx.Err()
			}
		}

		if in.config.RateLimiter != nil {
			if err := in.config.RateLimiter.Wait(ctx, AssistantKey); err != nil {
				return "", "", err
			}
		}

		from, to, err := in.config.Assistant.SuggestRoute(ctx, query)
		if err == nil {
			return from, to, nil
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Route assistant failed")
	}

	return "", "", lastErr
}
