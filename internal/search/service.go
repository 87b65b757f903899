// Package search is the request service behind both endpoints. Structured
// and free-text searches converge on a StructuredFlightRequest and end at
// the booking link builder.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/airports"
	"github.com/dharmasatrya/tripquery/internal/booking"
	"github.com/dharmasatrya/tripquery/internal/cache"
	"github.com/dharmasatrya/tripquery/internal/interpreter"
	"github.com/dharmasatrya/tripquery/internal/models"
	"github.com/dharmasatrya/tripquery/internal/passengers"
)

type Config struct {
	// Location is the timezone "today" is taken in.
	Location *time.Location
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type Service struct {
	airports    *airports.Table
	passengers  *passengers.Normalizer
	interpreter *interpreter.Interpreter
	builder     *booking.Builder
	cache       cache.Cache
	location    *time.Location
	now         func() time.Time
}

func NewService(
	table *airports.Table,
	normalizer *passengers.Normalizer,
	interp *interpreter.Interpreter,
	builder *booking.Builder,
	c cache.Cache,
	config Config,
) *Service {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{
		airports:    table,
		passengers:  normalizer,
		interpreter: interp,
		builder:     builder,
		cache:       c,
		location:    config.Location,
		now:         config.Now,
	}
}

// Now is the reference time for resolving dates, in the configured zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// SearchStructured validates explicit fields and returns their booking
// link. Out-of-range values are rejected, never adjusted.
func (s *Service) SearchStructured(ctx context.Context, p models.FlightParams) (models.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return models.SearchResponse{}, err
	}

	req, err := s.Canonical(p)
	if err != nil {
		return models.SearchResponse{}, err
	}

	link, err := s.link(ctx, req)
	if err != nil {
		return models.SearchResponse{}, err
	}
	return models.SearchResponse{Success: true, BookingURL: link}, nil
}

// SearchByQuery interprets free text and returns the booking link with the
// parameters it was built from.
func (s *Service) SearchByQuery(ctx context.Context, query string) (models.AISearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return models.AISearchResponse{}, err
	}

	res, err := s.interpreter.Interpret(ctx, query, s.Now())
	if err != nil {
		return models.AISearchResponse{}, err
	}

	link, err := s.link(ctx, res.Request)
	if err != nil {
		return models.AISearchResponse{}, err
	}
	return models.AISearchResponse{
		Success:         true,
		BookingURL:      link,
		ExtractedParams: models.NewExtractedParams(res),
	}, nil
}

// Canonical turns structured fields into a validated request. Airport
// fields may hold a city or airport name as well as a code.
func (s *Service) Canonical(p models.FlightParams) (models.StructuredFlightRequest, error) {
	leaving, err := s.airport(models.FieldLeavingAirport, p.LeavingAirport)
	if err != nil {
		return models.StructuredFlightRequest{}, err
	}
	destination, err := s.airport(models.FieldDestinationAirport, p.DestinationAirport)
	if err != nil {
		return models.StructuredFlightRequest{}, err
	}

	departure, err := parseDate(models.FieldDepartureDate, p.DepartureDate)
	if err != nil {
		return models.StructuredFlightRequest{}, err
	}
	ret, err := parseDate(models.FieldReturnDate, p.ReturnDate)
	if err != nil {
		return models.StructuredFlightRequest{}, err
	}

	mix := p.Mix()
	if err := s.passengers.Validate(mix); err != nil {
		return models.StructuredFlightRequest{}, err
	}

	return models.NewStructuredFlightRequest(
		models.RouteEndpoints{Leaving: leaving, Destination: destination},
		models.TripDates{Departure: departure, Return: ret},
		mix,
		s.Now(),
	)
}

func (s *Service) airport(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", &models.ValidationError{Field: field, Message: "is required"}
	}
	code, err := s.airports.Resolve(value)
	if err != nil {
		var locErr *models.UnknownLocationError
		if errors.As(err, &locErr) {
			return "", &models.ValidationError{Field: field, Message: "unknown airport or city " + `"` + locErr.Location + `"`}
		}
		return "", err
	}
	return code, nil
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, &models.ValidationError{Field: field, Message: "is required"}
	}
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

func (s *Service) link(ctx context.Context, req models.StructuredFlightRequest) (string, error) {
	key := cache.Key{Builder: s.builder.Fingerprint(), Params: req.Params()}
	if link, found := s.cache.Get(ctx, key); found {
		return link, nil
	}

	link, err := s.builder.Build(req)
	if err != nil {
		log.Error().Err(err).Interface("params", key.Params).Msg("Booking link rejected a canonical request")
		return "", err
	}

	if err := s.cache.Set(ctx, key, link); err != nil {
		log.Warn().Err(err).Msg("Booking link cache write failed")
	}
	return link, nil
}
