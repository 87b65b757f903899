package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripquery/internal/airports"
	"github.com/dharmasatrya/tripquery/internal/booking"
	"github.com/dharmasatrya/tripquery/internal/cache"
	"github.com/dharmasatrya/tripquery/internal/dates"
	"github.com/dharmasatrya/tripquery/internal/interpreter"
	"github.com/dharmasatrya/tripquery/internal/models"
	"github.com/dharmasatrya/tripquery/internal/passengers"
)

var now = time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)

const scenario = "I want to fly from New York to Istanbul on June 15, 2025 and return on June 29, 2025 with 2 adults and 1 child who is 5 years old."

type recordingCache struct {
	links map[string]string
	gets  int
	sets  int
}

func (r *recordingCache) Get(ctx context.Context, key cache.Key) (string, bool) {
	r.gets++
	link, ok := r.links[key.Builder+key.Params.LeavingAirport+key.Params.DestinationAirport]
	return link, ok
}

func (r *recordingCache) Set(ctx context.Context, key cache.Key, link string) error {
	r.sets++
	r.links[key.Builder+key.Params.LeavingAirport+key.Params.DestinationAirport] = link
	return nil
}

func (r *recordingCache) Close() error { return nil }

func newService(t *testing.T, c cache.Cache, config Config) *Service {
	t.Helper()
	d, err := airports.DefaultData()
	require.NoError(t, err)
	table, err := airports.NewTable(d)
	require.NoError(t, err)

	normalizer := passengers.NewNormalizer()
	interp := interpreter.New(table, dates.NewResolver(dates.DefaultConfig()), normalizer, interpreter.Config{})
	builder, err := booking.NewBuilder(booking.Config{})
	require.NoError(t, err)

	if config.Now == nil {
		config.Now = func() time.Time { return now }
	}
	return NewService(table, normalizer, interp, builder, c, config)
}

func validParams() models.FlightParams {
	return models.FlightParams{
		LeavingAirport:     "JFK",
		DestinationAirport: "IST",
		DepartureDate:      "2025-06-15",
		ReturnDate:         "2025-06-29",
		NumAdults:          2,
		ChildrenAges:       []int{5},
	}
}

func TestSearchByQueryScenario(t *testing.T) {
	svc := newService(t, nil, Config{})

	resp, err := svc.SearchByQuery(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "https://www.kayak.com/flights/JFK-IST/2025-06-15/2025-06-29/2adults/children-5?sort=bestflight_a", resp.BookingURL)

	p := resp.ExtractedParams
	assert.Equal(t, "JFK", p.LeavingAirport)
	assert.Equal(t, "IST", p.DestinationAirport)
	assert.Equal(t, "2025-06-15", p.DepartureDate)
	assert.Equal(t, "2025-06-29", p.ReturnDate)
	assert.Equal(t, 2, p.NumAdults)
	assert.Equal(t, []int{5}, p.ChildrenAges)
	assert.Equal(t, models.SourceStated, p.FieldSources[models.FieldDepartureDate])
}

func TestStructuredRoundTrip(t *testing.T) {
	svc := newService(t, nil, Config{})

	queries := []string{
		scenario,
		"Boston to Miami next Friday for a week, me and my wife and our 2 kids aged 4 and 9",
		"from London to Tokyo on 6/1 returning 6/20 with two seniors and a lap infant",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			ai, err := svc.SearchByQuery(context.Background(), q)
			require.NoError(t, err)

			structured, err := svc.SearchStructured(context.Background(), ai.ExtractedParams.FlightParams)
			require.NoError(t, err)
			assert.Equal(t, ai.BookingURL, structured.BookingURL)
		})
	}
}

func TestSearchStructured(t *testing.T) {
	svc := newService(t, nil, Config{})

	resp, err := svc.SearchStructured(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "https://www.kayak.com/flights/JFK-IST/2025-06-15/2025-06-29/2adults/children-5?sort=bestflight_a", resp.BookingURL)

	byName := validParams()
	byName.LeavingAirport = "New York"
	byName.DestinationAirport = "istanbul"
	resp2, err := svc.SearchStructured(context.Background(), byName)
	require.NoError(t, err)
	assert.Equal(t, resp.BookingURL, resp2.BookingURL)
}

func TestSearchStructuredRejects(t *testing.T) {
	svc := newService(t, nil, Config{})

	tests := []struct {
		name   string
		modify func(p *models.FlightParams)
		field  string
	}{
		{"same airport", func(p *models.FlightParams) { p.DestinationAirport = "JFK" }, models.FieldDestinationAirport},
		{"city resolves to same airport", func(p *models.FlightParams) { p.DestinationAirport = "New York" }, models.FieldDestinationAirport},
		{"missing origin", func(p *models.FlightParams) { p.LeavingAirport = "" }, models.FieldLeavingAirport},
		{"unknown origin", func(p *models.FlightParams) { p.LeavingAirport = "Atlantis" }, models.FieldLeavingAirport},
		{"bad date", func(p *models.FlightParams) { p.DepartureDate = "15/06/2025" }, models.FieldDepartureDate},
		{"past departure", func(p *models.FlightParams) { p.DepartureDate = "2025-01-01" }, models.FieldDepartureDate},
		{"return first", func(p *models.FlightParams) { p.ReturnDate = "2025-06-01" }, models.FieldReturnDate},
		{"missing return", func(p *models.FlightParams) { p.ReturnDate = "" }, models.FieldReturnDate},
		{"too many adults", func(p *models.FlightParams) { p.NumAdults = 10 }, models.FieldAdults},
		{"child too old", func(p *models.FlightParams) { p.ChildrenAges = []int{18} }, models.FieldChildrenAges},
		{"children alone", func(p *models.FlightParams) { p.NumAdults = 0 }, models.FieldAdults},
		{"lap infants exceed adults", func(p *models.FlightParams) { p.InfantsOnLap = 3 }, models.FieldInfantsOnLap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.modify(&p)

			_, err := svc.SearchStructured(context.Background(), p)
			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestSearchByQueryFailures(t *testing.T) {
	svc := newService(t, nil, Config{})

	_, err := svc.SearchByQuery(context.Background(), "Find a flight from Boston to Miami next Friday for just an infant on my lap")
	var intErr *models.InterpretationError
	require.True(t, errors.As(err, &intErr))
	assert.Equal(t, models.FieldPassengers, intErr.Field)

	_, err = svc.SearchByQuery(context.Background(), "from New York to JFK tomorrow")
	require.True(t, errors.As(err, &intErr))
	assert.Equal(t, models.FieldDestinationAirport, intErr.Field)
}

func TestSearchUsesCache(t *testing.T) {
	c := &recordingCache{links: map[string]string{}}
	svc := newService(t, c, Config{})

	first, err := svc.SearchStructured(context.Background(), validParams())
	require.NoError(t, err)
	second, err := svc.SearchStructured(context.Background(), validParams())
	require.NoError(t, err)

	assert.Equal(t, first.BookingURL, second.BookingURL)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 1, c.sets)
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	svc := newService(t, nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SearchStructured(ctx, validParams())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.SearchByQuery(ctx, scenario)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNowUsesConfiguredZone(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	late := time.Date(2025, time.March, 4, 20, 0, 0, 0, time.UTC)
	svc := newService(t, nil, Config{Location: wib, Now: func() time.Time { return late }})

	assert.Equal(t, 5, svc.Now().Day())

	p := validParams()
	p.DepartureDate = "2025-03-05"
	p.ReturnDate = "2025-03-10"
	_, err := svc.SearchStructured(context.Background(), p)
	assert.NoError(t, err)
}
