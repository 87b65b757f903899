package models

import (
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

const (
	MaxPerAdultCategory = 9
	MaxChildren         = 8
	MaxInfantsPerKind   = 4
	MinChildAge         = 2
	MaxChildAge         = 17
)

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IsIATACode reports whether code is three uppercase ASCII letters.
func IsIATACode(code string) bool {
	return iataPattern.MatchString(code)
}

type RouteEndpoints struct {
	Leaving     string
	Destination string
}

type TripDates struct {
	Departure time.Time
	Return    time.Time
}

type PassengerMix struct {
	Adults        int
	Seniors       int
	Students      int
	ChildrenAges  []int
	InfantsOnSeat int
	InfantsOnLap  int
}

// Supervisors counts the travellers allowed to accompany minors.
func (m PassengerMix) Supervisors() int {
	return m.Adults + m.Seniors + m.Students
}

func (m PassengerMix) Minors() int {
	return len(m.ChildrenAges) + m.InfantsOnSeat + m.InfantsOnLap
}

func (m PassengerMix) Total() int {
	return m.Supervisors() + m.Minors()
}

func (m PassengerMix) clone() PassengerMix {
	c := m
	c.ChildrenAges = append([]int(nil), m.ChildrenAges...)
	if c.ChildrenAges == nil {
		c.ChildrenAges = []int{}
	}
	return c
}

// Validate checks the mix without adjusting it.
func (m PassengerMix) Validate() error {
	counts := []struct {
		field string
		value int
		max   int
	}{
		{FieldAdults, m.Adults, MaxPerAdultCategory},
		{FieldSeniors, m.Seniors, MaxPerAdultCategory},
		{FieldStudents, m.Students, MaxPerAdultCategory},
		{FieldInfantsOnSeat, m.InfantsOnSeat, MaxInfantsPerKind},
		{FieldInfantsOnLap, m.InfantsOnLap, MaxInfantsPerKind},
	}
	for _, c := range counts {
		if c.value < 0 || c.value > c.max {
			return &ValidationError{Field: c.field, Message: fmt.Sprintf("must be between 0 and %d", c.max)}
		}
	}

	if len(m.ChildrenAges) > MaxChildren {
		return &ValidationError{Field: FieldChildrenAges, Message: fmt.Sprintf("at most %d children are allowed", MaxChildren)}
	}
	for _, age := range m.ChildrenAges {
		if age < MinChildAge || age > MaxChildAge {
			return &ValidationError{Field: FieldChildrenAges, Message: fmt.Sprintf("child age %d is outside %d-%d", age, MinChildAge, MaxChildAge)}
		}
	}

	if m.Supervisors() == 0 {
		if m.Minors() > 0 {
			return &ValidationError{Field: FieldAdults, Message: "children and infants must travel with at least one adult, senior or student"}
		}
		return &ValidationError{Field: FieldAdults, Message: "at least one adult, senior or student is required"}
	}
	if m.InfantsOnLap > m.Supervisors() {
		return &ValidationError{Field: FieldInfantsOnLap, Message: "each lap infant needs its own adult, senior or student"}
	}
	return nil
}

// StructuredFlightRequest is the canonical, validated search both entry
// paths converge on. Build it with NewStructuredFlightRequest.
type StructuredFlightRequest struct {
	Route      RouteEndpoints
	Dates      TripDates
	Passengers PassengerMix
}

func NewStructuredFlightRequest(route RouteEndpoints, dates TripDates, mix PassengerMix, now time.Time) (StructuredFlightRequest, error) {
	if !IsIATACode(route.Leaving) {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldLeavingAirport, Message: "must be a 3-letter IATA code"}
	}
	if !IsIATACode(route.Destination) {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldDestinationAirport, Message: "must be a 3-letter IATA code"}
	}
	if route.Leaving == route.Destination {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldDestinationAirport, Message: "leaving and destination airports must differ (both are " + route.Leaving + ")"}
	}

	dep := TruncateDate(dates.Departure)
	ret := TruncateDate(dates.Return)
	today := TruncateDate(now)
	if dep.IsZero() {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldDepartureDate, Message: "is required"}
	}
	if ret.IsZero() {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldReturnDate, Message: "is required"}
	}
	if dep.Before(today) {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldDepartureDate, Message: dep.Format(DateLayout) + " is in the past"}
	}
	if ret.Before(dep) {
		return StructuredFlightRequest{}, &ValidationError{Field: FieldReturnDate, Message: "must not be before departure_date"}
	}

	if err := mix.Validate(); err != nil {
		return StructuredFlightRequest{}, err
	}

	return StructuredFlightRequest{
		Route:      route,
		Dates:      TripDates{Departure: dep, Return: ret},
		Passengers: mix.clone(),
	}, nil
}

// Params renders the request in its wire shape.
func (r StructuredFlightRequest) Params() FlightParams {
	return FlightParams{
		LeavingAirport:     r.Route.Leaving,
		DestinationAirport: r.Route.Destination,
		DepartureDate:      r.Dates.Departure.Format(DateLayout),
		ReturnDate:         r.Dates.Return.Format(DateLayout),
		NumAdults:          r.Passengers.Adults,
		NumSeniors:         r.Passengers.Seniors,
		NumStudents:        r.Passengers.Students,
		ChildrenAges:       append([]int{}, r.Passengers.ChildrenAges...),
		InfantsOnSeat:      r.Passengers.InfantsOnSeat,
		InfantsOnLap:       r.Passengers.InfantsOnLap,
	}
}

// TruncateDate drops the clock and zone, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type FieldSource string

const (
	SourceStated    FieldSource = "stated"
	SourceInferred  FieldSource = "inferred"
	SourceDefaulted FieldSource = "defaulted"
)

// ExtractionResult is what the interpreter understood from a free-text query.
type ExtractionResult struct {
	Request     StructuredFlightRequest
	Sources     map[string]FieldSource
	Adjustments []string
	Issues      []string
}
