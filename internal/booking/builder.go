// Package booking builds booking deep links from canonical flight requests.
//
// Build is pure: equal requests always produce byte-identical links, so a
// link can be cached or compared against a golden value.
package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dharmasatrya/tripquery/internal/models"
)

type Style string

const (
	// StyleKayak: {base}/flights/JFK-IST/2025-06-15/2025-06-29/2adults/children-5-1S-1L?sort=bestflight_a
	StyleKayak Style = "kayak"
	// StyleQuery: {base}?from=JFK&to=IST&depart=...&return=...&adults=2&...
	StyleQuery Style = "query"
)

const DefaultBaseURL = "https://www.kayak.com"

type Config struct {
	Style   Style
	BaseURL string
}

type Builder struct {
	style Style
	base  string
}

func NewBuilder(config Config) (*Builder, error) {
	if config.Style == "" {
		config.Style = StyleKayak
	}
	if config.Style != StyleKayak && config.Style != StyleQuery {
		return nil, fmt.Errorf("unknown booking style %q", config.Style)
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("booking base url %q must be absolute", config.BaseURL)
	}
	return &Builder{
		style: config.Style,
		base:  strings.TrimSuffix(config.BaseURL, "/"),
	}, nil
}

// Fingerprint identifies the link format, so cached links from a
// differently configured builder are never reused.
func (b *Builder) Fingerprint() string {
	return string(b.style) + "|" + b.base
}

// Build returns the booking link for req. A request that breaks the
// canonical invariants is a bug upstream and yields an InvariantViolation.
func (b *Builder) Build(req models.StructuredFlightRequest) (string, error) {
	if err := check(req); err != nil {
		return "", err
	}
	if b.style == StyleQuery {
		return b.query(req), nil
	}
	return b.kayak(req), nil
}

func check(req models.StructuredFlightRequest) error {
	switch {
	case !models.IsIATACode(req.Route.Leaving) || !models.IsIATACode(req.Route.Destination):
		return &models.InvariantViolation{Reason: fmt.Sprintf("route %q-%q is not a pair of IATA codes", req.Route.Leaving, req.Route.Destination)}
	case req.Route.Leaving == req.Route.Destination:
		return &models.InvariantViolation{Reason: "route starts and ends at " + req.Route.Leaving}
	case req.Dates.Departure.IsZero() || req.Dates.Return.IsZero():
		return &models.InvariantViolation{Reason: "trip dates are missing"}
	case req.Dates.Return.Before(req.Dates.Departure):
		return &models.InvariantViolation{Reason: "return is before departure"}
	}
	if err := req.Passengers.Validate(); err != nil {
		return &models.InvariantViolation{Reason: err.Error()}
	}
	return nil
}

func (b *Builder) kayak(req models.StructuredFlightRequest) string {
	p := req.Passengers
	segments := []string{
		"flights",
		url.PathEscape(req.Route.Leaving + "-" + req.Route.Destination),
		req.Dates.Departure.Format(models.DateLayout),
		req.Dates.Return.Format(models.DateLayout),
	}
	for _, c := range []struct {
		n    int
		unit string
	}{
		{p.Adults, "adults"},
		{p.Seniors, "seniors"},
		{p.Students, "students"},
	} {
		if c.n > 0 {
			segments = append(segments, strconv.Itoa(c.n)+c.unit)
		}
	}

	var minors []string
	for _, age := range p.ChildrenAges {
		minors = append(minors, strconv.Itoa(age))
	}
	for i := 0; i < p.InfantsOnSeat; i++ {
		minors = append(minors, "1S")
	}
	for i := 0; i < p.InfantsOnLap; i++ {
		minors = append(minors, "1L")
	}
	if len(minors) > 0 {
		segments = append(segments, url.PathEscape("children-"+strings.Join(minors, "-")))
	}

	return b.base + "/" + strings.Join(segments, "/") + "?sort=bestflight_a"
}

// query writes parameters in a fixed order; url.Values would sort them.
func (b *Builder) query(req models.StructuredFlightRequest) string {
	p := req.Passengers
	ages := make([]string, len(p.ChildrenAges))
	for i, age := range p.ChildrenAges {
		ages[i] = strconv.Itoa(age)
	}

	params := [][2]string{
		{"from", req.Route.Leaving},
		{"to", req.Route.Destination},
		{"depart", req.Dates.Departure.Format(models.DateLayout)},
		{"return", req.Dates.Return.Format(models.DateLayout)},
		{"adults", strconv.Itoa(p.Adults)},
		{"seniors", strconv.Itoa(p.Seniors)},
		{"students", strconv.Itoa(p.Students)},
		{"children", strings.Join(ages, ",")},
		{"infants_seat", strconv.Itoa(p.InfantsOnSeat)},
		{"infants_lap", strconv.Itoa(p.InfantsOnLap)},
	}

	var sb strings.Builder
	sb.WriteString(b.base)
	for i, kv := range params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(kv[0])
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv[1]))
	}
	return sb.String()
}
