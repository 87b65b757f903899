// Package dates resolves natural-language travel dates against an explicit
// reference time.
//
// Absolute phrases ("June 15, 2025", "2025-06-15", "6/15") parse directly.
// Relative phrases ("next Friday", "in two weeks", "tomorrow") resolve to
// their nearest future occurrence. A missing return falls back to a default
// trip length and a missing departure to a default lead time. A return that
// lands before the departure is rolled one cycle forward before giving up.
package dates

import (
	"strings"
	"time"

	"github.com/dharmasatrya/tripquery/internal/models"
)

type Config struct {
	DefaultTripDays int
	DefaultLeadDays int
}

func DefaultConfig() Config {
	return Config{
		DefaultTripDays: 14,
		DefaultLeadDays: 7,
	}
}

type Resolver struct {
	config Config
}

func NewResolver(config Config) *Resolver {
	defaults := DefaultConfig()
	if config.DefaultTripDays <= 0 {
		config.DefaultTripDays = defaults.DefaultTripDays
	}
	if config.DefaultLeadDays < 0 {
		config.DefaultLeadDays = defaults.DefaultLeadDays
	}
	return &Resolver{config: config}
}

type Range struct {
	Departure       time.Time
	Return          time.Time
	DepartureSource models.FieldSource
	ReturnSource    models.FieldSource
}

// Defaults is the range used when nothing about dates is known.
func (r *Resolver) Defaults(now time.Time) Range {
	dep := models.TruncateDate(now).AddDate(0, 0, r.config.DefaultLeadDays)
	return Range{
		Departure:       dep,
		Return:          dep.AddDate(0, 0, r.config.DefaultTripDays),
		DepartureSource: models.SourceDefaulted,
		ReturnSource:    models.SourceDefaulted,
	}
}

// ParseDate resolves a phrase holding exactly one date.
func (r *Resolver) ParseDate(phrase string, now time.Time) (time.Time, error) {
	m, err := single(phrase, models.TruncateDate(now))
	if err != nil {
		return time.Time{}, err
	}
	if m == nil {
		return time.Time{}, &models.DateResolutionError{Phrase: phrase, Reason: "no date found"}
	}
	if m.err != nil {
		return time.Time{}, &models.DateResolutionError{Phrase: m.phrase, Reason: m.err.Error()}
	}
	return m.date, nil
}

// Resolve turns a departure phrase and a return phrase into a range.
// Either may be empty. The return phrase may also be a trip length such
// as "for 10 days".
func (r *Resolver) Resolve(departure, ret string, now time.Time) (Range, error) {
	today := models.TruncateDate(now)

	dep, err := single(departure, today)
	if err != nil {
		return Range{}, err
	}
	if dep == nil && strings.TrimSpace(departure) != "" {
		return Range{}, &models.DateResolutionError{Phrase: departure, Reason: "no date found"}
	}
	back, err := single(ret, today)
	if err != nil {
		return Range{}, err
	}

	var length *tripLength
	if back == nil && strings.TrimSpace(ret) != "" {
		if length = findLength(ret); length == nil {
			return Range{}, &models.DateResolutionError{Phrase: ret, Reason: "no date or trip length found"}
		}
	}
	return r.resolve(dep, back, length, today)
}

// Extract finds the departure and return phrases in free text. A phrase
// preceded by a return marker ("return", "back", "until") is the return;
// otherwise the first date departs and the next one returns.
func (r *Resolver) Extract(text string, now time.Time) (Range, error) {
	today := models.TruncateDate(now)
	mentions := findMentions(text, today)
	lower := strings.ToLower(text)

	var dep, back *mention
	for i := range mentions {
		m := &mentions[i]
		prevEnd := -1
		if i > 0 {
			prevEnd = mentions[i-1].end
		}
		if back == nil && isReturnMention(lower, m.start, prevEnd) {
			back = m
			continue
		}
		if dep == nil {
			dep = m
			continue
		}
		if back == nil {
			back = m
		}
	}

	var length *tripLength
	if back == nil {
		length = findLength(text)
	}
	return r.resolve(dep, back, length, today)
}

func (r *Resolver) resolve(dep, back *mention, length *tripLength, today time.Time) (Range, error) {
	rng := r.Defaults(today)

	if dep != nil {
		if dep.err != nil {
			return Range{}, &models.DateResolutionError{Phrase: dep.phrase, Reason: dep.err.Error()}
		}
		if dep.date.Before(today) {
			return Range{}, &models.DateResolutionError{Phrase: dep.phrase, Reason: "departure is in the past"}
		}
		rng.Departure = dep.date
		rng.DepartureSource = models.SourceStated
		rng.Return = dep.date.AddDate(0, 0, r.config.DefaultTripDays)
	}

	switch {
	case back != nil:
		if back.err != nil {
			return Range{}, &models.DateResolutionError{Phrase: back.phrase, Reason: back.err.Error()}
		}
		if back.date.Before(today) {
			return Range{}, &models.DateResolutionError{Phrase: back.phrase, Reason: "return is in the past"}
		}
		rng.Return = back.date
		rng.ReturnSource = models.SourceStated

		if dep == nil && rng.Return.Before(rng.Departure) {
			// Only the return is known and it comes before the default
			// departure: leave today instead.
			rng.Departure = today
		}
		if rng.Return.Before(rng.Departure) {
			rolled, ok := rollForward(back.date, back.cycle, rng.Departure)
			if !ok {
				return Range{}, &models.DateResolutionError{Phrase: back.phrase, Reason: "return is before departure " + rng.Departure.Format(models.DateLayout)}
			}
			rng.Return = rolled
			rng.ReturnSource = models.SourceInferred
		}
	case length != nil:
		rng.Return = length.addTo(rng.Departure)
		rng.ReturnSource = models.SourceInferred
	}

	return rng, nil
}

// rollForward moves a return date into the next cycle so it is not before
// departure. Weekday phrases mean the first such weekday on or after the
// departure; month/day phrases move one year.
func rollForward(ret time.Time, c cycle, departure time.Time) (time.Time, bool) {
	switch c {
	case weekCycle:
		for ret.Before(departure) {
			ret = ret.AddDate(0, 0, 7)
		}
		return ret, true
	case yearCycle:
		ret = ret.AddDate(1, 0, 0)
		return ret, !ret.Before(departure)
	default:
		return ret, false
	}
}

var returnMarkers = map[string]bool{
	"return": true, "returning": true, "returns": true, "back": true,
	"until": true, "till": true, "til": true, "through": true, "thru": true,
}

// rangeJoins link two dates into a range: "June 15 to June 29".
var rangeJoins = map[string]bool{
	"to": true, "-": true, "–": true, "until": true, "till": true, "through": true, "thru": true, "and": true,
}

func isReturnMention(lower string, start, prevEnd int) bool {
	if prevEnd >= 0 && prevEnd <= start {
		gap := strings.TrimSpace(lower[prevEnd:start])
		gap = strings.TrimPrefix(gap, ",")
		if rangeJoins[strings.TrimSpace(gap)] {
			return true
		}
	}

	from := start - 40
	if from < 0 {
		from = 0
	}
	if prevEnd > from {
		from = prevEnd
	}
	words := strings.FieldsFunc(lower[from:start], func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';'
	})
	if len(words) > 3 {
		words = words[len(words)-3:]
	}
	for _, w := range words {
		if returnMarkers[w] {
			return true
		}
	}
	return false
}

func single(phrase string, today time.Time) (*mention, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, nil
	}
	mentions := findMentions(phrase, today)
	switch len(mentions) {
	case 0:
		return nil, nil
	case 1:
		return &mentions[0], nil
	default:
		return nil, &models.DateResolutionError{Phrase: phrase, Reason: "more than one date found"}
	}
}
