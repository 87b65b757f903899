package dates

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/tripquery/internal/lexer"
)

// cycle says how a date phrase may be rolled forward when it lands before
// the departure: "June 29" can move a year, "Friday" a week, "2025-06-29"
// cannot move at all.
type cycle int

const (
	noCycle cycle = iota
	weekCycle
	yearCycle
)

type mention struct {
	start, end int
	phrase     string
	date       time.Time
	cycle      cycle
	err        error
}

type tripLength struct {
	phrase string
	days   int
	months int
}

func (l tripLength) addTo(t time.Time) time.Time {
	return t.AddDate(0, l.months, l.days)
}

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

const weekdayNames = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April, "may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

type matcher struct {
	re      *regexp.Regexp
	resolve func(g []string, today time.Time) (time.Time, cycle, error)
}

var matchers = []matcher{
	{
		re: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			y, _ := strconv.Atoi(g[1])
			m, _ := strconv.Atoi(g[2])
			d, _ := strconv.Atoi(g[3])
			t, err := calendarDate(y, time.Month(m), d)
			return t, noCycle, err
		},
	},
	{
		re: regexp.MustCompile(`\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s*(\d{4})\b)?`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			d, _ := strconv.Atoi(g[2])
			return monthDay(months[g[1]], d, g[3], today)
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)\b\.?(?:,?\s*(\d{4})\b)?`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			d, _ := strconv.Atoi(g[1])
			return monthDay(months[g[2]], d, g[3], today)
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			m, _ := strconv.Atoi(g[1])
			d, _ := strconv.Atoi(g[2])
			year := g[3]
			if len(year) == 2 {
				year = "20" + year
			}
			if m < 1 || m > 12 {
				return time.Time{}, noCycle, fmt.Errorf("month %d does not exist", m)
			}
			return monthDay(time.Month(m), d, year, today)
		},
	},
	{
		re: regexp.MustCompile(`\b(?:the\s+)?day\s+after\s+tomorrow\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			return today.AddDate(0, 0, 2), noCycle, nil
		},
	},
	{
		re: regexp.MustCompile(`\b(today|tonight|tomorrow)\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			if g[1] == "tomorrow" {
				return today.AddDate(0, 0, 1), noCycle, nil
			}
			return today, noCycle, nil
		},
	},
	{
		re: regexp.MustCompile(`\b(?:(next|this|coming)\s+)?(` + weekdayNames + `)\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			return nextWeekday(today, weekdays[g[2]], g[1] == "this"), weekCycle, nil
		},
	},
	{
		re: regexp.MustCompile(`\b(?:(?:next|this|coming|the)\s+)?weekend\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			return nextWeekday(today, time.Saturday, true), weekCycle, nil
		},
	},
	{
		re: regexp.MustCompile(`\bin\s+(?:a\s+)?(` + lexer.NumberPattern + `)\s+(?:of\s+)?(days?|weeks?|months?)\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			n := count(g[1])
			switch strings.TrimSuffix(g[2], "s") {
			case "week":
				return today.AddDate(0, 0, 7*n), noCycle, nil
			case "month":
				return today.AddDate(0, n, 0), noCycle, nil
			default:
				return today.AddDate(0, 0, n), noCycle, nil
			}
		},
	},
	{
		re: regexp.MustCompile(`\bnext\s+(week|month|year)\b`),
		resolve: func(g []string, today time.Time) (time.Time, cycle, error) {
			switch g[1] {
			case "month":
				return today.AddDate(0, 1, 0), noCycle, nil
			case "year":
				return today.AddDate(1, 0, 0), noCycle, nil
			default:
				return today.AddDate(0, 0, 7), noCycle, nil
			}
		},
	},
}

const rangeJoin = `\s*(?:-|–|to|through|thru|until|till)\s*`

// dayRange is "June 15-22" or "15-22 June": one month, two days. The
// group indexes say where month, days and the optional year sit; day
// groups keep their ordinal suffix so spans line up with single dates.
type dayRange struct {
	re                         *regexp.Regexp
	month, first, second, year int
}

var dayRanges = []dayRange{
	{
		re:    regexp.MustCompile(`\b(` + monthNames + `)\.?\s+(\d{1,2}(?:st|nd|rd|th)?)` + rangeJoin + `(\d{1,2}(?:st|nd|rd|th)?)\b(?:,?\s*(\d{4})\b)?`),
		month: 1, first: 2, second: 3, year: 4,
	},
	{
		re:    regexp.MustCompile(`\b(\d{1,2}(?:st|nd|rd|th)?)` + rangeJoin + `(\d{1,2}(?:st|nd|rd|th)?)\s+(?:of\s+)?(` + monthNames + `)\b\.?(?:,?\s*(\d{4})\b)?`),
		month: 3, first: 1, second: 2, year: 4,
	},
}

var lengthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfor\s+(?:a\s+)?(` + lexer.NumberPattern + `)\s+(?:of\s+)?(days?|nights?|weeks?|months?)\b`),
	regexp.MustCompile(`\b(` + lexer.NumberPattern + `)[\s-]+(days?|nights?|weeks?)[\s-]+(?:long\s+)?(?:trip|stay|vacation|holiday|getaway|visit)\b`),
}

// findMentions returns the date phrases in text ordered by position.
// Overlapping matches keep the earliest, longest phrase.
func findMentions(text string, today time.Time) []mention {
	lower := strings.ToLower(text)

	// Day ranges go first so they win over the single dates inside them.
	var found []mention
	for _, r := range dayRanges {
		for _, idx := range r.re.FindAllStringSubmatchIndex(lower, -1) {
			g := submatches(lower, idx)
			d1, _ := strconv.Atoi(strings.TrimRight(g[r.first], "stndrh"))
			d2, _ := strconv.Atoi(strings.TrimRight(g[r.second], "stndrh"))
			if d2 <= d1 {
				continue
			}
			m := months[g[r.month]]
			for _, span := range [][3]int{
				{idx[0], idx[2*r.first+1], d1},
				{idx[2*r.second], idx[1], d2},
			} {
				date, c, err := monthDay(m, span[2], g[r.year], today)
				found = append(found, mention{
					start:  span[0],
					end:    span[1],
					phrase: text[span[0]:span[1]],
					date:   date,
					cycle:  c,
					err:    err,
				})
			}
		}
	}

	for _, m := range matchers {
		for _, idx := range m.re.FindAllStringSubmatchIndex(lower, -1) {
			groups := submatches(lower, idx)
			date, c, err := m.resolve(groups, today)
			found = append(found, mention{
				start:  idx[0],
				end:    idx[1],
				phrase: text[idx[0]:idx[1]],
				date:   date,
				cycle:  c,
				err:    err,
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].start != found[j].start {
			return found[i].start < found[j].start
		}
		return found[i].end > found[j].end
	})

	result := make([]mention, 0, len(found))
	end := -1
	for _, m := range found {
		if m.start < end {
			continue
		}
		result = append(result, m)
		end = m.end
	}
	return result
}

func submatches(s string, idx []int) []string {
	groups := make([]string, len(idx)/2)
	for i := range groups {
		if idx[2*i] >= 0 {
			groups[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return groups
}

func findLength(text string) *tripLength {
	lower := strings.ToLower(text)
	for _, re := range lengthPatterns {
		g := re.FindStringSubmatch(lower)
		if g == nil {
			continue
		}
		n := count(g[1])
		l := &tripLength{phrase: g[0]}
		switch strings.TrimSuffix(g[2], "s") {
		case "week":
			l.days = 7 * n
		case "month":
			l.months = n
		default:
			l.days = n
		}
		return l
	}
	return nil
}

func count(word string) int {
	switch word {
	case "a", "an":
		return 1
	}
	n, _ := lexer.Number(word)
	return n
}

func calendarDate(y int, m time.Month, d int) (time.Time, error) {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("%s %d, %d does not exist", m, d, y)
	}
	return t, nil
}

// monthDay resolves a month and day. Without a year it picks the nearest
// occurrence on or after today.
func monthDay(m time.Month, d int, year string, today time.Time) (time.Time, cycle, error) {
	if year != "" {
		y, _ := strconv.Atoi(year)
		t, err := calendarDate(y, m, d)
		return t, noCycle, err
	}
	if d < 1 || d > 31 {
		return time.Time{}, yearCycle, fmt.Errorf("day %d does not exist", d)
	}
	// February 29 can be up to eight years away.
	for y := today.Year(); y <= today.Year()+8; y++ {
		t, err := calendarDate(y, m, d)
		if err != nil || t.Before(today) {
			continue
		}
		return t, yearCycle, nil
	}
	return time.Time{}, yearCycle, fmt.Errorf("%s %d does not exist", m, d)
}

func nextWeekday(today time.Time, wd time.Weekday, allowToday bool) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 && !allowToday {
		days = 7
	}
	return today.AddDate(0, 0, days)
}
