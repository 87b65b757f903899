package airports

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dharmasatrya/tripquery/internal/lexer"
	"github.com/dharmasatrya/tripquery/internal/models"
)

// ErrNoRoute is returned when free text names fewer than two places.
var ErrNoRoute = errors.New("origin and destination not found")

type role int

const (
	anyRole role = iota
	originRole
	destinationRole
)

// Route is what ExtractRoute found. Issues lists capitalised words after a
// route marker that did not resolve to any airport.
type Route struct {
	Endpoints models.RouteEndpoints
	Issues    []string
}

type hit struct {
	n      int
	code   string
	role   role
	phrase string
}

var originMarkers = [][]string{
	{"from"}, {"leaving"}, {"departing"}, {"depart"}, {"out", "of"}, {"between"},
}

var destinationMarkers = [][]string{
	{"to"}, {"into"}, {"arriving", "in"}, {"arriving", "at"}, {"arrive", "in"}, {"arrive", "at"},
	{"visit"}, {"visiting"}, {"towards"}, {"destination"},
}

// notPlaces are capitalised words that commonly follow "to" or "from"
// without naming a place.
var notPlaces = map[string]bool{
	"january": true, "february": true, "march": true, "april": true, "may": true, "june": true,
	"july": true, "august": true, "september": true, "october": true, "november": true, "december": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true, "today": true, "tomorrow": true, "next": true, "this": true,
	"i": true, "me": true, "my": true, "we": true, "the": true, "a": true, "an": true,
}

// commonWords are three-letter English words that read as codes when a
// query is typed in capitals. They count as codes only after a marker and
// only when the table knows them.
var commonWords = map[string]bool{
	"the": true, "and": true, "for": true, "fly": true, "get": true, "are": true, "you": true,
	"can": true, "our": true, "out": true, "but": true, "not": true, "all": true, "any": true,
	"one": true, "two": true, "six": true, "ten": true, "new": true, "see": true, "via": true,
	"who": true, "how": true, "why": true, "its": true, "his": true, "her": true, "him": true,
	"she": true, "day": true, "may": true, "way": true, "let": true, "got": true, "now": true,
	"too": true, "off": true, "own": true, "lap": true, "age": true, "old": true, "was": true,
	"had": true, "has": true, "use": true, "buy": true, "say": true, "end": true, "yes": true,
	"per": true, "man": true, "men": true, "son": true, "dad": true, "mom": true, "kid": true,
	"few": true, "ago": true, "big": true, "top": true, "low": true, "hot": true, "fun": true,
	"did": true, "try": true, "put": true, "ask": true, "far": true, "air": true, "bus": true,
	"car": true, "pay": true, "set": true, "job": true, "red": true, "sun": true, "mon": true,
	"tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "jan": true, "feb": true,
	"mar": true, "apr": true, "jun": true, "jul": true, "aug": true, "sep": true, "oct": true,
	"nov": true, "dec": true,
}

// ExtractRoute finds the origin and destination in free text. Places after
// an origin marker ("from", "leaving", "out of") or a destination marker
// ("to", "into", "arriving in") take that role; "between X and Y" reads
// X as origin; unmarked places fill the remaining roles in order of
// appearance.
func (t *Table) ExtractRoute(text string) (Route, error) {
	toks := lexer.Tokenize(text)

	var hits []hit
	var unknown []string
	between := false
	for i := 0; i < len(toks); {
		if toks[i].Punct {
			i++
			continue
		}
		r, marked := markerBefore(toks, i)
		if between && r == anyRole && i > 0 && toks[i-1].Lower == "and" {
			r, marked = destinationRole, true
			between = false
		}
		if h, ok := t.matchAt(toks, i, marked); ok {
			h.role = r
			if r == originRole && precededBy(toks, i, "between") {
				between = true
			}
			hits = append(hits, h)
			i += h.n
			continue
		}
		if marked && isCapitalised(toks[i].Text) && !notPlaces[toks[i].Lower] && !commonWords[toks[i].Lower] {
			unknown = append(unknown, toks[i].Text)
		}
		i++
	}

	var route Route
	for _, u := range unknown {
		route.Issues = append(route.Issues, (&models.UnknownLocationError{Location: u}).Error())
	}

	origin, dest := -1, -1
	for k, h := range hits {
		if h.role == originRole && origin < 0 {
			origin = k
		}
		if h.role == destinationRole && dest < 0 && k != origin {
			dest = k
		}
	}
	for k, h := range hits {
		if k == origin || k == dest || h.role != anyRole {
			continue
		}
		if origin < 0 {
			origin = k
		} else if dest < 0 {
			dest = k
		}
	}

	if origin < 0 || dest < 0 {
		if len(unknown) > 0 {
			return route, &models.UnknownLocationError{Location: unknown[0]}
		}
		missing := "origin"
		if origin >= 0 {
			missing = "destination"
		}
		return route, fmt.Errorf("%w: no %s", ErrNoRoute, missing)
	}

	route.Endpoints = models.RouteEndpoints{
		Leaving:     hits[origin].code,
		Destination: hits[dest].code,
	}
	return route, nil
}

// matchAt finds the longest place name starting at i. Unmarked names must
// be capitalised. Three-letter codes must be written in capitals; an
// unknown code needs a marker before it or another code beside it
// ("BDL to PIT", "BDL-PIT"), and a common word needs both a marker and a
// table entry.
func (t *Table) matchAt(toks []lexer.Token, i int, marked bool) (hit, bool) {
	if !marked && !isCapitalised(toks[i].Text) {
		return hit{}, false
	}

	words := make([]string, 0, t.maxWords)
	for j := i; j < len(toks) && j < i+t.maxWords && !toks[j].Punct; j++ {
		words = append(words, fold(toks[j].Text))
	}
	for n := len(words); n > 0; n-- {
		key := strings.Join(words[:n], " ")
		if code, ok := t.names[key]; ok {
			return hit{n: n, code: code, phrase: joinText(toks[i : i+n])}, true
		}
	}

	text := toks[i].Text
	if !isCodeShape(text) || strings.ToUpper(text) != text {
		return hit{}, false
	}
	ok := t.known(text) || marked || pairedCode(toks, i)
	if commonWords[toks[i].Lower] {
		ok = marked && t.known(text)
	}
	if !ok {
		return hit{}, false
	}
	return hit{n: 1, code: t.code(text), phrase: text}, true
}

// pairedCode reports whether the code at i sits next to another code,
// directly ("BDL PIT", "BDL-PIT") or across "to".
func pairedCode(toks []lexer.Token, i int) bool {
	if i+1 < len(toks) && codeCandidate(toks[i+1]) {
		return true
	}
	if i+2 < len(toks) && toks[i+1].Lower == "to" && codeCandidate(toks[i+2]) {
		return true
	}
	return i > 0 && codeCandidate(toks[i-1])
}

func codeCandidate(tok lexer.Token) bool {
	return !tok.Punct && isCodeShape(tok.Text) && strings.ToUpper(tok.Text) == tok.Text && !commonWords[tok.Lower]
}

func markerBefore(toks []lexer.Token, i int) (role, bool) {
	for _, m := range originMarkers {
		if endsWith(toks, i, m) {
			return originRole, true
		}
	}
	for _, m := range destinationMarkers {
		if endsWith(toks, i, m) {
			return destinationRole, true
		}
	}
	return anyRole, false
}

func endsWith(toks []lexer.Token, i int, words []string) bool {
	if i < len(words) {
		return false
	}
	for k, w := range words {
		t := toks[i-len(words)+k]
		if t.Punct || t.Lower != w {
			return false
		}
	}
	return true
}

func precededBy(toks []lexer.Token, i int, word string) bool {
	return i > 0 && !toks[i-1].Punct && toks[i-1].Lower == word
}

func isCapitalised(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func joinText(toks []lexer.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
