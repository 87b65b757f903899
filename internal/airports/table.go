// Package airports maps city names, airport names and codes to IATA
// airport codes. The table is loaded once at start and never mutated, so a
// *Table is safe for concurrent use.
package airports

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dharmasatrya/tripquery/internal/models"
)

//go:embed data/airports.json
var embedded []byte

type Airport struct {
	IATA    string   `json:"iata" bson:"iata_code"`
	Name    string   `json:"name" bson:"name"`
	City    string   `json:"city" bson:"city"`
	Country string   `json:"country" bson:"country"`
	Aliases []string `json:"aliases,omitempty" bson:"aliases,omitempty"`
}

// City groups the airports of a multi-airport city under a default.
// Code is the IATA metro code (NYC, LON) when there is one.
type City struct {
	Name    string   `json:"name"`
	Code    string   `json:"code,omitempty"`
	Default string   `json:"default"`
	Aliases []string `json:"aliases,omitempty"`
}

type Data struct {
	Airports []Airport `json:"airports"`
	Cities   []City    `json:"cities"`
}

// Merge returns d with other laid on top: airports replace by code,
// cities by name.
func (d Data) Merge(other Data) Data {
	out := Data{}

	seen := make(map[string]int)
	for _, a := range append(append([]Airport{}, d.Airports...), other.Airports...) {
		code := strings.ToUpper(a.IATA)
		if i, ok := seen[code]; ok {
			out.Airports[i] = a
			continue
		}
		seen[code] = len(out.Airports)
		out.Airports = append(out.Airports, a)
	}

	seenCity := make(map[string]int)
	for _, c := range append(append([]City{}, d.Cities...), other.Cities...) {
		key := fold(c.Name)
		if i, ok := seenCity[key]; ok {
			out.Cities[i] = c
			continue
		}
		seenCity[key] = len(out.Cities)
		out.Cities = append(out.Cities, c)
	}
	return out
}

func ParseData(r io.Reader) (Data, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Data{}, fmt.Errorf("decode airport data: %w", err)
	}
	return d, nil
}

// DefaultData is the airport table shipped with the binary.
func DefaultData() (Data, error) {
	return ParseData(bytes.NewReader(embedded))
}

func LoadFile(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("open airport data: %w", err)
	}
	defer f.Close()
	return ParseData(f)
}

type Table struct {
	byCode   map[string]Airport
	metros   map[string]string
	names    map[string]string
	maxWords int
}

// NewTable indexes d. Airport names and aliases are indexed first, then
// city names and aliases (which win on conflict), then the city of any
// airport whose city is not yet known.
func NewTable(d Data) (*Table, error) {
	t := &Table{
		byCode: make(map[string]Airport, len(d.Airports)),
		metros: make(map[string]string),
		names:  make(map[string]string),
	}

	for _, a := range d.Airports {
		a.IATA = strings.ToUpper(strings.TrimSpace(a.IATA))
		if !models.IsIATACode(a.IATA) {
			return nil, fmt.Errorf("airport %q: invalid IATA code %q", a.Name, a.IATA)
		}
		t.byCode[a.IATA] = a
	}

	for _, a := range d.Airports {
		code := strings.ToUpper(strings.TrimSpace(a.IATA))
		for _, name := range airportNames(a) {
			t.add(name, code, false)
		}
	}

	for _, c := range d.Cities {
		def := strings.ToUpper(c.Default)
		if _, ok := t.byCode[def]; !ok {
			return nil, fmt.Errorf("city %q: default airport %q is not in the table", c.Name, c.Default)
		}
		t.add(c.Name, def, true)
		for _, alias := range c.Aliases {
			t.add(alias, def, true)
		}
		if c.Code != "" {
			t.metros[strings.ToUpper(c.Code)] = def
		}
	}

	for _, a := range d.Airports {
		if a.City != "" {
			t.add(a.City, strings.ToUpper(strings.TrimSpace(a.IATA)), false)
		}
	}
	return t, nil
}

func airportNames(a Airport) []string {
	names := append([]string{a.Name}, a.Aliases...)
	short := fold(a.Name)
	for _, suffix := range []string{" airport", " international", " intl"} {
		short = strings.TrimSuffix(short, suffix)
	}
	if short != "" {
		names = append(names, short)
	}
	return names
}

func (t *Table) add(name, code string, override bool) {
	key := fold(name)
	if key == "" {
		return
	}
	if _, ok := t.names[key]; ok && !override {
		return
	}
	t.names[key] = code
	if n := len(strings.Fields(key)); n > t.maxWords {
		t.maxWords = n
	}
}

func (t *Table) Len() int {
	return len(t.byCode)
}

func (t *Table) Lookup(code string) (Airport, bool) {
	a, ok := t.byCode[strings.ToUpper(code)]
	return a, ok
}

// Resolve maps a single location phrase to an IATA code. Any three-letter
// phrase is taken as a code: a known airport or unknown code passes through
// uppercased, a metro code becomes its default airport.
func (t *Table) Resolve(phrase string) (string, error) {
	trimmed := strings.TrimSpace(phrase)
	if isCodeShape(trimmed) {
		return t.code(strings.ToUpper(trimmed)), nil
	}

	key := fold(trimmed)
	key = strings.TrimPrefix(key, "the ")
	for {
		if code, ok := t.names[key]; ok {
			return code, nil
		}
		stripped := key
		for _, suffix := range []string{" airport", " international", " intl", " city", " area"} {
			stripped = strings.TrimSuffix(stripped, suffix)
		}
		if stripped == key {
			break
		}
		key = stripped
	}
	return "", &models.UnknownLocationError{Location: trimmed}
}

func (t *Table) code(code string) string {
	if _, ok := t.byCode[code]; ok {
		return code
	}
	if def, ok := t.metros[code]; ok {
		return def
	}
	return code
}

func (t *Table) known(code string) bool {
	if _, ok := t.byCode[code]; ok {
		return true
	}
	_, ok := t.metros[code]
	return ok
}

func isCodeShape(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

var accents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s, strips accents and apostrophes, and collapses every
// other non-alphanumeric run into a single space.
func fold(s string) string {
	if plain, _, err := transform.String(accents, s); err == nil {
		s = plain
	}
	s = strings.ReplaceAll(strings.ToLower(s), "ı", "i")

	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
