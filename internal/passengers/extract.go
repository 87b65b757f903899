package passengers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dharmasatrya/tripquery/internal/lexer"
)

type category int

const (
	none category = iota
	adult
	senior
	student
	child
	infant
	generic   // people, passengers, travellers: a head count, not a kind
	companion // wife, friend: adults travelling with the speaker
)

var nouns = map[string]category{
	"adult": adult, "adults": adult, "grown": adult, "grownup": adult, "grownups": adult,
	"senior": senior, "seniors": senior, "elderly": senior, "pensioner": senior, "pensioners": senior,
	"student": student, "students": student,
	"child": child, "children": child, "kid": child, "kids": child, "son": child, "sons": child,
	"daughter": child, "daughters": child, "boy": child, "boys": child, "girl": child, "girls": child,
	"toddler": child, "toddlers": child, "teen": child, "teens": child, "teenager": child,
	"teenagers": child, "minor": child, "minors": child,
	"infant": infant, "infants": infant, "baby": infant, "babies": infant, "newborn": infant, "newborns": infant,
	"person": generic, "persons": generic, "people": generic, "passenger": generic, "passengers": generic,
	"traveler": generic, "travelers": generic, "traveller": generic, "travellers": generic, "pax": generic,
	"wife": companion, "husband": companion, "partner": companion, "spouse": companion,
	"girlfriend": companion, "boyfriend": companion, "fiance": companion, "fiancee": companion,
	"friend": companion, "friends": companion, "mom": companion, "mother": companion,
	"dad": companion, "father": companion, "parents": companion, "brother": companion,
	"brothers": companion, "sister": companion, "sisters": companion, "colleague": companion,
	"colleagues": companion, "coworker": companion, "coworkers": companion, "cousin": companion,
	"cousins": companion, "grandma": companion, "grandpa": companion, "grandmother": companion,
	"grandfather": companion, "grandparents": companion, "boss": companion, "roommate": companion,
}

var plurals = map[string]bool{
	"adults": true, "grownups": true, "seniors": true, "pensioners": true, "students": true,
	"children": true, "kids": true, "sons": true, "daughters": true, "boys": true, "girls": true,
	"toddlers": true, "teens": true, "teenagers": true, "minors": true,
	"infants": true, "babies": true, "newborns": true, "people": true, "persons": true,
	"passengers": true, "travelers": true, "travellers": true, "friends": true, "parents": true,
	"brothers": true, "sisters": true, "colleagues": true, "coworkers": true, "cousins": true,
	"grandparents": true,
}

// fillers may sit between a quantity and its noun: "2 more adults",
// "one lap infant", "my two little girls".
var fillers = map[string]bool{
	"more": true, "extra": true, "additional": true, "other": true, "little": true, "young": true,
	"small": true, "older": true, "younger": true, "of": true, "my": true, "our": true, "the": true,
	"lap": true, "held": true, "ups": true, "up": true, "citizen": true, "citizens": true,
	"twin": true, "twins": true,
}

var possessives = map[string]bool{"my": true, "our": true, "his": true, "her": true, "their": true}

// ageMarkers introduce ages after a noun: "kids aged 5 and 7".
var ageMarkers = map[string]bool{
	"who": true, "is": true, "are": true, "aged": true, "age": true, "ages": true,
	"both": true, "respectively": true, "turning": true,
}

var yearUnits = map[string]bool{"year": true, "years": true, "yr": true, "yrs": true, "y/o": true, "yo": true}

var monthUnits = map[string]bool{"month": true, "months": true, "mo": true, "mos": true}

var speakerPattern = regexp.MustCompile(`\b(?:i|we)(?:'m|'ll|'re|\s+am|\s+will|\s+are|\s+will\s+be|'ll\s+be)?\s+(?:be\s+)?(?:travel+ing|flying|going|heading)\b|\b(?:me|myself)\s+and\b|\band\s+(?:i|me|myself)\b|\b(?:with|and)\s+(?:my|our)\s+`)

type group struct {
	cat    category
	count  int // -1 when the text gives no number
	ages   []int
	pos    int
	lap    bool
	hasAge bool
}

type parse struct {
	groups  []group
	speaker bool
}

func quantity(word string) (int, bool) {
	switch word {
	case "a", "an":
		return 1, true
	}
	return lexer.Number(word)
}

func isWord(toks []lexer.Token, i int) bool {
	return i >= 0 && i < len(toks) && !toks[i].Punct
}

func skipFillers(toks []lexer.Token, i int) int {
	for isWord(toks, i) && fillers[toks[i].Lower] {
		i++
	}
	return i
}

func nounAt(toks []lexer.Token, i int) category {
	if !isWord(toks, i) {
		return none
	}
	return nouns[toks[i].Lower]
}

// ageUnit reads "year(s) old", "month(s) old" or "y/o" at i. It returns
// the number of months per unit and the index after the phrase.
func ageUnit(toks []lexer.Token, i int, requireOld bool) (int, int, bool) {
	if !isWord(toks, i) {
		return 0, i, false
	}
	w := toks[i].Lower
	months := 0
	switch {
	case yearUnits[w]:
		months = 12
	case monthUnits[w]:
		months = 1
	default:
		return 0, i, false
	}
	j := i + 1
	old := w == "y/o" || w == "yo"
	if isWord(toks, j) && (toks[j].Lower == "old" || toks[j].Lower == "olds") {
		old = true
		j++
	}
	if requireOld && !old {
		return 0, i, false
	}
	return months, j, true
}

// trailingAges reads ages that follow a noun: "who is 5 years old",
// "aged 5 and 7", "ages 4, 6 and 9". A number followed by a noun starts a
// new quantity and is never an age. With bare set, plain numbers count as
// ages too ("2 kids (5 and 7)") when they form a list or end the clause.
func trailingAges(toks []lexer.Token, i int, bare bool) ([]int, int) {
	var ages []int
	marker := false
	start := i
	for i < len(toks) {
		t := toks[i]
		if t.Punct {
			if t.Lower == "," && (marker || len(ages) > 0 || i == start && leadsAges(toks, i+1, bare)) {
				i++
				continue
			}
			break
		}
		if ageMarkers[t.Lower] {
			marker = true
			i++
			continue
		}
		if t.Lower == "and" && len(ages) > 0 {
			i++
			continue
		}
		n, ok := lexer.Number(t.Lower)
		if !ok {
			break
		}
		if nounAt(toks, skipFillers(toks, i+1)) != none {
			break
		}
		if months, next, ok := ageUnit(toks, i+1, false); ok {
			ages = append(ages, n*months)
			i = next
			continue
		}
		if !marker && !(bare && n <= maxBareAge && (len(ages) > 0 || endsList(toks, i+1))) {
			break
		}
		ages = append(ages, n*12)
		i++
	}
	return ages, i
}

const maxBareAge = 17

// leadsAges reports whether the word at i opens an age list, so a comma
// before it still belongs to the noun: "2 children, ages 4 and 6".
func leadsAges(toks []lexer.Token, i int, bare bool) bool {
	if !isWord(toks, i) {
		return false
	}
	if ageMarkers[toks[i].Lower] {
		return true
	}
	_, ok := lexer.Number(toks[i].Lower)
	return bare && ok
}

// endsList reports whether a bare number is followed by the end of the
// text, punctuation or "and".
func endsList(toks []lexer.Token, i int) bool {
	return i >= len(toks) || toks[i].Punct || toks[i].Lower == "and"
}

func parseText(text string) parse {
	toks := lexer.Tokenize(text)
	var p parse

	for i := 0; i < len(toks); {
		t := toks[i]
		if t.Punct {
			i++
			continue
		}

		if n, ok := quantity(t.Lower); ok {
			// "a 5 year old", "two 7-year-olds"
			if m, ok := lexer.Number(toksLower(toks, i+1)); ok {
				if months, next, ok := ageUnit(toks, i+2, true); ok {
					g := group{cat: none, count: n, pos: i + 1, hasAge: true}
					for k := 0; k < n; k++ {
						g.ages = append(g.ages, m*months)
					}
					if j := skipFillers(toks, next); nounAt(toks, j) != none {
						g.cat = nounAt(toks, j)
						g.pos = j
						next = j + 1
					}
					p.groups = append(p.groups, g)
					i = next
					continue
				}
			}
			// "5 year old son", "a 3 year old"
			if months, next, ok := ageUnit(toks, i+1, true); ok {
				g := group{cat: none, count: 1, ages: []int{n * months}, pos: i, hasAge: true}
				if j := skipFillers(toks, next); nounAt(toks, j) != none {
					g.cat = nounAt(toks, j)
					g.pos = j
					next = j + 1
				}
				p.groups = append(p.groups, g)
				i = next
				continue
			}
			// "2 adults", "1 child who is 5 years old"
			if j := skipFillers(toks, i+1); nounAt(toks, j) != none {
				g := group{cat: nounAt(toks, j), count: n, pos: j}
				g.ages, i = trailingAges(toks, j+1, g.cat == child)
				g.hasAge = len(g.ages) > 0
				p.groups = append(p.groups, g)
				continue
			}
			i++
			continue
		}

		if cat := nounAt(toks, i); cat != none {
			g := group{cat: cat, count: -1, pos: i}
			if !plurals[t.Lower] && (cat == child || cat == infant || possessives[toksLower(toks, i-1)]) {
				g.count = 1
			}
			g.ages, i = trailingAges(toks, i+1, cat == child)
			g.hasAge = len(g.ages) > 0
			if g.count == -1 && !g.hasAge && cat != child && cat != infant {
				continue
			}
			p.groups = append(p.groups, g)
			continue
		}
		i++
	}

	for k := range p.groups {
		p.groups[k].lap = mentionsLap(toks, p.groups[k].pos)
	}

	lower := strings.ReplaceAll(strings.ToLower(text), "’", "'")
	p.speaker = speakerPattern.MatchString(lower)
	return p
}

func toksLower(toks []lexer.Token, i int) string {
	if !isWord(toks, i) {
		return ""
	}
	return toks[i].Lower
}

// mentionsLap looks around an infant mention for "lap" ("lap infant",
// "a baby on my lap") unless a seat is asked for explicitly.
func mentionsLap(toks []lexer.Token, pos int) bool {
	from, to := pos-3, pos+6
	if from < 0 {
		from = 0
	}
	if to > len(toks) {
		to = len(toks)
	}
	lap := false
	for i := from; i < to; i++ {
		if i > pos && toks[i].Punct && toks[i].Lower != "," {
			break
		}
		switch toks[i].Lower {
		case "lap":
			lap = true
		case "seat", "seated", "own":
			if i > pos {
				return false
			}
		}
	}
	return lap
}

func describeAge(months int) string {
	if months < 24 {
		return fmt.Sprintf("%d months", months)
	}
	return fmt.Sprintf("%d years", months/12)
}
