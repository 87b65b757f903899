// Package lexer splits free-text trip descriptions into words.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
)

type Token struct {
	Text  string // as written
	Lower string
	Punct bool // a clause break such as "," or "."
}

// Tokenize splits s into words and clause-breaking punctuation. Hyphens,
// quotes and brackets separate words and are dropped; apostrophes and
// slashes stay inside a word ("i'm", "6/15").
func Tokenize(s string) []Token {
	var tokens []Token
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		w := b.String()
		tokens = append(tokens, Token{Text: w, Lower: strings.ToLower(w)})
		b.Reset()
	}

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			if b.Len() > 0 {
				b.WriteRune('\'')
			}
		case r == '/':
			b.WriteRune(r)
		case r == ',' || r == '.' || r == ';' || r == ':' || r == '!' || r == '?':
			flush()
			tokens = append(tokens, Token{Text: string(r), Lower: string(r), Punct: true})
		default:
			flush()
		}
	}
	flush()
	return tokens
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"single": 1, "couple": 2, "pair": 2,
}

// Number parses a digit string or an English number word.
func Number(word string) (int, bool) {
	word = strings.ToLower(word)
	if n, ok := numberWords[word]; ok {
		return n, true
	}
	if word == "" || len(word) > 3 {
		return 0, false
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NumberPattern is a regexp fragment matching what Number accepts, plus
// the articles a/an.
const NumberPattern = `(?:\d{1,3}|a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|couple|pair)`
