package corpus

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	controlChars = strings.NewReplacer(
		"\x02", "", "\x03", "", "\x05", "", "\x07", "", "ü", "", "\x7f", "",
	)
	punctuation = regexp.MustCompile(`[()<>{}\[\]!$=@&*+,\-./:;?"]+`)
)

// Clean strips the markup noise found in the Reuters archive so the word
// segmenter sees plain words. Acronyms collapse ("U.S." becomes "US"),
// contractions lose their apostrophe, and digit runs are split from
// adjacent letters.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\n", "\n ")
	text = controlChars.Replace(text)
	text = collapseAcronyms(text)
	text = punctuation.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "^M", " ")
	text = dropApostrophes(text)
	return spaceDigits(text)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// collapseAcronyms drops the period after a single letter that does not
// follow another word character.
func collapseAcronyms(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range rs {
		if r == '.' && i > 0 && isASCIILetter(rs[i-1]) && (i == 1 || !isWord(rs[i-2])) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dropApostrophes removes apostrophes between two letters and turns every
// other apostrophe into a space.
func dropApostrophes(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range rs {
		if r != '\'' {
			b.WriteRune(r)
			continue
		}
		if i > 0 && i+1 < len(rs) && isASCIILetter(rs[i-1]) && isASCIILetter(rs[i+1]) {
			continue
		}
		b.WriteByte(' ')
	}
	return b.String()
}

// spaceDigits inserts a space at every boundary between a digit and a
// non-space non-digit.
func spaceDigits(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)
	for i, r := range rs {
		if i > 0 {
			prev := rs[i-1]
			switch {
			case isDigit(r) && !isDigit(prev) && !unicode.IsSpace(prev):
				b.WriteByte(' ')
			case !isDigit(r) && !unicode.IsSpace(r) && isDigit(prev):
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
