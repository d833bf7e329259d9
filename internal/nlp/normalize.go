package nlp

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases a message and collapses runs of whitespace.
// All detectors operate on the normalized form.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// Fold normalizes and strips Vietnamese diacritics so that keyword
// matching tolerates messages typed with or without accents.
// "tiết kiệm" and "tiet kiem" fold to the same string.
func Fold(s string) string {
	s = Normalize(s)
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	// NFD does not decompose the stroke on đ/Đ
	folded = strings.ReplaceAll(folded, "đ", "d")
	folded = strings.ReplaceAll(folded, "Đ", "d")
	return folded
}

// ContainsAny reports whether the folded message contains any of the
// given terms on word boundaries (terms are folded before comparison).
// Boundary matching matters: the folded form of "nợ" is "no", which would
// otherwise match inside "nào". Returns the first matching term.
func ContainsAny(message string, terms []string) (string, bool) {
	folded := Fold(message)
	for _, term := range terms {
		if containsTerm(folded, term) {
			return term, true
		}
	}
	return "", false
}

// ContainsAll reports whether the folded message contains every term.
func ContainsAll(message string, terms []string) bool {
	folded := Fold(message)
	for _, term := range terms {
		if !containsTerm(folded, term) {
			return false
		}
	}
	return true
}

var termRegexCache sync.Map // folded term → *regexp.Regexp

func containsTerm(foldedMessage, term string) bool {
	foldedTerm := Fold(term)
	if foldedTerm == "" {
		return false
	}
	if cached, ok := termRegexCache.Load(foldedTerm); ok {
		return cached.(*regexp.Regexp).MatchString(foldedMessage)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(foldedTerm) + `\b`)
	termRegexCache.Store(foldedTerm, re)
	return re.MatchString(foldedMessage)
}
