package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// dot-grouped VND literals: 500.000 / 1.250.000
	groupedAmountRegex = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+`)
	// number plus optional unit, glued or separated: 500k / 4tr / 2.5 triệu.
	// Units are matched on folded text.
	unitAmountRegex = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(trieu|tr|m|nghin|ngan|k)?\b`)
)

// unit multipliers for Vietnamese shorthand
const (
	thousand = 1_000
	million  = 1_000_000
)

// ParseAmount extracts a monetary amount from free text and resolves
// Vietnamese unit shorthand: "500k" → 500000, "4tr" → 4000000,
// "2.5 triệu" → 2500000. Returns 0 when no numeric token is present;
// callers must treat 0 as extraction failure, not as a valid amount.
func ParseAmount(text string) int64 {
	folded := Fold(text)

	// Dot-grouped literals first so "1.250.000" is not read as 1.25
	if m := groupedAmountRegex.FindString(folded); m != "" {
		plain := strings.ReplaceAll(m, ".", "")
		n, err := strconv.ParseInt(plain, 10, 64)
		if err == nil {
			return n
		}
	}

	match := unitAmountRegex.FindStringSubmatch(folded)
	if match == nil {
		return 0
	}

	numStr := strings.Replace(match[1], ",", ".", 1)
	value, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0
	}

	switch match[2] {
	case "k", "nghin", "ngan":
		value *= thousand
	case "tr", "trieu", "m":
		value *= million
	}

	if value < 0 {
		return 0
	}
	return int64(value)
}

// HasAmount reports whether the text contains a parseable monetary amount.
func HasAmount(text string) bool {
	return ParseAmount(text) > 0
}

// FormatVND renders an amount with Vietnamese thousands grouping and the
// currency suffix: 1500000 → "1.500.000 VND".
func FormatVND(n int64) string {
	return groupDigits(n) + " VND"
}

// FormatNumber renders a number with Vietnamese thousands grouping and no
// currency suffix.
func FormatNumber(n int64) string {
	return groupDigits(n)
}

func groupDigits(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
