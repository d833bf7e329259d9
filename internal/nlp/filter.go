package nlp

import "regexp"

// AdvancedFilter is the result of parsing the single-shot pattern
// "{dataType} {operator} [{amount}]", e.g. "khoản vay dưới 500k" or
// "chi tiêu cao nhất". It is independent of the funnel analyzer and feeds
// a simple max/min/greater/less filter over an in-memory slice.
type AdvancedFilter struct {
	IsValid  bool
	DataType string // expense | income | loan
	Operator string // max | min | greater | less
	Amount   int64  // only meaningful for greater/less
}

var afterOperatorAmount = regexp.MustCompile(
	`(?:tren|duoi|lon hon|nho hon|cao hon|thap hon|nhieu hon|it hon|above|below|over|under|greater than|less than|more than)\s+(.+)`)

// ParseAdvancedFilter resolves the data type via synonym lists and the
// operator via extremum/comparison cue phrases. IsValid is true only when
// both resolved; for greater/less the trailing amount must also parse.
func ParseAdvancedFilter(message string) AdvancedFilter {
	f := AdvancedFilter{}

	for _, dataType := range []string{"loan", "income", "expense"} {
		if _, ok := ContainsAny(message, DataTypeSynonyms[dataType]); ok {
			f.DataType = dataType
			break
		}
	}

	for _, op := range []string{"max", "min", "greater", "less"} {
		if _, ok := ContainsAny(message, ComparisonOperators[op]); ok {
			f.Operator = op
			break
		}
	}

	if f.Operator == "greater" || f.Operator == "less" {
		f.Amount = comparisonAmount(message)
		if f.Amount <= 0 {
			f.Operator = ""
		}
	}

	f.IsValid = f.DataType != "" && f.Operator != ""
	return f
}

// comparisonAmount extracts the amount that follows the comparison cue so
// that a leading count ("2 khoản vay dưới 500k") is not mistaken for it.
func comparisonAmount(message string) int64 {
	folded := Fold(message)
	if m := afterOperatorAmount.FindStringSubmatch(folded); m != nil {
		if amount := ParseAmount(m[1]); amount > 0 {
			return amount
		}
	}
	return ParseAmount(message)
}

// MatchesAdvancedFilter reports whether a message resolves to a valid
// advanced filter, for use as a dispatch predicate.
func MatchesAdvancedFilter(message string) bool {
	return ParseAdvancedFilter(message).IsValid
}
