package nlp

import "time"

// TimeRange is a concrete half-open window resolved from a relative period
// phrase, plus a human-readable label for rendering.
type TimeRange struct {
	Start    time.Time
	End      time.Time
	Label    string
	DataType string // income | expense | loan | all
}

// detail-time-query periods. Deliberately a smaller set than TimePeriods:
// this parser serves the dispatcher's dedicated time-query branch.
var timeRangePeriods = []struct {
	key      string
	label    string
	triggers []string
}{
	{"today", "hôm nay", []string{"hôm nay", "trong ngày", "today"}},
	{"this_week", "tuần này", []string{"tuần này", "trong tuần", "this week"}},
	{"last_month", "tháng trước", []string{"tháng trước", "tháng rồi", "last month"}},
	{"this_month", "tháng này", []string{"tháng này", "trong tháng", "this month"}},
}

// ParseTimeRange resolves a relative period phrase into concrete start/end
// instants. Returns nil when no period phrase is present.
func ParseTimeRange(message string, now time.Time) *TimeRange {
	for _, period := range timeRangePeriods {
		if _, ok := ContainsAny(message, period.triggers); ok {
			start, end := PeriodBounds(period.key, now)
			return &TimeRange{
				Start:    start,
				End:      end,
				Label:    period.label,
				DataType: guessDataType(message),
			}
		}
	}
	return nil
}

// PeriodBounds computes the [start, end) window of a named period using
// current-date arithmetic. Weeks start on Monday.
func PeriodBounds(period string, now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case "today":
		return day, day.AddDate(0, 0, 1)
	case "yesterday":
		return day.AddDate(0, 0, -1), day
	case "this_week":
		start := day.AddDate(0, 0, -mondayOffset(day))
		return start, start.AddDate(0, 0, 7)
	case "last_week":
		start := day.AddDate(0, 0, -mondayOffset(day)-7)
		return start, start.AddDate(0, 0, 7)
	case "this_month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	case "last_month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return start, start.AddDate(0, 1, 0)
	case "this_year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0)
	case "last_year":
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0)
	}
	return day, day.AddDate(0, 0, 1)
}

func mondayOffset(day time.Time) int {
	weekday := int(day.Weekday())
	if weekday == 0 {
		return 6 // Sunday
	}
	return weekday - 1
}

func guessDataType(message string) string {
	for _, dataType := range []string{"loan", "income", "expense"} {
		if _, ok := ContainsAny(message, DataTypeSynonyms[dataType]); ok {
			return dataType
		}
	}
	return "all"
}

// MatchesTimeQuery is the dispatch predicate for the time-query branch:
// a period phrase plus a data-type or viewing cue, and no monetary amount
// (an amount means the message is more likely an insertion).
func MatchesTimeQuery(message string) bool {
	if ParseTimeRange(message, time.Now()) == nil {
		return false
	}
	if HasAmount(message) {
		return false
	}
	if guessDataType(message) != "all" {
		return true
	}
	_, ok := ContainsAny(message, []string{"xem", "tổng", "bao nhiêu", "tình hình", "tổng quan"})
	return ok
}
