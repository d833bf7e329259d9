package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// The funnel analyzer runs five independent facet analyzers (time,
// amount, category, aggregation, sort) over a message and composes
// whatever matched into a QueryDescriptor. Each facet is nullable;
// facets target disjoint document fields so their predicates merge
// additively.

var (
	dateRangeRegex = regexp.MustCompile(
		`tu\s+(?:ngay\s+)?(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\s+(?:den|toi)\s+(?:ngay\s+)?(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?`)
	amountCompareRegex = regexp.MustCompile(
		`(?:tren|lon hon|cao hon|nhieu hon|above|over|more than|duoi|nho hon|thap hon|it hon|below|under|less than)\s+(\d\S*(?:\s*(?:trieu|tr|m|nghin|ngan|k))?)`)
	amountRangeRegex = regexp.MustCompile(
		`tu\s+(\d\S*(?:\s*(?:trieu|tr|m|nghin|ngan|k))?)\s+(?:den|toi)\s+(\d\S*(?:\s*(?:trieu|tr|m|nghin|ngan|k))?)`)
	lessCueRegex = regexp.MustCompile(`duoi|nho hon|thap hon|it hon|below|under|less than`)
)

// AnalyzeTime resolves the time facet. Level 1 is an exact named-period
// match; level 2 (only when level 1 missed) is an explicit "từ D1 đến D2"
// date range, year defaulting to the current one.
func AnalyzeTime(message string, now time.Time) *models.TimeFilter {
	for _, period := range nlp.TimePeriodOrder {
		if _, ok := nlp.ContainsAny(message, nlp.TimePeriods[period]); ok {
			start, end := nlp.PeriodBounds(period, now)
			return &models.TimeFilter{
				Level:  1,
				Period: period,
				Start:  start,
				End:    end,
				Filter: bson.M{"date": bson.M{"$gte": start, "$lt": end}},
			}
		}
	}

	folded := nlp.Fold(message)
	if m := dateRangeRegex.FindStringSubmatch(folded); m != nil {
		start := buildDate(m[1], m[2], m[3], now)
		end := buildDate(m[4], m[5], m[6], now).AddDate(0, 0, 1) // inclusive range
		if start.Before(end) {
			return &models.TimeFilter{
				Level:  2,
				Start:  start,
				End:    end,
				Filter: bson.M{"date": bson.M{"$gte": start, "$lt": end}},
			}
		}
	}

	return nil
}

func buildDate(dayStr, monthStr, yearStr string, now time.Time) time.Time {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year := now.Year()
	if yearStr != "" {
		year, _ = strconv.Atoi(yearStr)
		if year < 100 {
			year += 2000
		}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
}

// AnalyzeAmount resolves the amount facet in three levels: extremum cue
// words with no literal number, then an explicit comparison, then an
// explicit range.
func AnalyzeAmount(message string) *models.AmountFilter {
	folded := nlp.Fold(message)

	// Level 1: max/min cue words without a number; numeric resolution is
	// deferred to the sort/limit stage downstream.
	if !nlp.HasAmount(message) {
		for _, op := range []string{"max", "min"} {
			if _, ok := nlp.ContainsAny(message, nlp.ComparisonOperators[op]); ok {
				return &models.AmountFilter{Level: 1, Operator: op}
			}
		}
	}

	// Level 2: trên/dưới N
	if m := amountCompareRegex.FindStringSubmatch(folded); m != nil {
		amount := nlp.ParseAmount(m[1])
		if amount > 0 {
			operator := "greater"
			comparator := "$gt"
			if lessCueRegex.MatchString(m[0]) {
				operator = "less"
				comparator = "$lt"
			}
			return &models.AmountFilter{
				Level:    2,
				Operator: operator,
				Amount:   amount,
				Filter:   bson.M{"amount": bson.M{comparator: amount}},
			}
		}
	}

	// Level 3: từ N1 đến N2 (skipped when the phrase is a date range)
	if !dateRangeRegex.MatchString(folded) {
		if m := amountRangeRegex.FindStringSubmatch(folded); m != nil {
			low := nlp.ParseAmount(m[1])
			high := nlp.ParseAmount(m[2])
			if low > 0 && high >= low {
				return &models.AmountFilter{
					Level:    3,
					Operator: "range",
					Amount:   low,
					High:     high,
					Filter:   bson.M{"amount": bson.M{"$gte": low, "$lte": high}},
				}
			}
		}
	}

	return nil
}

// AnalyzeCategory walks the 3-level funnel. Descent stops at the first
// level that fails to match: an item is never matched without its
// subcategory. The predicate matches the main category exactly; sub and
// specific matches degrade to a description regex since storage has no
// subcategory field.
func AnalyzeCategory(message string) *models.CategoryFilter {
	for _, category := range nlp.CategoryFunnel {
		if _, ok := nlp.ContainsAny(message, category.Triggers); !ok {
			continue
		}

		result := &models.CategoryFilter{Category: category.Category}

		for _, sub := range category.Subs {
			if _, ok := nlp.ContainsAny(message, sub.Triggers); !ok {
				continue
			}
			result.Subcategory = sub.Name
			result.SearchTerms = append(result.SearchTerms, sub.Triggers...)

			for _, item := range sub.Items {
				if _, ok := nlp.ContainsAny(message, item.Triggers); ok {
					result.Specific = item.Name
					result.SearchTerms = append(result.SearchTerms, item.Triggers...)
					break
				}
			}
			break
		}

		filter := bson.M{"category": result.Category}
		if len(result.SearchTerms) > 0 {
			quoted := make([]string, 0, len(result.SearchTerms))
			for _, term := range result.SearchTerms {
				quoted = append(quoted, regexp.QuoteMeta(term))
			}
			filter["description"] = bson.M{
				"$regex":   strings.Join(quoted, "|"),
				"$options": "i",
			}
		}
		result.Filter = filter
		return result
	}

	return nil
}

// AnalyzeAggregation maps aggregation verbs to their pipeline shape
// (without the leading $match stages, which the constructor prepends).
func AnalyzeAggregation(message string) *models.AggregationSpec {
	for _, operator := range nlp.AggregationOrder {
		if _, ok := nlp.ContainsAny(message, nlp.AggregationVerbs[operator]); !ok {
			continue
		}
		return &models.AggregationSpec{
			Operator: operator,
			Pipeline: aggregationPipeline(operator),
		}
	}
	return nil
}

func aggregationPipeline(operator string) []bson.M {
	switch operator {
	case "sum":
		return []bson.M{{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}, "count": bson.M{"$sum": 1}}}}
	case "average":
		return []bson.M{{"$group": bson.M{"_id": nil, "average": bson.M{"$avg": "$amount"}, "count": bson.M{"$sum": 1}}}}
	case "count":
		return []bson.M{{"$count": "count"}}
	case "max":
		return []bson.M{{"$group": bson.M{"_id": nil, "value": bson.M{"$max": "$amount"}}}}
	case "min":
		return []bson.M{{"$group": bson.M{"_id": nil, "value": bson.M{"$min": "$amount"}}}}
	case "group_by_month":
		return []bson.M{
			{"$group": bson.M{
				"_id":   bson.M{"year": bson.M{"$year": "$date"}, "month": bson.M{"$month": "$date"}},
				"total": bson.M{"$sum": "$amount"},
				"count": bson.M{"$sum": 1},
			}},
			{"$sort": bson.M{"_id.year": 1, "_id.month": 1}},
		}
	case "group_by_category":
		return []bson.M{
			{"$group": bson.M{"_id": "$category", "total": bson.M{"$sum": "$amount"}, "count": bson.M{"$sum": 1}}},
			{"$sort": bson.M{"total": -1}},
		}
	}
	return nil
}

// superlative phrasings ask for one specific entry, not an ordering
var singularSortTerms = map[string]bool{
	"mới nhất": true, "gần nhất": true, "cũ nhất": true, "đầu tiên": true,
	"lâu nhất": true, "latest": true, "newest": true, "oldest": true, "first": true,
}

// AnalyzeSort maps sort verbs to a sort spec.
func AnalyzeSort(message string) *models.SortSpec {
	sortSpecs := map[string]bson.D{
		"recent":      {{Key: "date", Value: -1}},
		"oldest":      {{Key: "date", Value: 1}},
		"amount_desc": {{Key: "amount", Value: -1}},
		"amount_asc":  {{Key: "amount", Value: 1}},
		"name":        {{Key: "description", Value: 1}},
	}

	for _, sortType := range []string{"amount_desc", "amount_asc", "recent", "oldest", "name"} {
		if term, ok := nlp.ContainsAny(message, nlp.SortVerbs[sortType]); ok {
			return &models.SortSpec{
				Type:     sortType,
				Sort:     sortSpecs[sortType],
				Singular: singularSortTerms[term],
			}
		}
	}
	return nil
}

// Analyze runs all five facet analyzers and merges their predicates into
// one filter document.
func Analyze(message, intent string, now time.Time) *models.QueryDescriptor {
	descriptor := &models.QueryDescriptor{
		Intent:      intent,
		Time:        AnalyzeTime(message, now),
		Amount:      AnalyzeAmount(message),
		Category:    AnalyzeCategory(message),
		Aggregation: AnalyzeAggregation(message),
		SortBy:      AnalyzeSort(message),
	}

	filter := bson.M{}
	if descriptor.Time != nil {
		mergeFilter(filter, descriptor.Time.Filter)
	}
	if descriptor.Amount != nil {
		mergeFilter(filter, descriptor.Amount.Filter)
	}
	if descriptor.Category != nil {
		mergeFilter(filter, descriptor.Category.Filter)
	}
	descriptor.Filter = filter

	return descriptor
}

// mergeFilter merges src into dst. Facets target disjoint fields, so a
// plain key copy is sufficient.
func mergeFilter(dst, src bson.M) {
	for key, value := range src {
		dst[key] = value
	}
}
