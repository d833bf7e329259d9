package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// TimeFilter is the funnel analyzer's time facet. Level 1 is a named
// period; level 2 is an explicit date range, only attempted when level 1
// missed. At most one level is set.
type TimeFilter struct {
	Level   int       `json:"level"` // 1 = named period, 2 = explicit range
	Period  string    `json:"period,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Filter  bson.M    `json:"-"`
}

// AmountFilter is the amount facet. Level 1 is a cue word with no literal
// number (numeric resolution deferred downstream); level 2 an explicit
// comparison; level 3 an explicit range.
type AmountFilter struct {
	Level    int    `json:"level"`
	Operator string `json:"operator,omitempty"` // max|min|greater|less|range
	Amount   int64  `json:"amount,omitempty"`
	High     int64  `json:"high,omitempty"` // range upper bound
	Filter   bson.M `json:"-"`
}

// CategoryFilter is the funnel facet: matched main category plus optional
// sub/specific matches that degrade to a description search.
type CategoryFilter struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Specific    string   `json:"specific,omitempty"`
	SearchTerms []string `json:"search_terms,omitempty"`
	Filter      bson.M   `json:"-"`
}

// AggregationSpec names the aggregation operator and carries its pipeline
// shape (without the leading $match stages).
type AggregationSpec struct {
	Operator string   `json:"operator"`
	Pipeline []bson.M `json:"-"`
}

// SortSpec is a named sort with its mongo sort document.
type SortSpec struct {
	Type     string `json:"type"`
	Sort     bson.D `json:"-"`
	Singular bool   `json:"singular,omitempty"` // superlative phrasing names one entry
}

// QueryDescriptor is the composed result of the five facet analyzers.
// Every facet is independently nullable.
type QueryDescriptor struct {
	Intent      string           `json:"intent"`
	Time        *TimeFilter      `json:"time,omitempty"`
	Amount      *AmountFilter    `json:"amount,omitempty"`
	Category    *CategoryFilter  `json:"category,omitempty"`
	Aggregation *AggregationSpec `json:"aggregation,omitempty"`
	SortBy      *SortSpec        `json:"sort,omitempty"`
	Filter      bson.M           `json:"-"` // merged facet predicates
}

// HasFilters reports whether any facet produced a predicate.
func (q *QueryDescriptor) HasFilters() bool {
	return q.Time != nil || q.Amount != nil || q.Category != nil ||
		q.Aggregation != nil || q.SortBy != nil
}

// ResultRow is one rendered query hit, decoded from whichever collection
// the query ran against. Entity-specific fields stay zero for the
// others.
type ResultRow struct {
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date"`

	Lender    string `json:"lender,omitempty"`    // loans
	Status    string `json:"status,omitempty"`    // loans
	Remaining int64  `json:"remaining,omitempty"` // loans
	Interest  int64  `json:"interest,omitempty"`  // loans
	Name      string `json:"name,omitempty"`      // investments
	Kind      string `json:"kind,omitempty"`      // investments
}

// QueryContinuation is the overflow of a summarized result list, parked
// in the conversation context so a follow-up "xem chi tiết" can page
// into it. It is consumed at most once.
type QueryContinuation struct {
	Entity    string      `json:"entity"`
	Title     string      `json:"title"`
	Rows      []ResultRow `json:"rows"` // rows beyond the summary cut
	Total     int64       `json:"total"`
	Count     int         `json:"count"` // full result count
	CreatedAt time.Time   `json:"created_at"`
}
