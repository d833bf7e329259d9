package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// DataStore is the slice of the ledger store the constructor needs. Both
// operations are read-only; the constructor never writes.
type DataStore interface {
	Find(ctx context.Context, collection string, filter, projection bson.M, sort bson.D, limit int64) ([]bson.M, error)
	Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error)
}

// ErrWriteNotSupported is returned for insert intents. Writes go through
// the insert handlers, never through query construction.
var ErrWriteNotSupported = errors.New("query constructor only supports read operations")

// Result is an executed query: the rendered answer plus the structured
// rows behind it and, when the list was cut, a continuation for the
// detail follow-up.
type Result struct {
	Answer       string
	Rows         []models.ResultRow
	Total        int64
	Count        int
	Continuation *models.QueryContinuation
}

// Constructor turns a QueryDescriptor into a scoped mongo query, runs
// it, and renders a summary.
type Constructor struct {
	store DataStore
}

func NewConstructor(store DataStore) *Constructor {
	return &Constructor{store: store}
}

const (
	// SummaryRows is how many rows a list answer shows inline before the
	// overflow is parked as a continuation.
	SummaryRows = 5

	detailRows = 15 // rows parked for the detail follow-up
	findLimit  = 50
)

// CollectionFor maps a query intent to its backing collection. Savings
// history lives in incomes (savings are income entries with the savings
// category); savings balances and every other investment flavor live in
// investments.
func CollectionFor(intent string) string {
	switch intent {
	case models.IntentIncomeQuery, models.IntentSavingsIncomeQuery:
		return "incomes"
	case models.IntentLoanQuery, models.IntentLoanPaidQuery,
		models.IntentLoanRemainingQuery, models.IntentLoanOverdueQuery:
		return "loans"
	case models.IntentSavingsQuery, models.IntentInvestmentQuery,
		models.IntentGoldQuery, models.IntentRealEstateQuery, models.IntentStockQuery:
		return "investments"
	}
	return "expenses"
}

// EntityLabel is the Vietnamese noun phrase for one item of a collection.
func EntityLabel(collection string) string {
	switch collection {
	case "incomes":
		return "khoản thu"
	case "loans":
		return "khoản vay"
	case "investments":
		return "khoản đầu tư"
	}
	return "khoản chi"
}

func projectionFor(collection string) bson.M {
	projection := bson.M{
		"amount":      1,
		"category":    1,
		"description": 1,
		"date":        1,
	}
	switch collection {
	case "loans":
		for _, field := range []string{"lender", "status", "payments", "interestRate", "ratePeriod", "startDate", "dueDate"} {
			projection[field] = 1
		}
	case "investments":
		for _, field := range []string{"type", "name", "currentValue", "bankName"} {
			projection[field] = 1
		}
	}
	return projection
}

// Execute scopes the descriptor's predicate to the owner, runs it
// against the mapped collection, and renders the outcome. Insert intents
// are rejected outright.
func (c *Constructor) Execute(ctx context.Context, userID string, descriptor *models.QueryDescriptor) (*Result, error) {
	if strings.HasPrefix(descriptor.Intent, "insert_") {
		return nil, ErrWriteNotSupported
	}

	collection := CollectionFor(descriptor.Intent)

	filter := bson.M{"userId": userID}
	for key, value := range descriptor.Filter {
		filter[key] = value
	}

	aggregation := descriptor.Aggregation
	if aggregation != nil && descriptor.Amount != nil && descriptor.Amount.Level == 1 &&
		(aggregation.Operator == "max" || aggregation.Operator == "min") {
		// extremum phrases trigger both facets; showing the actual row
		// beats reporting the bare value
		aggregation = nil
	}

	if aggregation != nil {
		pipeline := append([]bson.M{{"$match": filter}}, aggregation.Pipeline...)
		docs, err := c.store.Aggregate(ctx, collection, pipeline)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", collection, err)
		}
		return c.renderAggregation(collection, aggregation.Operator, docs), nil
	}

	sort := bson.D{{Key: "date", Value: -1}}
	limit := int64(findLimit)
	if descriptor.SortBy != nil {
		sort = descriptor.SortBy.Sort
		if descriptor.SortBy.Singular &&
			(descriptor.SortBy.Type == "recent" || descriptor.SortBy.Type == "oldest") {
			// "khoản chi gần nhất" asks for the one latest entry
			limit = 1
		}
	}
	if descriptor.Amount != nil && descriptor.Amount.Level == 1 {
		// extremum cue without a number: resolve by sort + limit 1
		direction := -1
		if descriptor.Amount.Operator == "min" {
			direction = 1
		}
		sort = bson.D{{Key: "amount", Value: direction}}
		limit = 1
	}

	docs, err := c.store.Find(ctx, collection, filter, projectionFor(collection), sort, limit)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	return c.renderList(collection, descriptor, docs), nil
}

// renderList renders the total plus the first rows; the overflow becomes
// a continuation the caller parks in the conversation context.
func (c *Constructor) renderList(collection string, descriptor *models.QueryDescriptor, docs []bson.M) *Result {
	label := EntityLabel(collection)

	if len(docs) == 0 {
		return &Result{Answer: fmt.Sprintf("Mình không tìm thấy %s nào khớp với yêu cầu của bạn.", label)}
	}

	rows := make([]models.ResultRow, 0, len(docs))
	var total int64
	for _, doc := range docs {
		row := toRow(collection, doc)
		total += row.Amount
		rows = append(rows, row)
	}

	title := fmt.Sprintf("%d %s", len(rows), label)
	if descriptor.Time != nil && descriptor.Time.Period != "" {
		title += " " + periodLabel(descriptor.Time.Period)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Bạn có %s, tổng cộng %s:\n", title, nlp.FormatVND(total))
	shown := len(rows)
	if shown > SummaryRows {
		shown = SummaryRows
	}
	for i := 0; i < shown; i++ {
		b.WriteString(FormatRow(i+1, collection, rows[i]))
		b.WriteString("\n")
	}

	result := &Result{
		Answer: strings.TrimRight(b.String(), "\n"),
		Rows:   rows,
		Total:  total,
		Count:  len(rows),
	}

	if len(rows) > SummaryRows {
		rest := rows[SummaryRows:]
		if len(rest) > detailRows {
			rest = rest[:detailRows]
		}
		result.Answer += fmt.Sprintf("\n…và %d %s khác. Nhắn \"xem chi tiết\" để xem tiếp nhé.", len(rows)-SummaryRows, label)
		result.Continuation = &models.QueryContinuation{
			Entity:    collection,
			Title:     title,
			Rows:      rest,
			Total:     total,
			Count:     len(rows),
			CreatedAt: time.Now(),
		}
	}

	return result
}

// FormatRow renders one result row as a numbered list line, shaped by the
// collection it came from.
func FormatRow(index int, collection string, row models.ResultRow) string {
	date := row.Date.Format("02/01/2006")
	switch collection {
	case "loans":
		return fmt.Sprintf("%d. Vay %s của %s: %s, còn nợ %s (%s)",
			index, date, row.Lender, nlp.FormatVND(row.Amount), nlp.FormatVND(row.Remaining), loanStatusLabel(row.Status))
	case "investments":
		return fmt.Sprintf("%d. %s (%s): %s", index, row.Name, investmentLabel(row.Kind), nlp.FormatVND(row.Amount))
	}
	description := row.Description
	if description == "" {
		description = row.Category
	}
	return fmt.Sprintf("%d. %s: %s (%s)", index, description, nlp.FormatVND(row.Amount), date)
}

func loanStatusLabel(status string) string {
	switch status {
	case models.LoanStatusPaid:
		return "đã trả"
	case models.LoanStatusOverdue:
		return "quá hạn"
	}
	return "đang vay"
}

func investmentLabel(kind string) string {
	switch kind {
	case models.InvestmentStock:
		return "cổ phiếu"
	case models.InvestmentGold:
		return "vàng"
	case models.InvestmentRealEstate:
		return "bất động sản"
	case models.InvestmentSavings:
		return "tiết kiệm"
	}
	return "đầu tư"
}

func periodLabel(period string) string {
	switch period {
	case "today":
		return "hôm nay"
	case "yesterday":
		return "hôm qua"
	case "this_week":
		return "tuần này"
	case "last_week":
		return "tuần trước"
	case "this_month":
		return "tháng này"
	case "last_month":
		return "tháng trước"
	case "this_year":
		return "năm nay"
	case "last_year":
		return "năm ngoái"
	}
	return period
}

// renderAggregation renders the aggregate document(s) for each operator
// shape.
func (c *Constructor) renderAggregation(collection, operator string, docs []bson.M) *Result {
	label := EntityLabel(collection)

	if len(docs) == 0 {
		return &Result{Answer: fmt.Sprintf("Mình không tìm thấy %s nào để tính.", label)}
	}

	switch operator {
	case "sum":
		total := asInt64(docs[0]["total"])
		count := asInt64(docs[0]["count"])
		return &Result{
			Answer: fmt.Sprintf("Tổng cộng %s từ %d %s.", nlp.FormatVND(total), count, label),
			Total:  total,
			Count:  int(count),
		}
	case "average":
		average := asInt64(docs[0]["average"])
		count := asInt64(docs[0]["count"])
		return &Result{
			Answer: fmt.Sprintf("Trung bình mỗi %s là %s (trên %d khoản).", label, nlp.FormatVND(average), count),
			Total:  average,
			Count:  int(count),
		}
	case "count":
		count := asInt64(docs[0]["count"])
		return &Result{
			Answer: fmt.Sprintf("Bạn có %d %s.", count, label),
			Count:  int(count),
		}
	case "max":
		value := asInt64(docs[0]["value"])
		return &Result{
			Answer: fmt.Sprintf("%s lớn nhất của bạn là %s.", capitalize(label), nlp.FormatVND(value)),
			Total:  value,
		}
	case "min":
		value := asInt64(docs[0]["value"])
		return &Result{
			Answer: fmt.Sprintf("%s nhỏ nhất của bạn là %s.", capitalize(label), nlp.FormatVND(value)),
			Total:  value,
		}
	case "group_by_month":
		var b strings.Builder
		b.WriteString("Theo từng tháng:\n")
		var grand int64
		for _, doc := range docs {
			id, _ := doc["_id"].(bson.M)
			total := asInt64(doc["total"])
			grand += total
			fmt.Fprintf(&b, "- Tháng %d/%d: %s (%d khoản)\n",
				asInt64(id["month"]), asInt64(id["year"]), nlp.FormatVND(total), asInt64(doc["count"]))
		}
		fmt.Fprintf(&b, "Tổng cộng: %s", nlp.FormatVND(grand))
		return &Result{Answer: b.String(), Total: grand, Count: len(docs)}
	case "group_by_category":
		var b strings.Builder
		b.WriteString("Theo từng nhóm:\n")
		var grand int64
		for _, doc := range docs {
			name, _ := doc["_id"].(string)
			if name == "" {
				name = "Khác"
			}
			total := asInt64(doc["total"])
			grand += total
			fmt.Fprintf(&b, "- %s: %s (%d khoản)\n", name, nlp.FormatVND(total), asInt64(doc["count"]))
		}
		fmt.Fprintf(&b, "Tổng cộng: %s", nlp.FormatVND(grand))
		return &Result{Answer: b.String(), Total: grand, Count: len(docs)}
	}

	return &Result{Answer: fmt.Sprintf("Mình chưa hỗ trợ phép tổng hợp %q.", operator)}
}

// toRow decodes one raw document into a ResultRow, tolerating the
// numeric types the driver may hand back.
func toRow(collection string, doc bson.M) models.ResultRow {
	row := models.ResultRow{
		Description: asString(doc["description"]),
		Category:    asString(doc["category"]),
		Amount:      asInt64(doc["amount"]),
		Date:        asTime(doc["date"]),
	}

	switch collection {
	case "loans":
		row.Lender = asString(doc["lender"])
		row.Status = asString(doc["status"])
		row.Remaining = row.Amount
		if payments, ok := doc["payments"].(primitive.A); ok {
			for _, p := range payments {
				if payment, ok := p.(bson.M); ok {
					row.Remaining -= asInt64(payment["amount"])
				}
			}
			if row.Remaining < 0 {
				row.Remaining = 0
			}
		}
	case "investments":
		row.Name = asString(doc["name"])
		row.Kind = asString(doc["type"])
		if row.Name == "" {
			row.Name = row.Description
		}
	}

	return row
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	}
	return time.Time{}
}
