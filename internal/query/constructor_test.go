package query

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"moneytalk/internal/models"
)

type fakeStore struct {
	docs []bson.M
	err  error

	lastCollection string
	lastFilter     bson.M
	lastSort       bson.D
	lastLimit      int64
	lastPipeline   []bson.M
}

func (f *fakeStore) Find(_ context.Context, collection string, filter, _ bson.M, sort bson.D, limit int64) ([]bson.M, error) {
	f.lastCollection = collection
	f.lastFilter = filter
	f.lastSort = sort
	f.lastLimit = limit
	return f.docs, f.err
}

func (f *fakeStore) Aggregate(_ context.Context, collection string, pipeline []bson.M) ([]bson.M, error) {
	f.lastCollection = collection
	f.lastPipeline = pipeline
	return f.docs, f.err
}

func expenseDoc(description string, amount int64) bson.M {
	return bson.M{
		"description": description,
		"category":    "Ăn uống",
		"amount":      amount,
		"date":        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestExecuteRendersSummaryWithContinuation(t *testing.T) {
	store := &fakeStore{docs: []bson.M{
		expenseDoc("phở", 50_000),
		expenseDoc("cơm trưa", 60_000),
		expenseDoc("cà phê", 40_000),
		expenseDoc("grab", 70_000),
		expenseDoc("trà sữa", 55_000),
		expenseDoc("bánh mì", 25_000),
		expenseDoc("xôi", 20_000),
	}}
	constructor := NewConstructor(store)

	descriptor := Analyze("xem chi tiêu tháng này", models.IntentExpenseQuery, testNow)
	result, err := constructor.Execute(context.Background(), "user-1", descriptor)
	if err != nil {
		t.Fatal(err)
	}

	if result.Count != 7 {
		t.Errorf("Count = %d, want 7", result.Count)
	}
	if result.Total != 320_000 {
		t.Errorf("Total = %d, want 320000", result.Total)
	}
	if !strings.Contains(result.Answer, "320.000") {
		t.Errorf("answer missing total: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "…và 2 khoản chi khác") {
		t.Errorf("answer missing overflow trailer: %q", result.Answer)
	}

	if result.Continuation == nil {
		t.Fatal("expected a continuation for the overflow")
	}
	if len(result.Continuation.Rows) != 2 {
		t.Errorf("continuation rows = %d, want 2", len(result.Continuation.Rows))
	}
	if result.Continuation.Count != 7 || result.Continuation.Total != 320_000 {
		t.Errorf("continuation = %+v", result.Continuation)
	}
}

func TestExecuteScopesToOwner(t *testing.T) {
	store := &fakeStore{}
	constructor := NewConstructor(store)

	descriptor := Analyze("chi tiêu tháng này", models.IntentExpenseQuery, testNow)
	if _, err := constructor.Execute(context.Background(), "user-9", descriptor); err != nil {
		t.Fatal(err)
	}

	if store.lastCollection != "expenses" {
		t.Errorf("collection = %q, want expenses", store.lastCollection)
	}
	if store.lastFilter["userId"] != "user-9" {
		t.Errorf("filter not owner-scoped: %v", store.lastFilter)
	}
	if _, ok := store.lastFilter["date"]; !ok {
		t.Errorf("time predicate missing: %v", store.lastFilter)
	}
}

func TestExecuteExtremumUsesSortAndLimitOne(t *testing.T) {
	store := &fakeStore{docs: []bson.M{expenseDoc("lẩu", 500_000)}}
	constructor := NewConstructor(store)

	descriptor := Analyze("khoản chi cao nhất", models.IntentExpenseQuery, testNow)
	if _, err := constructor.Execute(context.Background(), "user-1", descriptor); err != nil {
		t.Fatal(err)
	}

	if store.lastLimit != 1 {
		t.Errorf("limit = %d, want 1", store.lastLimit)
	}
	if len(store.lastSort) != 1 || store.lastSort[0].Key != "amount" || store.lastSort[0].Value != -1 {
		t.Errorf("sort = %v, want amount descending", store.lastSort)
	}
}

func TestExecuteSingularRecentUsesLimitOne(t *testing.T) {
	store := &fakeStore{docs: []bson.M{expenseDoc("cà phê", 40_000)}}
	constructor := NewConstructor(store)

	descriptor := Analyze("khoản chi gần nhất", models.IntentExpenseQuery, testNow)
	if _, err := constructor.Execute(context.Background(), "user-1", descriptor); err != nil {
		t.Fatal(err)
	}

	if store.lastLimit != 1 {
		t.Errorf("limit = %d, want 1 for a superlative recent query", store.lastLimit)
	}
	if len(store.lastSort) != 1 || store.lastSort[0].Key != "date" || store.lastSort[0].Value != -1 {
		t.Errorf("sort = %v, want date descending", store.lastSort)
	}
}

func TestExecutePluralRecentKeepsListLimit(t *testing.T) {
	store := &fakeStore{}
	constructor := NewConstructor(store)

	descriptor := Analyze("các khoản chi gần đây", models.IntentExpenseQuery, testNow)
	if _, err := constructor.Execute(context.Background(), "user-1", descriptor); err != nil {
		t.Fatal(err)
	}

	if store.lastLimit != findLimit {
		t.Errorf("limit = %d, want %d for a plural recent query", store.lastLimit, findLimit)
	}
}

func TestExecuteAggregationPrependsOwnerMatch(t *testing.T) {
	store := &fakeStore{docs: []bson.M{
		{"_id": nil, "total": int64(1_250_000), "count": int32(4)},
	}}
	constructor := NewConstructor(store)

	descriptor := Analyze("tổng chi tiêu tháng này", models.IntentExpenseQuery, testNow)
	result, err := constructor.Execute(context.Background(), "user-1", descriptor)
	if err != nil {
		t.Fatal(err)
	}

	if len(store.lastPipeline) < 2 {
		t.Fatalf("pipeline = %v, want $match + $group", store.lastPipeline)
	}
	match, ok := store.lastPipeline[0]["$match"].(bson.M)
	if !ok || match["userId"] != "user-1" {
		t.Errorf("first stage is not an owner-scoped $match: %v", store.lastPipeline[0])
	}
	if !strings.Contains(result.Answer, "1.250.000") {
		t.Errorf("answer missing total: %q", result.Answer)
	}
}

func TestExecuteRejectsInserts(t *testing.T) {
	constructor := NewConstructor(&fakeStore{})

	descriptor := &models.QueryDescriptor{Intent: models.IntentInsertExpense, Filter: bson.M{}}
	if _, err := constructor.Execute(context.Background(), "user-1", descriptor); !errors.Is(err, ErrWriteNotSupported) {
		t.Errorf("err = %v, want ErrWriteNotSupported", err)
	}
}

func TestExecuteEmptyResult(t *testing.T) {
	constructor := NewConstructor(&fakeStore{})

	descriptor := Analyze("chi tiêu tháng này", models.IntentExpenseQuery, testNow)
	result, err := constructor.Execute(context.Background(), "user-1", descriptor)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Answer, "không tìm thấy") {
		t.Errorf("answer = %q, want a not-found message", result.Answer)
	}
	if result.Continuation != nil {
		t.Error("empty result must not produce a continuation")
	}
}

func TestCollectionFor(t *testing.T) {
	tests := []struct {
		intent     string
		collection string
	}{
		{models.IntentExpenseQuery, "expenses"},
		{models.IntentIncomeQuery, "incomes"},
		{models.IntentSavingsIncomeQuery, "incomes"},
		{models.IntentLoanQuery, "loans"},
		{models.IntentLoanOverdueQuery, "loans"},
		{models.IntentSavingsQuery, "investments"},
		{models.IntentGoldQuery, "investments"},
		{models.IntentStockQuery, "investments"},
		{models.IntentTimeQuery, "expenses"},
	}

	for _, tt := range tests {
		if got := CollectionFor(tt.intent); got != tt.collection {
			t.Errorf("CollectionFor(%q) = %q, want %q", tt.intent, got, tt.collection)
		}
	}
}
