package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"moneytalk/internal/convo"
	"moneytalk/internal/models"
	"moneytalk/internal/query"
	"moneytalk/internal/stock"
)

type insertedEntry struct {
	collection string
	entry      *models.Entry
}

type fakeLedger struct {
	snapshot    *models.FinancialSnapshot
	loans       []models.Loan
	incomes     []models.Entry
	expenses    []models.Entry
	investments []models.Investment

	entries         []insertedEntry
	insertedLoans   []*models.Loan
	insertedInvests []*models.Investment
}

func (f *fakeLedger) Snapshot(context.Context, string) (*models.FinancialSnapshot, error) {
	if f.snapshot == nil {
		return &models.FinancialSnapshot{}, nil
	}
	return f.snapshot, nil
}

func (f *fakeLedger) Incomes(context.Context, string) ([]models.Entry, error) {
	return f.incomes, nil
}

func (f *fakeLedger) Expenses(context.Context, string) ([]models.Entry, error) {
	return f.expenses, nil
}

func (f *fakeLedger) Loans(_ context.Context, _ string, status string) ([]models.Loan, error) {
	if status == "" {
		return f.loans, nil
	}
	var matched []models.Loan
	for _, loan := range f.loans {
		if loan.Status == status {
			matched = append(matched, loan)
		}
	}
	return matched, nil
}

func (f *fakeLedger) Investments(context.Context, string, string) ([]models.Investment, error) {
	return f.investments, nil
}

func (f *fakeLedger) InsertEntry(_ context.Context, collection string, entry *models.Entry) error {
	f.entries = append(f.entries, insertedEntry{collection, entry})
	return nil
}

func (f *fakeLedger) InsertLoan(_ context.Context, loan *models.Loan) error {
	f.insertedLoans = append(f.insertedLoans, loan)
	return nil
}

func (f *fakeLedger) InsertInvestment(_ context.Context, investment *models.Investment) error {
	f.insertedInvests = append(f.insertedInvests, investment)
	return nil
}

type fakeQueries struct {
	result      *query.Result
	descriptors []*models.QueryDescriptor
}

func (f *fakeQueries) Execute(_ context.Context, _ string, descriptor *models.QueryDescriptor) (*query.Result, error) {
	f.descriptors = append(f.descriptors, descriptor)
	if f.result == nil {
		return &query.Result{Answer: "ok"}, nil
	}
	return f.result, nil
}

type fakeCompleter struct {
	replies []string
	prompts []string
}

func (f *fakeCompleter) Generate(_ context.Context, prompt string, _ GenOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", fmt.Errorf("no canned reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type fakeStocks struct {
	quote stock.Quote
}

func (f *fakeStocks) GetPrice(context.Context, string) stock.Quote { return f.quote }

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) EntryCreated(kind, userID string, amount int64) {
	f.events = append(f.events, fmt.Sprintf("%s/%s/%d", kind, userID, amount))
}

func newTestAgent(ledger *fakeLedger, queries *fakeQueries, completer Completer) (*Agent, *fakeNotifier) {
	notifier := &fakeNotifier{}
	var stocks StockProvider
	a := New(ledger, queries, convo.NewStore(), completer, stocks, notifier)
	a.now = func() time.Time {
		return time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	}
	return a, notifier
}

func TestEmptyMessage(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "   ", Options{})
	if resp.Intent != models.IntentUnknown {
		t.Errorf("intent = %q", resp.Intent)
	}
	if !strings.Contains(resp.Message, "chưa nhập") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestOverlongMessage(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", strings.Repeat("a", 1001), Options{})
	if !strings.Contains(resp.Message, "dài quá") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestInsertSavingsGoesToIncomes(t *testing.T) {
	ledger := &fakeLedger{}
	a, notifier := newTestAgent(ledger, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "tôi tiết kiệm được 500k", Options{})

	if resp.Intent != models.IntentInsertSavings {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("inserted %d entries", len(ledger.entries))
	}
	got := ledger.entries[0]
	if got.collection != "incomes" {
		t.Errorf("collection = %q, want incomes", got.collection)
	}
	if got.entry.Category != models.CategorySavings {
		t.Errorf("category = %q, want %q", got.entry.Category, models.CategorySavings)
	}
	if got.entry.Amount != 500_000 {
		t.Errorf("amount = %d", got.entry.Amount)
	}

	refresh, ok := resp.Metadata["refresh"].([]string)
	if !ok || len(refresh) != 1 || refresh[0] != "incomes" {
		t.Errorf("refresh metadata = %v", resp.Metadata["refresh"])
	}
	if len(notifier.events) != 1 || notifier.events[0] != "savings/u1/500000" {
		t.Errorf("notifier events = %v", notifier.events)
	}
}

func TestInsertExpenseWithFunnelCategory(t *testing.T) {
	ledger := &fakeLedger{}
	a, _ := newTestAgent(ledger, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "ăn sáng hết 50k", Options{})

	if resp.Intent != models.IntentInsertExpense {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("inserted %d entries", len(ledger.entries))
	}
	got := ledger.entries[0]
	if got.collection != "expenses" || got.entry.Category != "Ăn uống" || got.entry.Amount != 50_000 {
		t.Errorf("got %s/%s/%d", got.collection, got.entry.Category, got.entry.Amount)
	}
}

func TestInsertExpenseAsksForCategoryThenConfirms(t *testing.T) {
	ledger := &fakeLedger{}
	a, _ := newTestAgent(ledger, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "mất 200k", Options{})
	if len(ledger.entries) != 0 {
		t.Fatalf("expense written before confirmation: %v", ledger.entries)
	}
	if !strings.Contains(resp.Message, "1. Ăn uống") {
		t.Fatalf("confirmation question = %q", resp.Message)
	}

	resp = a.HandleMessage(context.Background(), "u1", "2", Options{})
	if len(ledger.entries) != 1 {
		t.Fatalf("inserted %d entries after confirmation", len(ledger.entries))
	}
	got := ledger.entries[0]
	if got.entry.Category != "Di chuyển" || got.entry.Amount != 200_000 {
		t.Errorf("got %s/%d", got.entry.Category, got.entry.Amount)
	}
	if resp.Intent != models.IntentInsertExpense {
		t.Errorf("intent = %q", resp.Intent)
	}
}

func TestConfirmationByName(t *testing.T) {
	ledger := &fakeLedger{}
	a, _ := newTestAgent(ledger, &fakeQueries{}, nil)

	a.HandleMessage(context.Background(), "u1", "tốn 80k", Options{})
	a.HandleMessage(context.Background(), "u1", "giải trí nhé", Options{})

	if len(ledger.entries) != 1 || ledger.entries[0].entry.Category != "Giải trí" {
		t.Fatalf("entries = %+v", ledger.entries)
	}
}

func TestDetailFollowUp(t *testing.T) {
	rows := []models.ResultRow{
		{Description: "cafe", Amount: 10_000, Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
		{Description: "gửi xe", Amount: 20_000, Date: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)},
		{Description: "ăn vặt", Amount: 30_000, Date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)},
	}
	queries := &fakeQueries{result: &query.Result{
		Answer: "Bạn có 8 khoản chi, tổng cộng 500.000 VND:",
		Continuation: &models.QueryContinuation{
			Entity:    "expenses",
			Title:     "8 khoản chi",
			Rows:      rows,
			Total:     500_000,
			Count:     8,
			CreatedAt: time.Now(),
		},
	}}
	a, _ := newTestAgent(&fakeLedger{}, queries, nil)

	a.HandleMessage(context.Background(), "u1", "xem khoản chi", Options{})

	resp := a.HandleMessage(context.Background(), "u1", "xem chi tiết", Options{})
	if resp.Intent != models.IntentDetailQuery {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	// the total line restates the grand total across all 8 items, not
	// just the 3 paged in here
	for _, want := range []string{"6. cafe", "7. gửi xe", "8. ăn vặt", "Tổng cả 8 khoản: 500.000 VND"} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("detail missing %q in %q", want, resp.Message)
		}
	}

	// the continuation is consumed once
	resp = a.HandleMessage(context.Background(), "u1", "xem chi tiết", Options{})
	if !strings.Contains(resp.Message, "không thấy danh sách") {
		t.Errorf("second detail = %q", resp.Message)
	}
}

func TestLoanOverduePenalty(t *testing.T) {
	ledger := &fakeLedger{loans: []models.Loan{
		{
			Amount:   2_000_000,
			Lender:   "anh Ba",
			Status:   models.LoanStatusOverdue,
			Payments: []models.LoanPayment{{Amount: 1_000_000}},
		},
	}}
	a, _ := newTestAgent(ledger, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "nợ quá hạn của tôi", Options{})
	if resp.Intent != models.IntentLoanOverdueQuery {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	for _, want := range []string{"anh Ba", "còn nợ 1.000.000", "phí trễ hạn 50.000"} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("missing %q in %q", want, resp.Message)
		}
	}
}

func TestBalanceQuery(t *testing.T) {
	ledger := &fakeLedger{snapshot: &models.FinancialSnapshot{
		TotalIncome:      10_000_000,
		TotalExpense:     4_000_000,
		TotalSavings:     2_000_000,
		NetBalance:       6_000_000,
		AvailableBalance: 8_000_000,
	}}
	a, _ := newTestAgent(ledger, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "số dư của tôi", Options{})
	if resp.Intent != models.IntentBalanceQuery {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	if !strings.Contains(resp.Message, "8.000.000 VND") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestCalculationExpression(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "tính giúp 125 + 75 bằng bao nhiêu", Options{})
	if resp.Intent != models.IntentGeneralCalc {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	if !strings.Contains(resp.Message, "200") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestChitChatGreeting(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "xin chào", Options{})
	if resp.Intent != models.IntentGreeting || resp.Message == "" {
		t.Errorf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
}

func TestTimeOfDay(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)

	resp := a.HandleMessage(context.Background(), "u1", "mấy giờ rồi nhỉ", Options{})
	if resp.Intent != models.IntentTimeOfDay {
		t.Fatalf("intent = %q", resp.Intent)
	}
	if !strings.Contains(resp.Message, "09:30") || !strings.Contains(resp.Message, "18/06/2025") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestStockQuery(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)
	a.stocks = &fakeStocks{quote: stock.Quote{Symbol: "FPT", Price: 91_500, ChangePercent: 1.25}}

	resp := a.HandleMessage(context.Background(), "u1", "giá cổ phiếu FPT hôm nay", Options{})
	if resp.Intent != models.IntentStockQuery {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	for _, want := range []string{"FPT", "91.500", "tăng 1.25%"} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("missing %q in %q", want, resp.Message)
		}
	}
}

func TestLLMClassificationFallback(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"advice", "Bạn nên chia thu nhập theo quy tắc 50/30/20."}}
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, completer)

	resp := a.HandleMessage(context.Background(), "u1", "giúp mình một chuyện nhé", Options{})
	if resp.Intent != models.IntentAdvice {
		t.Fatalf("intent = %q, message = %q", resp.Intent, resp.Message)
	}
	if resp.Message != "Bạn nên chia thu nhập theo quy tắc 50/30/20." {
		t.Errorf("message = %q", resp.Message)
	}
	if len(completer.prompts) != 2 || !strings.Contains(completer.prompts[0], "giúp mình một chuyện nhé") {
		t.Errorf("prompts = %d", len(completer.prompts))
	}
}

func TestLLMClassificationRejectsUnknownLabel(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"drop_all_tables"}}
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, completer)

	resp := a.HandleMessage(context.Background(), "u1", "giúp mình một chuyện nhé", Options{})
	if resp.Intent != models.IntentUnknown {
		t.Errorf("intent = %q", resp.Intent)
	}
}

func TestGuidedPlanningFlow(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)
	ctx := context.Background()

	resp := a.HandleMessage(ctx, "u1", "lập kế hoạch tài chính cho tôi", Options{})
	if !strings.Contains(resp.Message, "Mục tiêu tài chính") {
		t.Fatalf("flow start = %q", resp.Message)
	}

	resp = a.HandleMessage(ctx, "u1", "mua nhà", Options{})
	if !strings.Contains(resp.Message, "Thu nhập hàng tháng") {
		t.Fatalf("step 2 = %q", resp.Message)
	}

	resp = a.HandleMessage(ctx, "u1", "khoảng 20 triệu", Options{})
	if !strings.Contains(resp.Message, "phần trăm") {
		t.Fatalf("step 3 = %q", resp.Message)
	}

	resp = a.HandleMessage(ctx, "u1", "20%", Options{})
	for _, want := range []string{"mua nhà", "4.000.000 VND", "48.000.000 VND"} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("summary missing %q in %q", want, resp.Message)
		}
	}
	if a.contexts.Get("u1").CurrentFlow != "" {
		t.Error("flow not cleared after wrap-up")
	}
}

func TestFlowEscape(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)
	ctx := context.Background()

	a.HandleMessage(ctx, "u1", "tư vấn đầu tư giúp mình", Options{})
	resp := a.HandleMessage(ctx, "u1", "thôi", Options{})

	if !strings.Contains(resp.Message, "dừng") {
		t.Errorf("escape reply = %q", resp.Message)
	}
	if a.contexts.Get("u1").CurrentFlow != "" {
		t.Error("flow still active after escape")
	}
}

func TestAIModeBypassesResolver(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"Xin chào, mình nghe đây!"}}
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, completer)

	resp := a.HandleMessage(context.Background(), "u1", "xin chào", Options{AIMode: true})
	if resp.Message != "Xin chào, mình nghe đây!" {
		t.Errorf("message = %q", resp.Message)
	}
	if len(completer.prompts) != 1 {
		t.Fatalf("completer called %d times", len(completer.prompts))
	}
}

func TestHistoryAppended(t *testing.T) {
	a, _ := newTestAgent(&fakeLedger{}, &fakeQueries{}, nil)

	a.HandleMessage(context.Background(), "u1", "xin chào", Options{})

	history := a.contexts.Get("u1").History
	if len(history) != 2 {
		t.Fatalf("history length = %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "bot" {
		t.Errorf("roles = %s/%s", history[0].Role, history[1].Role)
	}
}

func TestClassificationPromptListsKeywords(t *testing.T) {
	prompt := classificationPrompt("tôi còn bao nhiêu tiền")

	// every label the fallback may return must appear, with the trigger
	// keywords the rule passes match on
	for _, want := range []string{
		"insert_expense", "insert_income", "insert_loan", "insert_savings",
		"balance_query", "số dư",
		"savings_query", "tiết kiệm",
		"statistics_query", "thống kê",
		"greeting", "xin chào",
		"unknown",
		"tôi còn bao nhiêu tiền",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("classification prompt missing %q", want)
		}
	}
}
