package agent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"moneytalk/internal/convo"
	"moneytalk/internal/database"
	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// insert-blocking conditional structure: "nếu chi X ..." is a what-if
// question, not a transaction
var conditionalStructureRegex = regexp.MustCompile(`(?:neu|sau khi)\s+.*(?:chi|tieu|mua)`)

// matchesInsert is precedence rule 5: a monetary amount, insert verb
// phrasing, and none of the blocking conditions.
func (a *Agent) matchesInsert(_, message string) bool {
	if !nlp.HasAmount(message) {
		return false
	}
	if _, ok := nlp.ContainsAny(message, nlp.GeneralPriorityKeywords); ok {
		return false
	}
	if _, ok := nlp.ContainsAny(message, nlp.FinancialPriorityKeywords); ok {
		return false
	}
	if conditionalStructureRegex.MatchString(nlp.Fold(message)) {
		return false
	}
	return a.insertIntentFor(message) != ""
}

// insertIntentFor picks the insert variant by verb allowlist. Savings is
// tested first; the bank-savings special case is resolved in the
// handler, not here.
func (a *Agent) insertIntentFor(message string) string {
	for _, intent := range []string{
		models.IntentInsertSavings, models.IntentInsertIncome,
		models.IntentInsertExpense, models.IntentInsertLoan,
	} {
		if _, ok := nlp.ContainsAny(message, nlp.InsertVerbs[intent]); ok {
			return intent
		}
	}
	return ""
}

func (a *Agent) handleInsert(ctx context.Context, userID, message string) *Response {
	return a.handleInsertIntent(ctx, userID, message, a.insertIntentFor(message))
}

func (a *Agent) handleInsertIntent(ctx context.Context, userID, message, intent string) *Response {
	amount := nlp.ParseAmount(message)
	if amount <= 0 {
		return &Response{
			Message: "Mình chưa thấy số tiền trong tin nhắn. Bạn ghi rõ hơn nhé, ví dụ: \"ăn sáng hết 50k\".",
			Intent:  intent,
		}
	}

	switch intent {
	case models.IntentInsertSavings:
		if _, ok := nlp.ContainsAny(message, []string{"ngân hàng", "gửi ngân hàng", "sổ tiết kiệm"}); ok {
			return a.insertBankSavings(ctx, userID, message, amount)
		}
		return a.insertSavings(ctx, userID, message, amount)
	case models.IntentInsertIncome:
		return a.insertIncome(ctx, userID, message, amount)
	case models.IntentInsertLoan:
		return a.insertLoan(ctx, userID, message, amount)
	case models.IntentInsertExpense:
		return a.insertExpense(ctx, userID, message, amount)
	}

	return &Response{
		Message: "Mình chưa hiểu bạn muốn ghi khoản gì. Bạn thử: \"ăn trưa hết 60k\" hoặc \"nhận lương 15 triệu\".",
		Intent:  models.IntentUnknown,
	}
}

// insertSavings writes a savings event as an income entry with the
// canonical savings category. Savings live in the incomes collection,
// not a separate one.
func (a *Agent) insertSavings(ctx context.Context, userID, message string, amount int64) *Response {
	entry := &models.Entry{
		UserID:      userID,
		Amount:      amount,
		Category:    models.CategorySavings,
		Description: message,
	}
	if err := a.ledger.InsertEntry(ctx, database.CollectionIncomes, entry); err != nil {
		log.Printf("❌ [AGENT] insert savings: %v", err)
		return &Response{Message: genericApology, Intent: models.IntentInsertSavings}
	}
	a.notifyCreated("savings", userID, amount)

	return &Response{
		Message:  fmt.Sprintf("✅ Đã ghi khoản tiết kiệm %s. Giỏi lắm, tích tiểu thành đại!", nlp.FormatVND(amount)),
		Intent:   models.IntentInsertSavings,
		Metadata: refreshMetadata(database.CollectionIncomes),
	}
}

var incomeCategoryRules = []struct {
	category string
	triggers []string
}{
	{"Lương", []string{"lương", "nhận lương", "lương về", "salary"}},
	{"Thưởng", []string{"thưởng", "được thưởng", "bonus"}},
	{"Thu nhập khác", nil},
}

func (a *Agent) insertIncome(ctx context.Context, userID, message string, amount int64) *Response {
	category := "Thu nhập khác"
	for _, r := range incomeCategoryRules {
		if r.triggers == nil {
			break
		}
		if _, ok := nlp.ContainsAny(message, r.triggers); ok {
			category = r.category
			break
		}
	}

	entry := &models.Entry{
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Description: message,
	}
	if err := a.ledger.InsertEntry(ctx, database.CollectionIncomes, entry); err != nil {
		log.Printf("❌ [AGENT] insert income: %v", err)
		return &Response{Message: genericApology, Intent: models.IntentInsertIncome}
	}
	a.notifyCreated("income", userID, amount)

	return &Response{
		Message:  fmt.Sprintf("✅ Đã ghi khoản thu %s (%s).", nlp.FormatVND(amount), category),
		Intent:   models.IntentInsertIncome,
		Metadata: refreshMetadata(database.CollectionIncomes),
	}
}

// expenseSuggestions offered when the funnel cannot place the expense.
var expenseSuggestions = []string{"Ăn uống", "Di chuyển", "Mua sắm", "Hóa đơn", "Giải trí", "Khác"}

func (a *Agent) insertExpense(ctx context.Context, userID, message string, amount int64) *Response {
	if category := matchedFunnelCategory(message); category != "" {
		return a.writeExpense(ctx, userID, message, amount, category)
	}

	// ambiguous category: park the draft and ask
	a.contexts.SetPending(userID, &convo.PendingInsert{
		Intent:      models.IntentInsertExpense,
		Amount:      amount,
		Description: message,
		Suggestions: expenseSuggestions,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Khoản chi %s thuộc nhóm nào nhỉ?\n", nlp.FormatVND(amount))
	for i, suggestion := range expenseSuggestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, suggestion)
	}
	b.WriteString("Bạn trả lời số hoặc tên nhóm nhé.")

	return &Response{Message: b.String(), Intent: models.IntentInsertExpense}
}

func matchedFunnelCategory(message string) string {
	for _, category := range nlp.CategoryFunnel {
		if _, ok := nlp.ContainsAny(message, category.Triggers); ok {
			return category.Category
		}
	}
	return ""
}

func (a *Agent) writeExpense(ctx context.Context, userID, description string, amount int64, category string) *Response {
	entry := &models.Entry{
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Description: description,
	}
	if err := a.ledger.InsertEntry(ctx, database.CollectionExpenses, entry); err != nil {
		log.Printf("❌ [AGENT] insert expense: %v", err)
		return &Response{Message: genericApology, Intent: models.IntentInsertExpense}
	}
	a.notifyCreated("expense", userID, amount)

	return &Response{
		Message:  fmt.Sprintf("✅ Đã ghi khoản chi %s (%s).", nlp.FormatVND(amount), category),
		Intent:   models.IntentInsertExpense,
		Metadata: refreshMetadata(database.CollectionExpenses),
	}
}

var lenderRegex = regexp.MustCompile(`(?:vay|muon|no)\s+(?:cua|tu)\s+(\S+(?:\s+\S+)?)`)

func (a *Agent) insertLoan(ctx context.Context, userID, message string, amount int64) *Response {
	lender := "Không rõ"
	if m := lenderRegex.FindStringSubmatch(nlp.Fold(message)); m != nil {
		lender = strings.TrimSpace(m[1])
	}

	now := a.now()
	loan := &models.Loan{
		UserID:      userID,
		Amount:      amount,
		Category:    "Khoản vay",
		Description: message,
		Lender:      lender,
		Status:      models.LoanStatusActive,
		StartDate:   now,
		DueDate:     now.AddDate(0, 1, 0),
		Date:        now,
	}
	if err := a.ledger.InsertLoan(ctx, loan); err != nil {
		log.Printf("❌ [AGENT] insert loan: %v", err)
		return &Response{Message: genericApology, Intent: models.IntentInsertLoan}
	}
	a.notifyCreated("loan", userID, amount)

	return &Response{
		Message: fmt.Sprintf(
			"✅ Đã ghi khoản vay %s (người cho vay: %s, hạn trả %s). Bạn có thể bổ sung lãi suất sau nhé.",
			nlp.FormatVND(amount), lender, loan.DueDate.Format("02/01/2006")),
		Intent:   models.IntentInsertLoan,
		Metadata: refreshMetadata(database.CollectionLoans),
	}
}

var bankNameRegex = regexp.MustCompile(`ngan hang\s+(\S+(?:\s+\S+)?)`)

// insertBankSavings records a bank deposit as a savings-type investment
// rather than a plain savings event.
func (a *Agent) insertBankSavings(ctx context.Context, userID, message string, amount int64) *Response {
	bankName := ""
	if m := bankNameRegex.FindStringSubmatch(nlp.Fold(message)); m != nil {
		bankName = strings.TrimSpace(m[1])
	}

	investment := &models.Investment{
		UserID:      userID,
		Type:        models.InvestmentSavings,
		Name:        "Tiết kiệm ngân hàng",
		Amount:      amount,
		BankName:    bankName,
		Category:    models.CategorySavings,
		Description: message,
	}
	if err := a.ledger.InsertInvestment(ctx, investment); err != nil {
		log.Printf("❌ [AGENT] insert bank savings: %v", err)
		return &Response{Message: genericApology, Intent: models.IntentInsertSavings}
	}
	a.notifyCreated("investment", userID, amount)

	message = fmt.Sprintf("✅ Đã ghi khoản gửi tiết kiệm ngân hàng %s", nlp.FormatVND(amount))
	if bankName != "" {
		message += fmt.Sprintf(" tại %s", bankName)
	}
	return &Response{
		Message:  message + ".",
		Intent:   models.IntentInsertSavings,
		Metadata: refreshMetadata(database.CollectionInvestments),
	}
}

// handleConfirmation resolves a pending category question. The answer
// may be a list number or a (fuzzy) name; anything unrecognized falls
// back to the first suggestion rather than failing.
func (a *Agent) handleConfirmation(ctx context.Context, userID, message string) *Response {
	pending := a.contexts.TakePending(userID)
	if pending == nil {
		// the confirmation expired between match and take; treat the
		// message as a fresh one
		return a.resolve(ctx, userID, message)
	}

	category := pickSuggestion(message, pending.Suggestions)
	return a.writeExpense(ctx, userID, pending.Description, pending.Amount, category)
}

func pickSuggestion(answer string, suggestions []string) string {
	if len(suggestions) == 0 {
		return "Khác"
	}

	trimmed := strings.TrimSpace(answer)
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(suggestions) {
		return suggestions[n-1]
	}

	folded := nlp.Fold(trimmed)
	for _, suggestion := range suggestions {
		foldedSuggestion := nlp.Fold(suggestion)
		if strings.Contains(folded, foldedSuggestion) || strings.Contains(foldedSuggestion, folded) {
			return suggestion
		}
	}

	return suggestions[0]
}

func (a *Agent) notifyCreated(kind, userID string, amount int64) {
	if a.notifier != nil {
		a.notifier.EntryCreated(kind, userID, amount)
	}
}

func refreshMetadata(collections ...string) map[string]interface{} {
	return map[string]interface{}{"refresh": collections}
}
