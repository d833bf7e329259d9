package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"moneytalk/internal/ledger"
	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
	"moneytalk/internal/query"
)

// how many rows a direct list answer shows before cutting off
const listRows = 10

// handleEntityQuery runs the funnel analyzer and the query constructor
// for the read intents backed by a collection. Overflow rows are parked
// as a continuation for a follow-up detail request.
func (a *Agent) handleEntityQuery(ctx context.Context, userID, message, intent string) *Response {
	descriptor := query.Analyze(message, intent, a.now())
	result, err := a.queries.Execute(ctx, userID, descriptor)
	if err != nil {
		log.Printf("❌ [AGENT] entity query %s for user %s: %v", intent, userID, err)
		return &Response{Message: genericApology, Intent: intent}
	}

	if result.Continuation != nil {
		a.contexts.SetContinuation(userID, result.Continuation)
	}
	return &Response{Message: result.Answer, Intent: intent}
}

// handleDetail pages into a parked continuation. Rows continue the
// numbering of the summary that produced them.
func (a *Agent) handleDetail(_ context.Context, userID, _ string) *Response {
	continuation := a.contexts.TakeContinuation(userID)
	if continuation == nil {
		return &Response{
			Message: "Mình không thấy danh sách nào đang xem dở. Bạn hỏi lại từ đầu giúp mình nhé, ví dụ: \"xem các khoản chi tháng này\".",
			Intent:  models.IntentDetailQuery,
		}
	}

	shownBefore := query.SummaryRows

	var b strings.Builder
	fmt.Fprintf(&b, "Tiếp tục danh sách %s:\n", continuation.Title)

	for i, row := range continuation.Rows {
		b.WriteString(query.FormatRow(shownBefore+i+1, continuation.Entity, row))
		b.WriteString("\n")
	}

	// the grand total spans the whole result, not just the rows paged in here
	if continuation.Entity == "loans" {
		fmt.Fprintf(&b, "Tổng cả %d khoản vay: %s", continuation.Count, nlp.FormatVND(continuation.Total))
	} else {
		fmt.Fprintf(&b, "Tổng cả %d khoản: %s", continuation.Count, nlp.FormatVND(continuation.Total))
	}

	if hidden := continuation.Count - shownBefore - len(continuation.Rows); hidden > 0 {
		fmt.Fprintf(&b, "\nVẫn còn %d %s nữa ngoài danh sách này.", hidden, query.EntityLabel(continuation.Entity))
	}

	return &Response{Message: b.String(), Intent: models.IntentDetailQuery}
}

// handleFilterQuery serves the single-shot "{dataType} {operator}
// [{amount}]" pattern over in-memory slices.
func (a *Agent) handleFilterQuery(ctx context.Context, userID, message string) *Response {
	filter := nlp.ParseAdvancedFilter(message)
	if !filter.IsValid {
		return a.handleUnknown(ctx, userID, message)
	}

	if filter.DataType == "loan" {
		loans, err := a.ledger.Loans(ctx, userID, "")
		if err != nil {
			log.Printf("❌ [AGENT] filter query loans for user %s: %v", userID, err)
			return &Response{Message: genericApology, Intent: models.IntentFilterQuery}
		}
		return &Response{
			Message: renderLoanFilter(ledger.FilterLoans(loans, filter), filter),
			Intent:  models.IntentFilterQuery,
		}
	}

	var (
		entries []models.Entry
		err     error
		label   = "khoản chi"
	)
	if filter.DataType == "income" {
		entries, err = a.ledger.Incomes(ctx, userID)
		label = "khoản thu"
	} else {
		entries, err = a.ledger.Expenses(ctx, userID)
	}
	if err != nil {
		log.Printf("❌ [AGENT] filter query %s for user %s: %v", filter.DataType, userID, err)
		return &Response{Message: genericApology, Intent: models.IntentFilterQuery}
	}

	matched := ledger.FilterEntries(entries, filter)
	if len(matched) == 0 {
		return &Response{
			Message: fmt.Sprintf("Không có %s nào %s.", label, filterPhrase(filter)),
			Intent:  models.IntentFilterQuery,
		}
	}

	header := fmt.Sprintf("Các %s %s:", label, filterPhrase(filter))
	return &Response{
		Message: renderEntryList(header, matched),
		Intent:  models.IntentFilterQuery,
	}
}

func filterPhrase(filter nlp.AdvancedFilter) string {
	switch filter.Operator {
	case "max":
		return "lớn nhất"
	case "min":
		return "nhỏ nhất"
	case "greater":
		return "trên " + nlp.FormatVND(filter.Amount)
	case "less":
		return "dưới " + nlp.FormatVND(filter.Amount)
	}
	return ""
}

func renderLoanFilter(loans []models.Loan, filter nlp.AdvancedFilter) string {
	if len(loans) == 0 {
		return fmt.Sprintf("Không có khoản vay nào %s.", filterPhrase(filter))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Các khoản vay %s:\n", filterPhrase(filter))
	var totalRemaining int64
	for i, loan := range loans {
		fmt.Fprintf(&b, "%d. Vay %s của %s: còn nợ %s\n",
			i+1, nlp.FormatVND(loan.Amount), loan.Lender, nlp.FormatVND(loan.RemainingBalance()))
		totalRemaining += loan.RemainingBalance()
	}
	fmt.Fprintf(&b, "Tổng còn nợ: %s", nlp.FormatVND(totalRemaining))
	return b.String()
}

// handleTimeQuery answers "what happened in <period>" questions with an
// in-memory date filter over the fetched slices.
func (a *Agent) handleTimeQuery(ctx context.Context, userID, message string) *Response {
	timeRange := nlp.ParseTimeRange(message, a.now())
	if timeRange == nil {
		return a.handleUnknown(ctx, userID, message)
	}

	if timeRange.DataType == "loan" {
		loans, err := a.ledger.Loans(ctx, userID, "")
		if err != nil {
			log.Printf("❌ [AGENT] time query loans for user %s: %v", userID, err)
			return &Response{Message: genericApology, Intent: models.IntentTimeQuery}
		}
		return &Response{
			Message: renderLoansInRange(loans, timeRange),
			Intent:  models.IntentTimeQuery,
		}
	}

	incomes, err := a.ledger.Incomes(ctx, userID)
	if err == nil {
		var expenses []models.Entry
		expenses, err = a.ledger.Expenses(ctx, userID)
		if err == nil {
			incomes = entriesInRange(incomes, timeRange)
			expenses = entriesInRange(expenses, timeRange)

			switch timeRange.DataType {
			case "income":
				if len(incomes) == 0 {
					return &Response{
						Message: fmt.Sprintf("Bạn chưa có khoản thu nào trong %s.", timeRange.Label),
						Intent:  models.IntentTimeQuery,
					}
				}
				header := fmt.Sprintf("Các khoản thu trong %s:", timeRange.Label)
				return &Response{Message: renderEntryList(header, incomes), Intent: models.IntentTimeQuery}
			case "expense":
				if len(expenses) == 0 {
					return &Response{
						Message: fmt.Sprintf("Bạn chưa có khoản chi nào trong %s.", timeRange.Label),
						Intent:  models.IntentTimeQuery,
					}
				}
				header := fmt.Sprintf("Các khoản chi trong %s:", timeRange.Label)
				return &Response{Message: renderEntryList(header, expenses), Intent: models.IntentTimeQuery}
			}

			return &Response{
				Message: renderPeriodOverview(incomes, expenses, timeRange.Label),
				Intent:  models.IntentTimeQuery,
			}
		}
	}

	log.Printf("❌ [AGENT] time query for user %s: %v", userID, err)
	return &Response{Message: genericApology, Intent: models.IntentTimeQuery}
}

func entriesInRange(entries []models.Entry, timeRange *nlp.TimeRange) []models.Entry {
	var inRange []models.Entry
	for _, entry := range entries {
		if !entry.Date.Before(timeRange.Start) && entry.Date.Before(timeRange.End) {
			inRange = append(inRange, entry)
		}
	}
	return inRange
}

func renderLoansInRange(loans []models.Loan, timeRange *nlp.TimeRange) string {
	var inRange []models.Loan
	for _, loan := range loans {
		if !loan.Date.Before(timeRange.Start) && loan.Date.Before(timeRange.End) {
			inRange = append(inRange, loan)
		}
	}
	if len(inRange) == 0 {
		return fmt.Sprintf("Bạn không vay khoản nào trong %s.", timeRange.Label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Các khoản vay trong %s:\n", timeRange.Label)
	var total int64
	for i, loan := range inRange {
		fmt.Fprintf(&b, "%d. Vay %s của %s (%s)\n",
			i+1, nlp.FormatVND(loan.Amount), loan.Lender, loan.Date.Format("02/01/2006"))
		total += loan.Amount
	}
	fmt.Fprintf(&b, "Tổng vay: %s", nlp.FormatVND(total))
	return b.String()
}

func renderPeriodOverview(incomes, expenses []models.Entry, label string) string {
	var totalIncome, totalExpense int64
	for _, e := range incomes {
		totalIncome += e.Amount
	}
	for _, e := range expenses {
		totalExpense += e.Amount
	}

	if totalIncome == 0 && totalExpense == 0 {
		return fmt.Sprintf("Trong %s bạn chưa ghi khoản thu chi nào.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tình hình %s của bạn:\n", label)
	fmt.Fprintf(&b, "• Thu: %s (%d khoản)\n", nlp.FormatVND(totalIncome), len(incomes))
	fmt.Fprintf(&b, "• Chi: %s (%d khoản)\n", nlp.FormatVND(totalExpense), len(expenses))
	net := totalIncome - totalExpense
	if net >= 0 {
		fmt.Fprintf(&b, "• Còn lại: %s", nlp.FormatVND(net))
	} else {
		fmt.Fprintf(&b, "• Chi vượt thu: %s", nlp.FormatVND(-net))
	}
	return b.String()
}

func renderEntryList(header string, entries []models.Entry) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	shown := len(entries)
	if shown > listRows {
		shown = listRows
	}

	var total int64
	for _, entry := range entries {
		total += entry.Amount
	}
	for i := 0; i < shown; i++ {
		entry := entries[i]
		description := entry.Description
		if description == "" {
			description = entry.Category
		}
		fmt.Fprintf(&b, "%d. %s: %s (%s)\n", i+1, description, nlp.FormatVND(entry.Amount), entry.Date.Format("02/01/2006"))
	}
	if len(entries) > shown {
		fmt.Fprintf(&b, "…và %d khoản khác.\n", len(entries)-shown)
	}
	fmt.Fprintf(&b, "Tổng cộng: %s", nlp.FormatVND(total))
	return b.String()
}

// overdue loans carry a flat late penalty on the remaining balance
const overduePenaltyRate = 0.05

// handleLoanQuery renders the loan book filtered by the intent's status.
func (a *Agent) handleLoanQuery(ctx context.Context, userID, intent string) *Response {
	status := ""
	switch intent {
	case models.IntentLoanPaidQuery:
		status = models.LoanStatusPaid
	case models.IntentLoanOverdueQuery:
		status = models.LoanStatusOverdue
	case models.IntentLoanQuery, models.IntentLoanRemainingQuery:
		status = models.LoanStatusActive
	}

	loans, err := a.ledger.Loans(ctx, userID, status)
	if err != nil {
		log.Printf("❌ [AGENT] loan query for user %s: %v", userID, err)
		return &Response{Message: genericApology, Intent: intent}
	}

	if len(loans) == 0 {
		messageByIntent := map[string]string{
			models.IntentLoanPaidQuery:    "Bạn chưa có khoản vay nào đã trả xong.",
			models.IntentLoanOverdueQuery: "Tuyệt vời, bạn không có khoản vay nào quá hạn!",
		}
		message, ok := messageByIntent[intent]
		if !ok {
			message = "Bạn đang không có khoản vay nào. Nhẹ cả người!"
		}
		return &Response{Message: message, Intent: intent}
	}

	if intent == models.IntentLoanRemainingQuery {
		var totalRemaining, totalInterest int64
		for i := range loans {
			totalRemaining += loans[i].RemainingBalance()
			totalInterest += loans[i].AccruedInterest()
		}
		message := fmt.Sprintf("Bạn còn nợ tổng cộng %s trên %d khoản vay.", nlp.FormatVND(totalRemaining), len(loans))
		if totalInterest > 0 {
			message += fmt.Sprintf(" Lãi tạm tính: %s.", nlp.FormatVND(totalInterest))
		}
		return &Response{Message: message, Intent: intent}
	}

	var b strings.Builder
	if intent == models.IntentLoanOverdueQuery {
		b.WriteString("⚠️ Các khoản vay quá hạn của bạn:\n")
	} else if intent == models.IntentLoanPaidQuery {
		b.WriteString("Các khoản vay bạn đã trả xong:\n")
	} else {
		b.WriteString("Các khoản vay hiện tại của bạn:\n")
	}

	var totalRemaining int64
	for i := range loans {
		loan := &loans[i]
		remaining := loan.RemainingBalance()
		totalRemaining += remaining

		fmt.Fprintf(&b, "%d. Vay %s của %s", i+1, nlp.FormatVND(loan.Amount), loan.Lender)
		if loan.Status == models.LoanStatusPaid {
			fmt.Fprintf(&b, ": đã trả đủ %s\n", nlp.FormatVND(loan.TotalPaid()))
			continue
		}

		fmt.Fprintf(&b, ": đã trả %s, còn nợ %s", nlp.FormatVND(loan.TotalPaid()), nlp.FormatVND(remaining))
		if interest := loan.AccruedInterest(); interest > 0 {
			fmt.Fprintf(&b, ", lãi tạm tính %s", nlp.FormatVND(interest))
		}
		if loan.Status == models.LoanStatusOverdue {
			penalty := int64(float64(remaining) * overduePenaltyRate)
			fmt.Fprintf(&b, ", phí trễ hạn %s", nlp.FormatVND(penalty))
		}
		b.WriteString("\n")
	}

	if intent != models.IntentLoanPaidQuery {
		fmt.Fprintf(&b, "Tổng còn nợ: %s", nlp.FormatVND(totalRemaining))
	} else {
		b.WriteString("Bạn đã hoàn thành hết các khoản trên. 👏")
	}

	return &Response{Message: b.String(), Intent: intent}
}

// handleBalanceQuery renders the available balance with its breakdown.
func (a *Agent) handleBalanceQuery(ctx context.Context, userID string) *Response {
	snapshot := a.snapshot(ctx, userID)
	if snapshot == nil {
		return &Response{Message: genericApology, Intent: models.IntentBalanceQuery}
	}

	if snapshot.TotalIncome == 0 && snapshot.TotalExpense == 0 {
		return &Response{
			Message: "Bạn chưa ghi khoản thu chi nào nên mình chưa tính được số dư. Bắt đầu bằng \"nhận lương 10 triệu\" nhé!",
			Intent:  models.IntentBalanceQuery,
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Số dư khả dụng của bạn: %s\n", nlp.FormatVND(snapshot.AvailableBalance))
	fmt.Fprintf(&b, "• Tổng thu: %s\n", nlp.FormatVND(snapshot.TotalIncome))
	fmt.Fprintf(&b, "• Tổng chi: %s\n", nlp.FormatVND(snapshot.TotalExpense))
	if snapshot.TotalSavings > 0 {
		fmt.Fprintf(&b, "• Tiết kiệm: %s (đã tính vào số dư khả dụng)\n", nlp.FormatVND(snapshot.TotalSavings))
	}
	fmt.Fprintf(&b, "• Chênh lệch thu chi: %s", nlp.FormatVND(snapshot.NetBalance))

	return &Response{Message: b.String(), Intent: models.IntentBalanceQuery}
}

// handleBankSavingsQuery lists savings-type investments (bank deposits),
// distinct from plain savings events in the income ledger.
func (a *Agent) handleBankSavingsQuery(ctx context.Context, userID string) *Response {
	investments, err := a.ledger.Investments(ctx, userID, models.InvestmentSavings)
	if err != nil {
		log.Printf("❌ [AGENT] bank savings query for user %s: %v", userID, err)
		return &Response{Message: genericApology, Intent: models.IntentSavingsQuery}
	}

	if len(investments) == 0 {
		return &Response{
			Message: "Bạn chưa có sổ tiết kiệm ngân hàng nào. Khi gửi, bạn nhắn \"gửi tiết kiệm ngân hàng 10 triệu\" để mình ghi lại nhé.",
			Intent:  models.IntentSavingsQuery,
		}
	}

	var b strings.Builder
	b.WriteString("Các khoản tiết kiệm ngân hàng của bạn:\n")
	var total int64
	for i, investment := range investments {
		fmt.Fprintf(&b, "%d. %s", i+1, nlp.FormatVND(investment.Amount))
		if investment.BankName != "" {
			fmt.Fprintf(&b, " tại %s", investment.BankName)
		}
		fmt.Fprintf(&b, " (%s)\n", investment.Date.Format("02/01/2006"))
		total += investment.Amount
	}
	fmt.Fprintf(&b, "Tổng tiết kiệm ngân hàng: %s", nlp.FormatVND(total))

	return &Response{Message: b.String(), Intent: models.IntentSavingsQuery}
}
