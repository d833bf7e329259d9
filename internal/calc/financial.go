package calc

import (
	"fmt"
	"regexp"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// FinancialEngine answers balance-dependent questions: can I afford X,
// what's left after spending X, how short am I. All spend arithmetic
// operates on AvailableBalance (net balance plus committed savings), a
// deliberate design choice: savings count as spendable safety margin.
type FinancialEngine struct{}

// Financial calculation subtypes
const (
	SubtypeBalanceCheck     = "balance_check"
	SubtypeSpendingAbility  = "spending_ability"
	SubtypeAfterSpending    = "after_spending"
	SubtypeShortageCheck    = "shortage_check"
	SubtypeRemainingBalance = "remaining_balance"
)

// Detection threshold for the financial engine
const financialThreshold = 0.5

// per-check confidence weights
const (
	weightBalanceWords   = 0.4
	weightSpendWords     = 0.4
	weightAfterWords     = 0.4
	weightShortageWords  = 0.4
	weightRemainingWords = 0.35
	weightConditional    = 0.25
	weightAmountContext  = 0.25
)

var (
	balanceWords   = []string{"số dư", "còn bao nhiêu tiền", "tiền của tôi", "tài chính hiện tại", "balance"}
	spendWords     = []string{"có thể chi", "đủ tiền", "đủ để", "chi được không", "mua được không", "afford", "khả năng chi"}
	afterWords     = []string{"nếu chi", "sau khi chi", "nếu tiêu", "sau khi tiêu", "nếu mua", "sau khi mua"}
	shortageWords  = []string{"thiếu bao nhiêu", "thiếu hụt", "còn thiếu", "thiếu"}
	remainingWords = []string{"còn lại bao nhiêu", "còn lại", "dư ra bao nhiêu"}

	// nếu ... chi ... thì/còn, with an amount somewhere in between
	conditionalRegex = regexp.MustCompile(`(?:neu|sau khi)\s+.*(?:chi|tieu|mua)\s+.*\d.*(?:thi|con)`)
	financeContext   = []string{"chi", "tiêu", "mua", "tiền", "chi tiêu"}
)

// Detect blends seven independent boolean checks into one confidence.
func (e *FinancialEngine) Detect(message string) EngineResult {
	folded := nlp.Fold(message)

	_, hasBalance := nlp.ContainsAny(message, balanceWords)
	_, hasSpend := nlp.ContainsAny(message, spendWords)
	_, hasAfter := nlp.ContainsAny(message, afterWords)
	_, hasShortage := nlp.ContainsAny(message, shortageWords)
	_, hasRemaining := nlp.ContainsAny(message, remainingWords)
	hasConditional := conditionalRegex.MatchString(folded)
	_, inFinanceContext := nlp.ContainsAny(message, financeContext)
	hasAmountContext := nlp.HasAmount(message) && inFinanceContext

	confidence := 0.0
	if hasBalance {
		confidence += weightBalanceWords
	}
	if hasSpend {
		confidence += weightSpendWords
	}
	if hasAfter {
		confidence += weightAfterWords
	}
	if hasShortage {
		confidence += weightShortageWords
	}
	if hasRemaining {
		confidence += weightRemainingWords
	}
	if hasConditional {
		confidence += weightConditional
	}
	if hasAmountContext {
		confidence += weightAmountContext
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	subtype := ""
	switch {
	case hasShortage:
		subtype = SubtypeShortageCheck
	case hasAfter || (hasConditional && hasRemaining):
		subtype = SubtypeAfterSpending
	case hasSpend:
		subtype = SubtypeSpendingAbility
	case hasRemaining:
		subtype = SubtypeRemainingBalance
	case hasBalance:
		subtype = SubtypeBalanceCheck
	}

	return EngineResult{
		Matches:    confidence >= financialThreshold && subtype != "",
		Confidence: confidence,
		Subtype:    subtype,
	}
}

// Process renders the answer for the detected subtype against a financial
// snapshot. A missing amount yields a guidance message, never an error.
func (e *FinancialEngine) Process(message string, snapshot *models.FinancialSnapshot) string {
	if snapshot == nil {
		return "Mình chưa có dữ liệu tài chính của bạn. Bạn thêm vài khoản thu chi trước nhé."
	}

	result := e.Detect(message)
	amount := nlp.ParseAmount(message)

	switch result.Subtype {
	case SubtypeShortageCheck:
		if amount <= 0 {
			return amountGuidance
		}
		shortage := amount - snapshot.AvailableBalance
		if shortage < 0 {
			shortage = 0
		}
		if shortage == 0 {
			return fmt.Sprintf(
				"Bạn không thiếu đồng nào: số dư khả dụng %s đủ cho khoản chi %s.",
				nlp.FormatVND(snapshot.AvailableBalance), nlp.FormatVND(amount))
		}
		return fmt.Sprintf(
			"Với số dư khả dụng %s, chi %s bạn còn thiếu %s.",
			nlp.FormatVND(snapshot.AvailableBalance), nlp.FormatVND(amount), nlp.FormatVND(shortage))

	case SubtypeAfterSpending:
		if amount <= 0 {
			return amountGuidance
		}
		remaining := snapshot.AvailableBalance - amount
		if remaining < 0 {
			return fmt.Sprintf(
				"Nếu chi %s bạn sẽ âm %s (số dư khả dụng hiện tại là %s).",
				nlp.FormatVND(amount), nlp.FormatVND(-remaining), nlp.FormatVND(snapshot.AvailableBalance))
		}
		return fmt.Sprintf(
			"Nếu chi %s, bạn còn lại %s (từ số dư khả dụng %s).",
			nlp.FormatVND(amount), nlp.FormatVND(remaining), nlp.FormatVND(snapshot.AvailableBalance))

	case SubtypeSpendingAbility:
		if amount <= 0 {
			return amountGuidance
		}
		if amount <= snapshot.AvailableBalance {
			return fmt.Sprintf(
				"Được nhé! Bạn có thể chi %s. Sau khoản này bạn còn %s.",
				nlp.FormatVND(amount), nlp.FormatVND(snapshot.AvailableBalance-amount))
		}
		return fmt.Sprintf(
			"Chưa đủ: bạn muốn chi %s nhưng số dư khả dụng chỉ có %s (thiếu %s).",
			nlp.FormatVND(amount), nlp.FormatVND(snapshot.AvailableBalance),
			nlp.FormatVND(amount-snapshot.AvailableBalance))

	case SubtypeRemainingBalance, SubtypeBalanceCheck:
		return e.renderBalance(snapshot)
	}

	return e.renderBalance(snapshot)
}

const amountGuidance = "Bạn cho mình biết số tiền cụ thể nhé, ví dụ: \"tôi có thể chi 4tr được không?\""

func (e *FinancialEngine) renderBalance(snapshot *models.FinancialSnapshot) string {
	return fmt.Sprintf(
		"Tình hình tài chính của bạn:\n- Tổng thu: %s\n- Tổng chi: %s\n- Tiết kiệm: %s\n- Số dư ròng: %s\n- Số dư khả dụng: %s",
		nlp.FormatVND(snapshot.TotalIncome),
		nlp.FormatVND(snapshot.TotalExpense),
		nlp.FormatVND(snapshot.TotalSavings),
		nlp.FormatVND(snapshot.NetBalance),
		nlp.FormatVND(snapshot.AvailableBalance))
}
