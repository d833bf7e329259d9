package agent

import (
	"fmt"
	"strings"

	"moneytalk/internal/convo"
	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// classificationCatalog lists every label with a few of its trigger
// keywords, sourced from the same tables the rule passes match on so
// the fallback and the rules agree on what each label means.
var classificationCatalog = buildClassificationCatalog()

func buildClassificationCatalog() string {
	var b strings.Builder
	seen := map[string]bool{}

	add := func(intent string, triggers []string) {
		if seen[intent] {
			return
		}
		seen[intent] = true
		if len(triggers) == 0 {
			fmt.Fprintf(&b, "- %s\n", intent)
			return
		}
		if len(triggers) > 3 {
			triggers = triggers[:3]
		}
		fmt.Fprintf(&b, "- %s (%s)\n", intent, strings.Join(triggers, ", "))
	}

	for _, intent := range []string{
		models.IntentInsertExpense, models.IntentInsertIncome,
		models.IntentInsertLoan, models.IntentInsertSavings,
	} {
		add(intent, nlp.InsertVerbs[intent])
	}
	for _, rule := range nlp.QueryCategoryRules {
		add(rule.Intent, rule.Triggers)
	}
	add(models.IntentStatisticsQuery, nlp.StatisticsKeywords)
	add(models.IntentFilterQuery, []string{"trên 500k", "dưới 1 triệu", "lớn nhất"})
	add(models.IntentTimeQuery, []string{"hôm nay", "tuần này", "tháng trước"})
	add(models.IntentDetailQuery, []string{"xem chi tiết", "xem thêm"})
	add(models.IntentCalculationQuery, []string{"tính", "bằng bao nhiêu", "phần trăm"})
	add(models.IntentAnalyze, []string{"phân tích tài chính của tôi"})
	add(models.IntentAdvice, []string{"lời khuyên", "nên làm gì"})
	for _, intent := range []string{
		models.IntentGreeting, models.IntentFarewell, models.IntentBotIdentity,
		models.IntentTimeOfDay, models.IntentAuth, models.IntentSecurity, models.IntentFunny,
	} {
		add(intent, nlp.ChitChat[intent])
	}
	add(models.IntentUnknown, nil)

	return b.String()
}

// classificationPrompt asks the completion service for exactly one
// intent label from the resolver's vocabulary.
func classificationPrompt(message string) string {
	return fmt.Sprintf(`Bạn là bộ phân loại ý định cho một chatbot tài chính cá nhân tiếng Việt.
Phân loại tin nhắn sau vào đúng MỘT nhãn trong danh sách, chỉ trả về nhãn, không giải thích.
Mỗi nhãn kèm vài từ khóa tiêu biểu:

%s
Tin nhắn: "%s"
Nhãn:`, classificationCatalog, message)
}

// snapshotSummary renders the ledger totals as prompt context.
func snapshotSummary(snapshot *models.FinancialSnapshot) string {
	if snapshot == nil {
		return "Người dùng chưa có dữ liệu thu chi."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tổng thu: %s. Tổng chi: %s. Tiết kiệm: %s. Số dư khả dụng: %s.",
		nlp.FormatVND(snapshot.TotalIncome), nlp.FormatVND(snapshot.TotalExpense),
		nlp.FormatVND(snapshot.TotalSavings), nlp.FormatVND(snapshot.AvailableBalance))

	var activeLoans int64
	for i := range snapshot.Loans {
		if snapshot.Loans[i].Status == models.LoanStatusActive {
			activeLoans += snapshot.Loans[i].RemainingBalance()
		}
	}
	if activeLoans > 0 {
		fmt.Fprintf(&b, " Đang nợ: %s.", nlp.FormatVND(activeLoans))
	}
	if n := len(snapshot.Investments); n > 0 {
		fmt.Fprintf(&b, " Có %d khoản đầu tư.", n)
	}
	return b.String()
}

func analyzePrompt(snapshot *models.FinancialSnapshot, message string) string {
	return fmt.Sprintf(`Bạn là chuyên gia tài chính cá nhân thân thiện, trả lời bằng tiếng Việt.
Dữ liệu của người dùng: %s
Hãy phân tích tình hình tài chính theo yêu cầu sau, ngắn gọn trong 5 đến 7 câu, có số liệu cụ thể:
"%s"`, snapshotSummary(snapshot), message)
}

func advicePrompt(snapshot *models.FinancialSnapshot, message string) string {
	return fmt.Sprintf(`Bạn là chuyên gia tài chính cá nhân thân thiện, trả lời bằng tiếng Việt.
Dữ liệu của người dùng: %s
Hãy đưa ra 3 lời khuyên thiết thực, mỗi lời khuyên một gạch đầu dòng, cho câu hỏi:
"%s"
Không khuyến nghị mua bán mã chứng khoán cụ thể.`, snapshotSummary(snapshot), message)
}

// generalPrompt carries the rolling transcript so small talk stays
// coherent across turns.
func generalPrompt(history []convo.Message, snapshot *models.FinancialSnapshot, message string) string {
	var b strings.Builder
	b.WriteString("Bạn là trợ lý tài chính cá nhân tiếng Việt, thân thiện và ngắn gọn.\n")
	b.WriteString("Dữ liệu người dùng: ")
	b.WriteString(snapshotSummary(snapshot))
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("Hội thoại gần đây:\n")
		start := len(history) - 6
		if start < 0 {
			start = 0
		}
		for _, m := range history[start:] {
			role := "Người dùng"
			if m.Role == "bot" {
				role = "Trợ lý"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
		}
	}

	fmt.Fprintf(&b, "Người dùng: %s\nTrợ lý:", message)
	return b.String()
}
