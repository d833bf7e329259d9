package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// handleAnalyze produces a financial analysis. The completion service
// writes it when available; the statistics engine is the fallback.
func (a *Agent) handleAnalyze(ctx context.Context, userID, message string) *Response {
	snapshot := a.snapshot(ctx, userID)

	if a.completer != nil && snapshot != nil {
		reply, err := a.completer.Generate(ctx, analyzePrompt(snapshot, message), GenOptions{Temperature: 0.6, MaxTokens: 512})
		if err == nil && strings.TrimSpace(reply) != "" {
			return &Response{Message: strings.TrimSpace(reply), Intent: models.IntentAnalyze}
		}
		if err != nil {
			log.Printf("⚠️ [AGENT] analyze generation failed: %v", err)
		}
	}

	if snapshot == nil {
		return &Response{
			Message: "Mình chưa có dữ liệu để phân tích. Bạn ghi vài khoản thu chi trước nhé.",
			Intent:  models.IntentAnalyze,
		}
	}
	if answer := a.statistics.Process("tổng quan tài chính", snapshot, a.now()); answer != "" {
		return &Response{Message: answer, Intent: models.IntentAnalyze}
	}
	return &Response{Message: genericApology, Intent: models.IntentAnalyze}
}

// handleAdvice gives spending advice, LLM-written when possible with a
// rule-based fallback on the snapshot ratios.
func (a *Agent) handleAdvice(ctx context.Context, userID, message string) *Response {
	snapshot := a.snapshot(ctx, userID)

	if a.completer != nil {
		reply, err := a.completer.Generate(ctx, advicePrompt(snapshot, message), GenOptions{Temperature: 0.7, MaxTokens: 512})
		if err == nil && strings.TrimSpace(reply) != "" {
			return &Response{Message: strings.TrimSpace(reply), Intent: models.IntentAdvice}
		}
		if err != nil {
			log.Printf("⚠️ [AGENT] advice generation failed: %v", err)
		}
	}

	return &Response{Message: ruleBasedAdvice(snapshot), Intent: models.IntentAdvice}
}

func ruleBasedAdvice(snapshot *models.FinancialSnapshot) string {
	if snapshot == nil || snapshot.TotalIncome == 0 {
		return "Để mình tư vấn sát hơn, bạn hãy ghi lại thu chi vài tuần nhé. Tạm thời, quy tắc 50/30/20 là khởi điểm tốt: 50% nhu cầu thiết yếu, 30% mong muốn, 20% tiết kiệm."
	}

	var b strings.Builder
	b.WriteString("Vài gợi ý dựa trên số liệu của bạn:\n")

	spendRatio := float64(snapshot.TotalExpense) / float64(snapshot.TotalIncome) * 100
	if spendRatio > 80 {
		fmt.Fprintf(&b, "• Bạn đang chi %.0f%% thu nhập, khá cao. Thử đặt trần chi tiêu tuần và rà lại các khoản lớn nhất.\n", spendRatio)
	} else {
		fmt.Fprintf(&b, "• Bạn đang chi %.0f%% thu nhập, trong vùng an toàn. Giữ nhịp này nhé.\n", spendRatio)
	}

	saveRatio := float64(snapshot.TotalSavings) / float64(snapshot.TotalIncome) * 100
	if saveRatio < 10 {
		b.WriteString("• Tỷ lệ tiết kiệm còn thấp. Để dành ngay khi nhận thu nhập, đừng đợi cuối tháng còn bao nhiêu mới tiết kiệm.\n")
	} else {
		fmt.Fprintf(&b, "• Bạn đang tiết kiệm %.0f%% thu nhập, rất đáng khen!\n", saveRatio)
	}

	b.WriteString("• Duy trì quỹ dự phòng bằng 3 đến 6 tháng chi tiêu trước khi nghĩ đến đầu tư rủi ro cao.")
	return b.String()
}

// handleUnknown is the end of the rule list. It tries, in order, a bare
// category clarification, a guided-flow suggestion, free-form LLM
// conversation, and finally a canned help message.
func (a *Agent) handleUnknown(ctx context.Context, userID, message string) *Response {
	if category := matchedFunnelCategory(message); category != "" && !nlp.HasAmount(message) {
		return &Response{
			Message: fmt.Sprintf(
				"Bạn muốn xem lại các khoản %s hay ghi một khoản mới? Ví dụ: \"xem chi tiêu %s tháng này\" hoặc \"%s hết 50k\".",
				category, strings.ToLower(category), strings.ToLower(category)),
			Intent: models.IntentUnknown,
		}
	}

	if a.completer != nil {
		state := a.contexts.Get(userID)
		prompt := generalPrompt(state.History, a.snapshot(ctx, userID), message)
		reply, err := a.completer.Generate(ctx, prompt, GenOptions{Temperature: 0.7, MaxTokens: 512})
		if err == nil && strings.TrimSpace(reply) != "" {
			return &Response{Message: strings.TrimSpace(reply), Intent: models.IntentUnknown}
		}
		if err != nil {
			log.Printf("⚠️ [AGENT] general conversation failed: %v", err)
		}
	}

	return &Response{
		Message: "Mình chưa hiểu ý bạn lắm. Mình có thể giúp bạn:\n" +
			"• Ghi thu chi: \"ăn sáng hết 30k\", \"nhận lương 15 triệu\"\n" +
			"• Xem lại: \"chi tiêu tháng này\", \"tôi còn nợ bao nhiêu\"\n" +
			"• Phân tích: \"tổng quan tài chính\", \"phân tích chi tiêu\"",
		Intent: models.IntentUnknown,
	}
}

// handleAIDirect bypasses the resolver and hands the message straight
// to the completion service with the transcript as context.
func (a *Agent) handleAIDirect(ctx context.Context, userID, message string) *Response {
	if a.completer == nil {
		return &Response{
			Message: "Chế độ AI đang tạm tắt. Bạn vẫn có thể dùng các lệnh thường như \"xem chi tiêu tháng này\" nhé.",
			Intent:  models.IntentUnknown,
		}
	}

	state := a.contexts.Get(userID)
	prompt := generalPrompt(state.History, a.snapshot(ctx, userID), message)
	reply, err := a.completer.Generate(ctx, prompt, GenOptions{Temperature: 0.7, MaxTokens: 800})
	if err != nil {
		log.Printf("⚠️ [AGENT] AI mode generation failed: %v", err)
		return &Response{Message: genericApology, Intent: models.IntentUnknown}
	}
	return &Response{Message: strings.TrimSpace(reply), Intent: models.IntentUnknown}
}
