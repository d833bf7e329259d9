package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// handleCalculation runs the two-engine cascade. The snapshot is only
// loaded when the financial engine wins.
func (a *Agent) handleCalculation(ctx context.Context, userID, message string) *Response {
	result := a.coordinator.DetectCalculationType(message)
	if !result.IsCalculation {
		return a.handleCalculationResidue(ctx, userID, message)
	}

	var snapshot *models.FinancialSnapshot
	if result.Category == "financial" {
		snapshot = a.snapshot(ctx, userID)
	}

	return &Response{
		Message: a.coordinator.ProcessCalculation(message, result.Category, snapshot),
		Intent:  result.Intent,
	}
}

// handleCalculationResidue serves calculation-ish wording that cleared
// neither engine threshold. The general engine still gets one shot at
// an embedded expression before giving up with guidance.
func (a *Agent) handleCalculationResidue(_ context.Context, _, message string) *Response {
	result := a.coordinator.DetectCalculationType(message)
	if result.IsCalculation {
		return &Response{
			Message: a.coordinator.ProcessCalculation(message, result.Category, nil),
			Intent:  models.IntentCalculationQuery,
		}
	}

	return &Response{
		Message: "Bạn muốn tính gì nhỉ? Mình tính được phép tính thường (\"125 + 75 x 2\") và câu hỏi tài chính (\"tôi có thể chi 500k không?\").",
		Intent:  models.IntentCalculationQuery,
	}
}

// handleStatistics runs the statistics engine; when the engine declines
// the message, a plain totals summary is still better than nothing.
func (a *Agent) handleStatistics(ctx context.Context, userID, message string) *Response {
	snapshot := a.snapshot(ctx, userID)
	if snapshot == nil {
		return &Response{
			Message: "Mình chưa có dữ liệu thu chi của bạn để thống kê. Bạn ghi vài giao dịch trước nhé.",
			Intent:  models.IntentStatisticsQuery,
		}
	}

	if answer := a.statistics.Process(message, snapshot, a.now()); answer != "" {
		return &Response{Message: answer, Intent: models.IntentStatisticsQuery}
	}

	answer := fmt.Sprintf(
		"Tóm tắt nhanh: tổng thu %s, tổng chi %s, còn lại %s. Bạn hỏi \"phân tích chi tiêu\" hoặc \"tổng quan tài chính\" để xem sâu hơn nhé.",
		nlp.FormatVND(snapshot.TotalIncome), nlp.FormatVND(snapshot.TotalExpense), nlp.FormatVND(snapshot.NetBalance))
	return &Response{Message: answer, Intent: models.IntentStatisticsQuery}
}

var (
	symbolRegex = regexp.MustCompile(`\b([a-z]{3})\b`)

	// short Vietnamese words that would otherwise look like tickers
	symbolStopwords = map[string]bool{
		"gia": true, "bao": true, "nhi": true, "cua": true, "toi": true,
		"ban": true, "hom": true, "nay": true, "xem": true, "nao": true,
		"cho": true, "hoi": true, "gio": true, "the": true, "dang": true,
	}
)

func extractSymbol(message string) string {
	for _, match := range symbolRegex.FindAllStringSubmatch(nlp.Fold(message), -1) {
		if !symbolStopwords[match[1]] {
			return strings.ToUpper(match[1])
		}
	}
	return ""
}

// handleStock answers ticker price lookups. Provider failures degrade
// to an apologetic answer, never an error.
func (a *Agent) handleStock(ctx context.Context, _, message string) *Response {
	symbol := extractSymbol(message)
	if symbol == "" {
		return &Response{
			Message: "Bạn muốn xem giá mã nào? Nhắn kèm mã 3 chữ cái nhé, ví dụ: \"giá cổ phiếu FPT\".",
			Intent:  models.IntentStockQuery,
		}
	}

	if a.stocks == nil {
		return &Response{
			Message: fmt.Sprintf("Tính năng tra giá cổ phiếu đang tạm tắt nên mình chưa xem được mã %s.", symbol),
			Intent:  models.IntentStockQuery,
		}
	}

	quote := a.stocks.GetPrice(ctx, symbol)
	if quote.Error != "" {
		return &Response{
			Message: fmt.Sprintf("Mình chưa lấy được giá mã %s lúc này. Bạn thử lại sau ít phút nhé.", symbol),
			Intent:  models.IntentStockQuery,
		}
	}

	message = fmt.Sprintf("Giá %s hiện tại: %s VND", quote.Symbol, nlp.FormatNumber(quote.Price))
	if quote.ChangePercent != 0 {
		direction := "tăng"
		change := quote.ChangePercent
		if change < 0 {
			direction = "giảm"
			change = -change
		}
		message += fmt.Sprintf(" (%s %.2f%% trong phiên)", direction, change)
	}
	return &Response{Message: message + ".", Intent: models.IntentStockQuery}
}
