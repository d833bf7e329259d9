package agent

import (
	"context"
	"fmt"
	"strings"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// Guided flows walk the user through a short scripted questionnaire.
// While a flow is active it consumes every message, so an escape phrase
// is always honored first.
const (
	flowFinancialPlanning      = "financial_planning"
	flowInvestmentConsultation = "investment_consultation"
	flowDebtManagement         = "debt_management"
)

type flowStep struct {
	key      string
	question string
}

type guidedFlow struct {
	intro string
	steps []flowStep
}

var guidedFlows = map[string]guidedFlow{
	flowFinancialPlanning: {
		intro: "Ok, mình cùng lập kế hoạch tài chính nhé. Bạn có thể nhắn \"thôi\" bất cứ lúc nào để dừng.",
		steps: []flowStep{
			{"goal", "Mục tiêu tài chính lớn nhất của bạn trong 12 tháng tới là gì?"},
			{"income", "Thu nhập hàng tháng của bạn khoảng bao nhiêu?"},
			{"save_percent", "Mỗi tháng bạn muốn để dành khoảng bao nhiêu phần trăm thu nhập?"},
		},
	},
	flowInvestmentConsultation: {
		intro: "Mình hỏi bạn vài câu để tư vấn đầu tư phù hợp nhé. Nhắn \"thôi\" nếu muốn dừng.",
		steps: []flowStep{
			{"budget", "Bạn dự định đầu tư khoảng bao nhiêu tiền?"},
			{"horizon", "Bạn muốn đầu tư trong bao lâu? (dưới 1 năm, 1 đến 3 năm, hay trên 3 năm)"},
			{"risk", "Khẩu vị rủi ro của bạn thế nào? (an toàn, cân bằng, hay mạo hiểm)"},
		},
	},
	flowDebtManagement: {
		intro: "Mình cùng xem lại các khoản nợ của bạn nhé. Nhắn \"thôi\" nếu muốn dừng.",
		steps: []flowStep{
			{"monthly_budget", "Mỗi tháng bạn có thể dành ra bao nhiêu tiền để trả nợ?"},
			{"priority", "Bạn muốn ưu tiên trả khoản lãi cao nhất hay khoản nhỏ nhất trước?"},
		},
	},
}

// flowTriggers start a flow from an otherwise-unresolved message.
var flowTriggers = map[string][]string{
	flowFinancialPlanning:      {"lập kế hoạch", "kế hoạch tài chính", "lên kế hoạch"},
	flowInvestmentConsultation: {"tư vấn đầu tư", "nên đầu tư gì", "đầu tư thế nào", "đầu tư vào đâu"},
	flowDebtManagement:         {"quản lý nợ", "kế hoạch trả nợ", "trả nợ thế nào", "trả nợ sao"},
}

var flowEscapes = []string{"thôi", "dừng", "dừng lại", "hủy", "cancel", "stop"}

func matchedFlow(message string) string {
	for _, name := range []string{flowFinancialPlanning, flowInvestmentConsultation, flowDebtManagement} {
		if _, ok := nlp.ContainsAny(message, flowTriggers[name]); ok {
			return name
		}
	}
	return ""
}

func (a *Agent) startFlow(userID, name string) *Response {
	flow := guidedFlows[name]
	a.contexts.StartFlow(userID, name)
	return &Response{
		Message: flow.intro + "\n" + flow.steps[0].question,
		Intent:  name,
	}
}

// handleFlowStep records the answer to the current step and either asks
// the next question or wraps the flow up.
func (a *Agent) handleFlowStep(ctx context.Context, userID, message string) *Response {
	state := a.contexts.Get(userID)
	flow, ok := guidedFlows[state.CurrentFlow]
	if !ok || state.CurrentStep >= len(flow.steps) {
		a.contexts.EndFlow(userID)
		return a.resolve(ctx, userID, message)
	}

	if _, escaped := nlp.ContainsAny(message, flowEscapes); escaped {
		a.contexts.EndFlow(userID)
		return &Response{
			Message: "Ok, mình dừng ở đây. Khi nào muốn tiếp tục bạn cứ nhắn mình nhé!",
			Intent:  state.CurrentFlow,
		}
	}

	step := flow.steps[state.CurrentStep]
	a.contexts.AdvanceFlow(userID, step.key, message)

	if next := state.CurrentStep + 1; next < len(flow.steps) {
		return &Response{Message: flow.steps[next].question, Intent: state.CurrentFlow}
	}

	data := a.contexts.Get(userID).FlowData
	a.contexts.EndFlow(userID)
	return a.finishFlow(ctx, userID, state.CurrentFlow, data)
}

func (a *Agent) finishFlow(ctx context.Context, userID, name string, data map[string]string) *Response {
	switch name {
	case flowFinancialPlanning:
		return &Response{Message: planningSummary(data), Intent: name}
	case flowInvestmentConsultation:
		return &Response{Message: investmentSummary(data), Intent: name}
	case flowDebtManagement:
		return a.debtSummary(ctx, userID, data)
	}
	return &Response{Message: "Cảm ơn bạn đã chia sẻ!", Intent: name}
}

func planningSummary(data map[string]string) string {
	var b strings.Builder
	b.WriteString("Kế hoạch gợi ý cho bạn:\n")
	if goal := data["goal"]; goal != "" {
		fmt.Fprintf(&b, "• Mục tiêu: %s\n", goal)
	}

	income := nlp.ParseAmount(data["income"])
	percent := parsePercent(data["save_percent"])
	if income > 0 && percent > 0 {
		monthly := income * int64(percent) / 100
		fmt.Fprintf(&b, "• Mỗi tháng để dành %s (%d%% của %s), một năm bạn sẽ có %s.\n",
			nlp.FormatVND(monthly), percent, nlp.FormatVND(income), nlp.FormatVND(monthly*12))
	} else {
		b.WriteString("• Quy tắc 50/30/20 là khởi điểm tốt: 50% nhu cầu thiết yếu, 30% mong muốn, 20% tiết kiệm.\n")
	}
	b.WriteString("Bạn nhắn \"tôi tiết kiệm được ...\" mỗi khi để dành được tiền để mình theo dõi giúp nhé!")
	return b.String()
}

func parsePercent(answer string) int {
	percent := 0
	for _, r := range answer {
		if r >= '0' && r <= '9' {
			percent = percent*10 + int(r-'0')
			if percent > 100 {
				return 0
			}
		} else if percent > 0 {
			break
		}
	}
	return percent
}

func investmentSummary(data map[string]string) string {
	budget := nlp.ParseAmount(data["budget"])

	risk := "cân bằng"
	if _, ok := nlp.ContainsAny(data["risk"], []string{"an toàn", "thấp", "safe"}); ok {
		risk = "an toàn"
	} else if _, ok := nlp.ContainsAny(data["risk"], []string{"mạo hiểm", "cao", "rủi ro cao"}); ok {
		risk = "mạo hiểm"
	}

	var b strings.Builder
	b.WriteString("Gợi ý phân bổ cho bạn:\n")
	switch risk {
	case "an toàn":
		b.WriteString("• 70% gửi tiết kiệm ngân hàng, 20% trái phiếu, 10% vàng.\n")
	case "mạo hiểm":
		b.WriteString("• 60% cổ phiếu, 20% quỹ mở, 20% tiết kiệm làm đệm an toàn.\n")
	default:
		b.WriteString("• 40% gửi tiết kiệm, 30% quỹ mở hoặc cổ phiếu, 20% vàng, 10% dự phòng.\n")
	}
	if budget > 0 {
		fmt.Fprintf(&b, "• Với %s, bạn nên chia nhỏ và giải ngân dần thay vì vào một lần.\n", nlp.FormatVND(budget))
	}
	b.WriteString("Lưu ý đây chỉ là gợi ý tham khảo, không phải khuyến nghị đầu tư.")
	return b.String()
}

func (a *Agent) debtSummary(ctx context.Context, userID string, data map[string]string) *Response {
	budget := nlp.ParseAmount(data["monthly_budget"])

	var b strings.Builder
	loans, err := a.ledger.Loans(ctx, userID, models.LoanStatusActive)
	if err == nil && len(loans) > 0 {
		var totalRemaining int64
		for i := range loans {
			totalRemaining += loans[i].RemainingBalance()
		}
		fmt.Fprintf(&b, "Bạn đang nợ tổng cộng %s trên %d khoản.\n", nlp.FormatVND(totalRemaining), len(loans))
		if budget > 0 {
			months := (totalRemaining + budget - 1) / budget
			fmt.Fprintf(&b, "Với %s mỗi tháng, bạn sẽ trả xong trong khoảng %d tháng (chưa tính lãi).\n",
				nlp.FormatVND(budget), months)
		}
	} else {
		b.WriteString("Hiện mình không thấy khoản vay đang hoạt động nào của bạn.\n")
	}

	if _, smallestFirst := nlp.ContainsAny(data["priority"], []string{"nhỏ nhất", "nhỏ trước"}); smallestFirst {
		b.WriteString("Chiến lược trả khoản nhỏ nhất trước giúp bạn có động lực sớm. Trả xong khoản nào, dồn tiền đó sang khoản kế tiếp nhé.")
	} else {
		b.WriteString("Ưu tiên khoản lãi suất cao nhất trước sẽ tiết kiệm tiền lãi nhất. Trả tối thiểu các khoản còn lại và dồn phần dư vào khoản đắt nhất.")
	}

	return &Response{Message: b.String(), Intent: flowDebtManagement}
}
