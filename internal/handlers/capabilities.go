package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type capability struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

var capabilitiesVI = []capability{
	{
		Name:        "Ghi chép thu chi",
		Description: "Ghi khoản chi, khoản thu, tiết kiệm và khoản vay bằng tin nhắn tự nhiên.",
		Examples:    []string{"ăn sáng hết 50k", "nhận lương 15 triệu", "tôi tiết kiệm được 500k", "vay 2 triệu của anh Ba"},
	},
	{
		Name:        "Tra cứu",
		Description: "Xem lại thu chi theo thời gian, danh mục, số tiền; xem số dư và khoản nợ.",
		Examples:    []string{"chi tiêu tháng này", "khoản chi trên 500k", "tôi còn nợ bao nhiêu", "số dư của tôi"},
	},
	{
		Name:        "Tính toán",
		Description: "Tính toán số học, phần trăm, lãi suất và các câu hỏi khả năng chi tiêu.",
		Examples:    []string{"125 + 75 bằng bao nhiêu", "15% của 2 triệu", "tôi có thể chi 500k không?"},
	},
	{
		Name:        "Thống kê và phân tích",
		Description: "Tổng quan tài chính, điểm sức khỏe, xu hướng và phân tích chi tiêu.",
		Examples:    []string{"tổng quan tài chính", "phân tích chi tiêu", "chi trung bình bao nhiêu"},
	},
	{
		Name:        "Tư vấn",
		Description: "Lập kế hoạch tài chính, tư vấn đầu tư và kế hoạch trả nợ theo từng bước.",
		Examples:    []string{"lập kế hoạch tài chính", "tư vấn đầu tư", "kế hoạch trả nợ"},
	},
}

var capabilitiesEN = []capability{
	{
		Name:        "Record transactions",
		Description: "Log expenses, income, savings and loans with natural-language messages.",
		Examples:    []string{"spent 50k on breakfast", "received 15M salary"},
	},
	{
		Name:        "Look up",
		Description: "Review transactions by period, category or amount; check balance and debts.",
		Examples:    []string{"expenses this month", "how much do I owe"},
	},
	{
		Name:        "Calculate",
		Description: "Arithmetic, percentages, interest and affordability questions.",
		Examples:    []string{"125 + 75", "can I spend 500k?"},
	},
	{
		Name:        "Statistics",
		Description: "Financial overview, health score, trends and spending analysis.",
		Examples:    []string{"financial overview", "analyze my spending"},
	},
	{
		Name:        "Advisory",
		Description: "Step-by-step financial planning, investment and debt consultations.",
		Examples:    []string{"make a financial plan"},
	},
}

// HandleCapabilities lists what the bot can do, for onboarding screens.
// GET /api/capabilities?lang=vi|en
func HandleCapabilities(c *fiber.Ctx) error {
	lang := c.Query("lang", "vi")

	capabilities := capabilitiesVI
	if lang == "en" {
		capabilities = capabilitiesEN
	}

	return c.JSON(fiber.Map{
		"lang":         lang,
		"capabilities": capabilities,
	})
}
