package nlp

// Literal trigger-phrase tables shared by every detector. These are data,
// not logic: the dispatcher, the funnel analyzer and the calculation
// engines all match against the same canonical tables. All matching is
// diacritics-insensitive (see Fold), so terms are written in their natural
// accented form.

// TimePeriods maps a named period to its trigger phrases.
var TimePeriods = map[string][]string{
	"today":      {"hôm nay", "trong ngày", "ngày hôm nay", "today"},
	"yesterday":  {"hôm qua", "ngày hôm qua", "yesterday"},
	"this_week":  {"tuần này", "trong tuần", "tuần nay", "this week"},
	"last_week":  {"tuần trước", "tuần rồi", "tuần vừa rồi", "last week"},
	"this_month": {"tháng này", "trong tháng", "tháng nay", "this month"},
	"last_month": {"tháng trước", "tháng rồi", "tháng vừa rồi", "last month"},
	"this_year":  {"năm này", "năm nay", "trong năm", "this year"},
	"last_year":  {"năm trước", "năm ngoái", "năm rồi", "last year"},
}

// timePeriodOrder fixes evaluation order so that the more specific "last_*"
// phrases are tested before the "this_*" phrases that share words.
var TimePeriodOrder = []string{
	"yesterday", "last_week", "last_month", "last_year",
	"today", "this_week", "this_month", "this_year",
}

// ComparisonOperators maps operator names to their cue phrases.
// max/min are extremum phrasings with no literal number; greater/less
// expect a trailing amount.
var ComparisonOperators = map[string][]string{
	"max":     {"cao nhất", "lớn nhất", "nhiều nhất", "đắt nhất", "max", "highest", "largest"},
	"min":     {"thấp nhất", "nhỏ nhất", "ít nhất", "rẻ nhất", "min", "lowest", "smallest"},
	"greater": {"trên", "lớn hơn", "cao hơn", "nhiều hơn", "above", "greater than", "more than", "over"},
	"less":    {"dưới", "nhỏ hơn", "thấp hơn", "ít hơn", "below", "less than", "under"},
}

// AggregationVerbs maps an aggregation operator to its trigger phrases.
var AggregationVerbs = map[string][]string{
	"sum":               {"tổng cộng", "tổng", "tất cả bao nhiêu", "hết bao nhiêu", "total", "sum"},
	"average":           {"trung bình", "bình quân", "average", "avg"},
	"count":             {"bao nhiêu khoản", "bao nhiêu lần", "mấy khoản", "số lượng", "đếm", "count", "how many"},
	"max":               {"cao nhất", "lớn nhất", "nhiều nhất", "max"},
	"min":               {"thấp nhất", "nhỏ nhất", "ít nhất", "min"},
	"group_by_month":    {"theo tháng", "từng tháng", "mỗi tháng", "by month"},
	"group_by_category": {"theo danh mục", "theo loại", "từng loại", "by category"},
}

// AggregationOrder: multi-word group-by phrases are tested before the
// plain aggregations so "tổng theo tháng" resolves to group_by_month.
var AggregationOrder = []string{
	"group_by_month", "group_by_category", "average", "count", "max", "min", "sum",
}

// SortVerbs maps a sort key to its trigger phrases.
var SortVerbs = map[string][]string{
	"recent":      {"gần đây", "mới nhất", "gần nhất", "vừa rồi", "recent", "latest", "newest"},
	"oldest":      {"cũ nhất", "đầu tiên", "lâu nhất", "oldest", "first"},
	"amount_desc": {"giảm dần", "từ cao xuống thấp", "cao đến thấp", "descending"},
	"amount_asc":  {"tăng dần", "từ thấp lên cao", "thấp đến cao", "ascending"},
	"name":        {"theo tên", "theo mô tả", "by name"},
}

// DataTypeSynonyms maps the advanced-filter data types to their
// Vietnamese/English synonym lists.
var DataTypeSynonyms = map[string][]string{
	"expense": {"chi tiêu", "khoản chi", "chi phí", "tiêu", "mua sắm", "expense", "spending"},
	"income":  {"thu nhập", "khoản thu", "tiền lương", "lương", "income", "salary"},
	"loan":    {"khoản vay", "vay", "nợ", "khoản nợ", "loan", "debt"},
}

// InsertVerbs maps an insert intent to the verb phrases that signal it.
// Savings is tested first by the resolver; a message that also mentions
// "ngân hàng" is a bank-savings investment, not a plain savings event.
var InsertVerbs = map[string][]string{
	"insert_savings": {"tiết kiệm được", "để dành được", "tiết kiệm", "để dành", "bỏ ống", "gửi tiết kiệm"},
	"insert_income":  {"nhận lương", "được trả", "nhận được", "kiếm được", "thu nhập", "được thưởng", "lương về", "thu về"},
	"insert_expense": {"chi", "tiêu", "mua", "trả tiền", "thanh toán", "tốn", "mất", "đóng tiền", "hết"},
	"insert_loan":    {"vay", "mượn", "nợ", "cho vay", "cho mượn"},
}

// CalculationKeywords feed the coordinator's conflict resolution: if a
// message matches exactly one priority set, that engine wins the tie.
var (
	FinancialPriorityKeywords = []string{
		"số dư", "còn lại bao nhiêu", "còn bao nhiêu", "đủ tiền", "đủ để",
		"có thể chi", "thiếu bao nhiêu", "thiếu hụt", "khả năng chi",
		"sau khi chi", "nếu chi", "afford", "balance",
	}
	GeneralPriorityKeywords = []string{
		"cộng", "trừ", "nhân", "chia", "phần trăm", "phan tram",
		"bằng bao nhiêu", "kết quả", "tính giúp", "lãi suất",
		"percent", "calculate", "equals",
	}
)

// StatisticsKeywords trigger the statistics engine from the dispatcher.
var StatisticsKeywords = []string{
	"thống kê", "phân tích", "báo cáo", "tổng quan", "xu hướng",
	"trung bình", "so sánh", "tình hình tài chính", "sức khỏe tài chính",
	"statistics", "analyze", "overview", "trend",
}

// ChitChat maps a conversational intent to its trigger phrases.
var ChitChat = map[string][]string{
	"greeting":     {"xin chào", "chào bạn", "chào buổi sáng", "chào buổi tối", "hello", "hi bot", "alo"},
	"farewell":     {"tạm biệt", "hẹn gặp lại", "ngủ ngon", "bye", "goodbye"},
	"bot_identity": {"bạn là ai", "mày là ai", "bạn tên gì", "ai tạo ra bạn", "who are you"},
	"time_of_day":  {"mấy giờ rồi", "bây giờ là mấy giờ", "hôm nay ngày mấy", "hôm nay thứ mấy", "what time"},
	"auth":         {"đăng nhập", "đăng ký", "đăng xuất", "mật khẩu", "tài khoản của tôi", "login", "logout"},
	"security":     {"bảo mật", "an toàn không", "dữ liệu của tôi", "thông tin cá nhân", "privacy"},
	"funny":        {"kể chuyện cười", "nói gì vui", "buồn quá", "chán quá", "haha", "hihi"},
}

// QueryCategoryRule maps category keywords to a query intent for the
// second keyword pass that runs after the calculation/LLM cascade. Order
// matters: specific phrasings (bank savings, loan sub-states) must win
// over the generic terms they contain.
type QueryCategoryRule struct {
	Intent   string
	Triggers []string
}

// QueryCategoryRules is evaluated top to bottom, first match wins.
var QueryCategoryRules = []QueryCategoryRule{
	{"savings_query", []string{"tiết kiệm ngân hàng", "gửi ngân hàng", "sổ tiết kiệm"}},
	{"loan_overdue_query", []string{"nợ quá hạn", "vay quá hạn", "quá hạn"}},
	{"loan_paid_query", []string{"nợ đã trả", "đã trả nợ", "vay đã trả", "đã thanh toán nợ"}},
	{"loan_remaining_query", []string{"nợ còn lại", "còn nợ bao nhiêu", "còn lại bao nhiêu nợ", "dư nợ"}},
	{"loan_query", []string{"khoản vay", "vay", "nợ", "loan", "debt"}},
	{"stock_query", []string{"cổ phiếu", "chứng khoán", "mã cổ phiếu", "stock"}},
	{"gold_query", []string{"vàng", "giá vàng", "gold"}},
	{"realestate_query", []string{"bất động sản", "nhà đất", "đất đai", "real estate"}},
	{"savings_income_query", []string{"tiền tiết kiệm", "tiết kiệm được bao nhiêu", "tiết kiệm"}},
	{"investment_query", []string{"đầu tư", "khoản đầu tư", "danh mục đầu tư", "investment"}},
	{"balance_query", []string{"số dư", "còn bao nhiêu tiền", "tài chính của tôi", "balance"}},
	{"income_query", []string{"thu nhập", "khoản thu", "lương", "income"}},
	{"expense_query", []string{"chi tiêu", "khoản chi", "chi phí", "đã tiêu", "expense"}},
}

// StockSymbolPattern terms signal a ticker lookup ("giá cổ phiếu VNM").
var StockQueryTriggers = []string{"giá cổ phiếu", "giá chứng khoán", "mã", "stock price"}
