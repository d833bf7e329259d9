package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// Engine answers statistical questions over the full ledger snapshot:
// averages with extrapolation, income-vs-expense comparison, an overall
// health overview and a spending pattern breakdown. All analyses are
// computed in memory from the snapshot slices.
type Engine struct{}

// Statistics subtypes
const (
	SubtypeOverview   = "overview"
	SubtypeAverage    = "average"
	SubtypeComparison = "comparison"
	SubtypeSpending   = "spending"
)

// Detection threshold. Statistics cues are weak signals on purpose: the
// dispatcher only reaches this engine after the stronger branches
// declined, so a low bar is safe.
const statsThreshold = 0.3

const (
	weightStatsKeyword = 0.3
	weightSubtypeCue   = 0.3
	weightDataType     = 0.2
	weightTimePeriod   = 0.1
)

var (
	overviewCues   = []string{"tổng quan", "tình hình tài chính", "sức khỏe tài chính", "báo cáo tài chính", "báo cáo", "overview"}
	averageCues    = []string{"trung bình", "bình quân", "average"}
	comparisonCues = []string{"so sánh", "thu so với chi", "so với", "compare"}
	spendingCues   = []string{"phân tích chi tiêu", "thống kê chi tiêu", "xu hướng", "phân tích", "thống kê", "trend"}
)

// Detection is the engine's verdict on a message.
type Detection struct {
	Matches    bool
	Confidence float64
	Subtype    string
}

// Detect blends four weak cues into a confidence and picks the most
// specific subtype that matched.
func (e *Engine) Detect(message string) Detection {
	_, hasStatsKeyword := nlp.ContainsAny(message, nlp.StatisticsKeywords)

	subtype := ""
	for _, candidate := range []struct {
		name string
		cues []string
	}{
		{SubtypeOverview, overviewCues},
		{SubtypeComparison, comparisonCues},
		{SubtypeAverage, averageCues},
		{SubtypeSpending, spendingCues},
	} {
		if _, ok := nlp.ContainsAny(message, candidate.cues); ok {
			subtype = candidate.name
			break
		}
	}

	hasDataType := false
	for _, synonyms := range nlp.DataTypeSynonyms {
		if _, ok := nlp.ContainsAny(message, synonyms); ok {
			hasDataType = true
			break
		}
	}

	hasPeriod := false
	for _, period := range nlp.TimePeriodOrder {
		if _, ok := nlp.ContainsAny(message, nlp.TimePeriods[period]); ok {
			hasPeriod = true
			break
		}
	}

	confidence := 0.0
	if hasStatsKeyword {
		confidence += weightStatsKeyword
	}
	if subtype != "" {
		confidence += weightSubtypeCue
	}
	if hasDataType {
		confidence += weightDataType
	}
	if hasPeriod {
		confidence += weightTimePeriod
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	if subtype == "" {
		subtype = SubtypeOverview
	}

	return Detection{
		Matches:    confidence >= statsThreshold,
		Confidence: confidence,
		Subtype:    subtype,
	}
}

// Process renders the analysis for the detected subtype.
func (e *Engine) Process(message string, snapshot *models.FinancialSnapshot, now time.Time) string {
	if snapshot == nil {
		return "Mình chưa có dữ liệu để thống kê. Bạn thêm vài khoản thu chi trước nhé."
	}

	detection := e.Detect(message)
	switch detection.Subtype {
	case SubtypeAverage:
		return e.renderAverage(snapshot)
	case SubtypeComparison:
		return e.renderComparison(snapshot)
	case SubtypeSpending:
		return e.renderSpending(snapshot)
	}
	return e.renderOverview(snapshot)
}

// renderAverage reports the per-transaction average, a daily average
// extrapolated to week and month, and a recent-vs-early trend delta over
// the last 10 versus first 10 transactions.
func (e *Engine) renderAverage(snapshot *models.FinancialSnapshot) string {
	expenses := sortedByDate(snapshot.Expenses)
	if len(expenses) == 0 {
		return "Bạn chưa có khoản chi nào để tính trung bình."
	}

	var total int64
	for _, entry := range expenses {
		total += entry.Amount
	}
	perEntry := total / int64(len(expenses))

	spanDays := int64(expenses[len(expenses)-1].Date.Sub(expenses[0].Date).Hours()/24) + 1
	if spanDays < 1 {
		spanDays = 1
	}
	perDay := total / spanDays

	var b strings.Builder
	b.WriteString("Trung bình chi tiêu của bạn:\n")
	fmt.Fprintf(&b, "- Mỗi khoản: %s (trên %d khoản)\n", nlp.FormatVND(perEntry), len(expenses))
	fmt.Fprintf(&b, "- Mỗi ngày: %s\n", nlp.FormatVND(perDay))
	fmt.Fprintf(&b, "- Ước tính mỗi tuần: %s\n", nlp.FormatVND(perDay*7))
	fmt.Fprintf(&b, "- Ước tính mỗi tháng: %s", nlp.FormatVND(perDay*30))

	if trend := trendDelta(expenses); trend != "" {
		b.WriteString("\n")
		b.WriteString(trend)
	}
	return b.String()
}

// trendDelta compares the average of the last 10 transactions against
// the first 10. With fewer than 20 entries the windows would overlap, so
// the line is omitted.
func trendDelta(sorted []models.Entry) string {
	if len(sorted) < 20 {
		return ""
	}

	var early, recent int64
	for _, entry := range sorted[:10] {
		early += entry.Amount
	}
	for _, entry := range sorted[len(sorted)-10:] {
		recent += entry.Amount
	}
	early /= 10
	recent /= 10

	if early == 0 {
		return ""
	}
	percent := float64(recent-early) / float64(early) * 100
	if percent >= 0 {
		return fmt.Sprintf("Xu hướng: 10 khoản gần nhất cao hơn 10 khoản đầu %.1f%%.", percent)
	}
	return fmt.Sprintf("Xu hướng: 10 khoản gần nhất thấp hơn 10 khoản đầu %.1f%%.", -percent)
}

// renderComparison reports the income-vs-expense ratio and the top 3
// expense categories.
func (e *Engine) renderComparison(snapshot *models.FinancialSnapshot) string {
	if snapshot.TotalIncome == 0 && snapshot.TotalExpense == 0 {
		return "Bạn chưa có dữ liệu thu chi để so sánh."
	}

	var b strings.Builder
	b.WriteString("So sánh thu chi:\n")
	fmt.Fprintf(&b, "- Tổng thu: %s\n", nlp.FormatVND(snapshot.TotalIncome))
	fmt.Fprintf(&b, "- Tổng chi: %s\n", nlp.FormatVND(snapshot.TotalExpense))

	if snapshot.TotalIncome > 0 {
		ratio := float64(snapshot.TotalExpense) / float64(snapshot.TotalIncome) * 100
		fmt.Fprintf(&b, "- Bạn đang chi %.1f%% thu nhập\n", ratio)
	}

	ranked := rankCategories(snapshot.Expenses)
	if len(ranked) > 0 {
		b.WriteString("Top nhóm chi lớn nhất:\n")
		for i, ct := range ranked {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, ct.name, nlp.FormatVND(ct.total))
		}
	}

	if snapshot.TotalIncome > snapshot.TotalExpense {
		b.WriteString("Bạn đang thu nhiều hơn chi, tốt lắm!")
	} else {
		b.WriteString("Bạn đang chi nhiều hơn thu, cân nhắc cắt giảm nhé.")
	}
	return b.String()
}

type categoryTotal struct {
	name  string
	total int64
}

func rankCategories(expenses []models.Entry) []categoryTotal {
	totals := map[string]int64{}
	for _, entry := range expenses {
		category := entry.Category
		if category == "" {
			category = "Khác"
		}
		totals[category] += entry.Amount
	}

	ranked := make([]categoryTotal, 0, len(totals))
	for name, total := range totals {
		ranked = append(ranked, categoryTotal{name, total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}

// renderSpending breaks expenses down by category with percentages, the
// busiest weekday, the typical amount band and the top 5 largest items.
func (e *Engine) renderSpending(snapshot *models.FinancialSnapshot) string {
	if len(snapshot.Expenses) == 0 {
		return "Bạn chưa có khoản chi nào để phân tích."
	}

	var grand int64
	for _, entry := range snapshot.Expenses {
		grand += entry.Amount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phân tích chi tiêu (tổng %s):\n", nlp.FormatVND(grand))

	ranked := rankCategories(snapshot.Expenses)
	for i, ct := range ranked {
		if i == 5 {
			break
		}
		percent := float64(ct.total) / float64(grand) * 100
		fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", ct.name, nlp.FormatVND(ct.total), percent)
	}

	if weekday := busiestWeekday(snapshot.Expenses); weekday != "" {
		fmt.Fprintf(&b, "Ngày chi nhiều nhất trong tuần: %s\n", weekday)
	}

	if low, high, ok := typicalBand(snapshot.Expenses); ok {
		fmt.Fprintf(&b, "Phần lớn các khoản chi nằm trong khoảng %s đến %s\n",
			nlp.FormatVND(low), nlp.FormatVND(high))
	}

	largest := sortedByAmountDesc(snapshot.Expenses)
	b.WriteString("Các khoản chi lớn nhất:\n")
	for i, entry := range largest {
		if i == 5 {
			break
		}
		description := entry.Description
		if description == "" {
			description = entry.Category
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, description, nlp.FormatVND(entry.Amount))
	}

	b.WriteString(spendingAdvice(ranked[0].name, float64(ranked[0].total)/float64(grand)*100))
	return b.String()
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Thứ hai",
	time.Tuesday:   "Thứ ba",
	time.Wednesday: "Thứ tư",
	time.Thursday:  "Thứ năm",
	time.Friday:    "Thứ sáu",
	time.Saturday:  "Thứ bảy",
	time.Sunday:    "Chủ nhật",
}

func busiestWeekday(expenses []models.Entry) string {
	totals := map[time.Weekday]int64{}
	for _, entry := range expenses {
		if entry.Date.IsZero() {
			continue
		}
		totals[entry.Date.Weekday()] += entry.Amount
	}
	if len(totals) == 0 {
		return ""
	}

	best := time.Monday
	var bestTotal int64 = -1
	for day := time.Sunday; day <= time.Saturday; day++ {
		if total, ok := totals[day]; ok && total > bestTotal {
			best = day
			bestTotal = total
		}
	}
	return weekdayNames[best]
}

// typicalBand returns the interquartile amount range.
func typicalBand(expenses []models.Entry) (low, high int64, ok bool) {
	if len(expenses) < 4 {
		return 0, 0, false
	}

	amounts := make([]int64, len(expenses))
	for i, entry := range expenses {
		amounts[i] = entry.Amount
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })

	return amounts[len(amounts)/4], amounts[len(amounts)*3/4], true
}

func sortedByDate(entries []models.Entry) []models.Entry {
	sorted := make([]models.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}

func sortedByAmountDesc(entries []models.Entry) []models.Entry {
	sorted := make([]models.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })
	return sorted
}

func spendingAdvice(topCategory string, topPercent float64) string {
	if topPercent >= 50 {
		return fmt.Sprintf("Nhóm %q chiếm hơn nửa chi tiêu của bạn, cân nhắc cắt giảm nhé.", topCategory)
	}
	return fmt.Sprintf("Nhóm chi lớn nhất của bạn là %q.", topCategory)
}

// Health score components. Base 50, capped at 100.
const (
	healthBase            = 50
	healthPositiveBalance = 20
	healthSavingsHigh     = 15 // savings rate >= 20% of income
	healthSavingsMedium   = 10 // savings rate >= 10%
	healthHasInvestments  = 10
	healthLowDebt         = 5 // active loan balance < 30% of income
)

// HealthScore computes the 0-100 financial health score.
func HealthScore(snapshot *models.FinancialSnapshot) int {
	score := healthBase

	if snapshot.TotalIncome > snapshot.TotalExpense {
		score += healthPositiveBalance
	}

	if snapshot.TotalIncome > 0 {
		savingsRate := float64(snapshot.TotalSavings) / float64(snapshot.TotalIncome)
		if savingsRate >= 0.20 {
			score += healthSavingsHigh
		} else if savingsRate >= 0.10 {
			score += healthSavingsMedium
		}
	}

	if len(snapshot.Investments) > 0 {
		score += healthHasInvestments
	}

	var activeDebt int64
	for i := range snapshot.Loans {
		loan := &snapshot.Loans[i]
		if loan.Status == models.LoanStatusActive {
			activeDebt += loan.RemainingBalance()
		}
	}
	if snapshot.TotalIncome > 0 && float64(activeDebt) < 0.30*float64(snapshot.TotalIncome) {
		score += healthLowDebt
	}

	if score > 100 {
		score = 100
	}
	return score
}

func healthLabel(score int) string {
	switch {
	case score >= 80:
		return "Rất tốt"
	case score >= 65:
		return "Tốt"
	case score >= 50:
		return "Ổn"
	}
	return "Cần cải thiện"
}

// renderOverview reports totals, ratios, asset distribution and the
// health score.
func (e *Engine) renderOverview(snapshot *models.FinancialSnapshot) string {
	score := HealthScore(snapshot)

	var investmentTotal int64
	byType := map[string]int64{}
	for _, investment := range snapshot.Investments {
		investmentTotal += investment.Amount
		byType[investment.Type] += investment.Amount
	}

	var activeDebt int64
	for i := range snapshot.Loans {
		loan := &snapshot.Loans[i]
		if loan.Status == models.LoanStatusActive {
			activeDebt += loan.RemainingBalance()
		}
	}

	netWorth := snapshot.AvailableBalance + investmentTotal - activeDebt

	var b strings.Builder
	b.WriteString("Tổng quan tài chính của bạn:\n")
	fmt.Fprintf(&b, "- Tổng thu: %s\n", nlp.FormatVND(snapshot.TotalIncome))
	fmt.Fprintf(&b, "- Tổng chi: %s\n", nlp.FormatVND(snapshot.TotalExpense))
	fmt.Fprintf(&b, "- Tiết kiệm: %s\n", nlp.FormatVND(snapshot.TotalSavings))
	fmt.Fprintf(&b, "- Số dư khả dụng: %s\n", nlp.FormatVND(snapshot.AvailableBalance))
	if snapshot.TotalExpense > 0 {
		// how many times the available balance covers what was spent
		fmt.Fprintf(&b, "- Tỷ lệ thanh khoản: %.1f (số dư khả dụng trên tổng chi)\n",
			float64(snapshot.AvailableBalance)/float64(snapshot.TotalExpense))
	}
	if investmentTotal > 0 {
		fmt.Fprintf(&b, "- Đầu tư: %s (%d khoản)\n", nlp.FormatVND(investmentTotal), len(snapshot.Investments))
	}
	if activeDebt > 0 {
		fmt.Fprintf(&b, "- Dư nợ đang vay: %s\n", nlp.FormatVND(activeDebt))
		if snapshot.TotalIncome > 0 {
			fmt.Fprintf(&b, "- Tỷ lệ nợ trên thu nhập: %.1f%%\n",
				float64(activeDebt)/float64(snapshot.TotalIncome)*100)
		}
	}
	fmt.Fprintf(&b, "- Tài sản ròng: %s\n", nlp.FormatVND(netWorth))

	if investmentTotal > 0 && len(byType) > 1 {
		b.WriteString("Phân bổ đầu tư:\n")
		for _, kind := range []string{models.InvestmentStock, models.InvestmentGold, models.InvestmentRealEstate, models.InvestmentSavings, models.InvestmentOther} {
			if total, ok := byType[kind]; ok {
				fmt.Fprintf(&b, "- %s: %.1f%%\n", kind, float64(total)/float64(investmentTotal)*100)
			}
		}
	}

	fmt.Fprintf(&b, "Điểm sức khỏe tài chính: %d/100 (%s)", score, healthLabel(score))
	return b.String()
}
