package stats

import (
	"strings"
	"testing"
	"time"

	"moneytalk/internal/models"
)

var statsNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

func expense(category string, amount int64, date time.Time) models.Entry {
	return models.Entry{Category: category, Amount: amount, Date: date}
}

func TestDetect(t *testing.T) {
	engine := &Engine{}

	tests := []struct {
		name    string
		message string
		matches bool
		subtype string
	}{
		{"overview", "tổng quan tài chính của tôi", true, SubtypeOverview},
		{"health", "sức khỏe tài chính của tôi thế nào", true, SubtypeOverview},
		{"average", "trung bình mỗi tháng tôi chi bao nhiêu", true, SubtypeAverage},
		{"comparison", "so sánh chi tiêu tháng này với tháng trước", true, SubtypeComparison},
		{"spending", "phân tích chi tiêu của tôi", true, SubtypeSpending},
		{"not statistics", "xin chào bạn", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Detect(tt.message)
			if got.Matches != tt.matches {
				t.Fatalf("Detect(%q).Matches = %v (confidence %.2f), want %v",
					tt.message, got.Matches, got.Confidence, tt.matches)
			}
			if tt.matches && got.Subtype != tt.subtype {
				t.Errorf("Subtype = %q, want %q", got.Subtype, tt.subtype)
			}
		})
	}
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.FinancialSnapshot
		want     int
	}{
		{
			name: "everything healthy",
			snapshot: models.FinancialSnapshot{
				TotalIncome:  20_000_000,
				TotalExpense: 10_000_000,
				TotalSavings: 5_000_000,
				Investments:  []models.Investment{{Type: models.InvestmentGold}},
			},
			want: 100,
		},
		{
			name:     "no data stays at base",
			snapshot: models.FinancialSnapshot{},
			want:     50,
		},
		{
			name: "overspending with heavy debt",
			snapshot: models.FinancialSnapshot{
				TotalIncome:  10_000_000,
				TotalExpense: 12_000_000,
				Loans: []models.Loan{{
					Amount: 5_000_000,
					Status: models.LoanStatusActive,
				}},
			},
			want: 50,
		},
		{
			name: "medium savings rate",
			snapshot: models.FinancialSnapshot{
				TotalIncome:  10_000_000,
				TotalExpense: 8_000_000,
				TotalSavings: 1_000_000,
			},
			want: 85, // 50 + 20 + 10 + 5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HealthScore(&tt.snapshot); got != tt.want {
				t.Errorf("HealthScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProcessOverview(t *testing.T) {
	engine := &Engine{}
	snapshot := &models.FinancialSnapshot{
		TotalIncome:      20_000_000,
		TotalExpense:     10_000_000,
		TotalSavings:     5_000_000,
		NetBalance:       10_000_000,
		AvailableBalance: 15_000_000,
	}

	rendered := engine.Process("tổng quan tài chính", snapshot, statsNow)
	// 15M available over 10M spent gives a liquidity ratio of 1.5
	for _, want := range []string{"20.000.000", "10.000.000", "Tỷ lệ thanh khoản: 1.5", "Điểm sức khỏe tài chính"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("overview missing %q: %q", want, rendered)
		}
	}
}

func TestProcessComparison(t *testing.T) {
	engine := &Engine{}
	snapshot := &models.FinancialSnapshot{
		TotalIncome:  10_000_000,
		TotalExpense: 8_000_000,
		Expenses: []models.Entry{
			expense("Ăn uống", 4_000_000, statsNow),
			expense("Di chuyển", 3_000_000, statsNow),
			expense("Giải trí", 1_000_000, statsNow),
		},
	}

	rendered := engine.Process("so sánh thu chi của tôi", snapshot, statsNow)
	if !strings.Contains(rendered, "80.0%") {
		t.Errorf("comparison = %q, want expense ratio 80.0%%", rendered)
	}
	if !strings.Contains(rendered, "1. Ăn uống") {
		t.Errorf("comparison = %q, want top category ranking", rendered)
	}
	if !strings.Contains(rendered, "thu nhiều hơn chi") {
		t.Errorf("comparison = %q, want positive balance note", rendered)
	}
}

func TestProcessAverage(t *testing.T) {
	engine := &Engine{}
	snapshot := &models.FinancialSnapshot{
		Expenses: []models.Entry{
			// two entries across a 10-day span: 3M total, 300k/day
			expense("Ăn uống", 2_000_000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
			expense("Ăn uống", 1_000_000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
		},
	}

	rendered := engine.Process("trung bình tôi chi bao nhiêu", snapshot, statsNow)
	if !strings.Contains(rendered, "1.500.000") {
		t.Errorf("average = %q, want per-entry average 1.500.000", rendered)
	}
	if !strings.Contains(rendered, "300.000") {
		t.Errorf("average = %q, want daily average 300.000", rendered)
	}
	if !strings.Contains(rendered, "2.100.000") {
		t.Errorf("average = %q, want weekly extrapolation 2.100.000", rendered)
	}
	if !strings.Contains(rendered, "9.000.000") {
		t.Errorf("average = %q, want monthly extrapolation 9.000.000", rendered)
	}
}

func TestTrendDeltaNeedsTwentyEntries(t *testing.T) {
	few := make([]models.Entry, 19)
	for i := range few {
		few[i] = expense("Ăn uống", 100_000, statsNow.AddDate(0, 0, -i))
	}
	if got := trendDelta(few); got != "" {
		t.Errorf("trendDelta with 19 entries = %q, want empty", got)
	}

	many := make([]models.Entry, 20)
	for i := range many {
		amount := int64(100_000)
		if i >= 10 {
			amount = 150_000 // recent half is 50% higher
		}
		many[i] = expense("Ăn uống", amount, statsNow.AddDate(0, 0, i))
	}
	got := trendDelta(many)
	if !strings.Contains(got, "cao hơn") || !strings.Contains(got, "50.0%") {
		t.Errorf("trendDelta = %q, want 50%% increase", got)
	}
}

func TestProcessSpendingRanksCategories(t *testing.T) {
	engine := &Engine{}
	snapshot := &models.FinancialSnapshot{
		Expenses: []models.Entry{
			expense("Ăn uống", 6_000_000, statsNow),
			expense("Di chuyển", 2_000_000, statsNow),
			expense("Giải trí", 2_000_000, statsNow),
		},
	}

	rendered := engine.Process("phân tích chi tiêu", snapshot, statsNow)
	if !strings.Contains(rendered, "Ăn uống") || !strings.Contains(rendered, "60.0%") {
		t.Errorf("spending = %q, want Ăn uống at 60%%", rendered)
	}
	if !strings.Contains(rendered, "chiếm hơn nửa") {
		t.Errorf("spending = %q, want over-half advice", rendered)
	}
}

func TestProcessWithoutSnapshot(t *testing.T) {
	engine := &Engine{}
	rendered := engine.Process("thống kê", nil, statsNow)
	if !strings.Contains(rendered, "chưa có dữ liệu") {
		t.Errorf("got %q, want no-data guidance", rendered)
	}
}
