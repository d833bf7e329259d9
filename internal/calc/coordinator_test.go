package calc

import (
	"strings"
	"testing"

	"moneytalk/internal/models"
)

func snapshot(income, expense, savings int64) *models.FinancialSnapshot {
	net := income - expense
	return &models.FinancialSnapshot{
		TotalIncome:      income,
		TotalExpense:     expense,
		TotalSavings:     savings,
		NetBalance:       net,
		AvailableBalance: net + savings,
	}
}

func TestDetectCalculationType(t *testing.T) {
	coordinator := NewCoordinator()

	tests := []struct {
		name     string
		message  string
		category string
	}{
		{"plain arithmetic", "2 + 3 = ?", "general"},
		{"percentage", "15% của 1 triệu", "general"},
		{"vietnamese operators", "5 nhân 7 bằng bao nhiêu", "general"},
		{"interest", "lãi suất 7% của 100 triệu trong 12 tháng", "general"},
		{"spending ability", "Tôi có thể chi 4tr được không?", "financial"},
		{"after spending", "nếu chi 2 triệu thì còn lại bao nhiêu", "financial"},
		{"shortage", "chi 10 triệu thì còn thiếu bao nhiêu", "financial"},
		{"chitchat is not a calculation", "xin chào bạn", "none"},
		{"plain query is not a calculation", "xem chi tiêu tháng này", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coordinator.DetectCalculationType(tt.message)
			if got.Category != tt.category {
				t.Errorf("DetectCalculationType(%q).Category = %q, want %q",
					tt.message, got.Category, tt.category)
			}
		})
	}
}

func TestDetectCalculationTypeIsDeterministic(t *testing.T) {
	coordinator := NewCoordinator()
	message := "nếu chi 2 triệu thì còn lại bao nhiêu"

	first := coordinator.DetectCalculationType(message)
	for i := 0; i < 10; i++ {
		got := coordinator.DetectCalculationType(message)
		if got != first {
			t.Fatalf("run %d: %+v differs from first run %+v", i, got, first)
		}
	}
}

func TestGeneralEngineArithmetic(t *testing.T) {
	engine := &GeneralEngine{}

	rendered := engine.Process("2 + 3 = ?")
	if !strings.Contains(rendered, "5") {
		t.Errorf("expected rendered result to contain 5, got %q", rendered)
	}
}

func TestGeneralEnginePercentage(t *testing.T) {
	engine := &GeneralEngine{}

	rendered := engine.Process("15% của 1 triệu")
	if !strings.Contains(rendered, "150.000") {
		t.Errorf("expected rendered result to contain 150.000, got %q", rendered)
	}
}

func TestFinancialEngineSpendingAbility(t *testing.T) {
	engine := &FinancialEngine{}
	snap := snapshot(20_000_000, 15_000_000, 0)

	rendered := engine.Process("Tôi có thể chi 4tr được không?", snap)
	if !strings.Contains(rendered, "Được") {
		t.Errorf("expected affordability confirmation, got %q", rendered)
	}
	if !strings.Contains(rendered, "1.000.000") {
		t.Errorf("expected remaining 1.000.000 after spending, got %q", rendered)
	}
}

func TestFinancialEngineShortageOfZero(t *testing.T) {
	engine := &FinancialEngine{}
	snap := snapshot(10_000_000, 2_000_000, 0)

	rendered := engine.Process("chi 5 triệu thì còn thiếu bao nhiêu", snap)
	if !strings.Contains(rendered, "không thiếu") {
		t.Errorf("expected zero shortage message, got %q", rendered)
	}
}

func TestFinancialEngineMissingAmount(t *testing.T) {
	engine := &FinancialEngine{}
	snap := snapshot(10_000_000, 2_000_000, 0)

	rendered := engine.Process("tôi có thể chi được không", snap)
	if !strings.Contains(rendered, "ví dụ") {
		t.Errorf("expected guidance message with example, got %q", rendered)
	}
}

func TestProcessCalculationWithoutSnapshot(t *testing.T) {
	coordinator := NewCoordinator()

	rendered := coordinator.ProcessCalculation("tôi có thể chi 4tr không", "financial", nil)
	if !strings.Contains(rendered, "thêm giao dịch") {
		t.Errorf("expected no-data guidance, got %q", rendered)
	}
}
