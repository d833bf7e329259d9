package nlp

import "testing"

func TestParseAdvancedFilter(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected AdvancedFilter
	}{
		{
			"loan below amount",
			"khoản vay dưới 500k",
			AdvancedFilter{IsValid: true, DataType: "loan", Operator: "less", Amount: 500_000},
		},
		{
			"expense above amount",
			"chi tiêu trên 1 triệu",
			AdvancedFilter{IsValid: true, DataType: "expense", Operator: "greater", Amount: 1_000_000},
		},
		{
			"expense max",
			"khoản chi cao nhất của tôi",
			AdvancedFilter{IsValid: true, DataType: "expense", Operator: "max"},
		},
		{
			"income min",
			"thu nhập thấp nhất",
			AdvancedFilter{IsValid: true, DataType: "income", Operator: "min"},
		},
		{
			"leading count does not become the amount",
			"2 khoản vay dưới 500k",
			AdvancedFilter{IsValid: true, DataType: "loan", Operator: "less", Amount: 500_000},
		},
		{
			"operator without data type",
			"cái nào cao nhất",
			AdvancedFilter{IsValid: false, Operator: "max"},
		},
		{
			"data type without operator",
			"khoản vay của tôi",
			AdvancedFilter{IsValid: false, DataType: "loan"},
		},
		{
			"comparison without amount is invalid",
			"chi tiêu lớn hơn mức bình thường",
			AdvancedFilter{IsValid: false, DataType: "expense"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAdvancedFilter(tt.message)
			if got != tt.expected {
				t.Errorf("ParseAdvancedFilter(%q) = %+v, want %+v", tt.message, got, tt.expected)
			}
		})
	}
}
