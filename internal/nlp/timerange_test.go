package nlp

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodBounds(t *testing.T) {
	// Wednesday
	now := time.Date(2025, time.June, 18, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{"today", date(2025, time.June, 18), date(2025, time.June, 19)},
		{"yesterday", date(2025, time.June, 17), date(2025, time.June, 18)},
		{"this_week", date(2025, time.June, 16), date(2025, time.June, 23)},
		{"last_week", date(2025, time.June, 9), date(2025, time.June, 16)},
		{"this_month", date(2025, time.June, 1), date(2025, time.July, 1)},
		{"last_month", date(2025, time.May, 1), date(2025, time.June, 1)},
		{"this_year", date(2025, time.January, 1), date(2026, time.January, 1)},
		{"last_year", date(2024, time.January, 1), date(2025, time.January, 1)},
		{"nonsense", date(2025, time.June, 18), date(2025, time.June, 19)},
	}

	for _, tt := range tests {
		start, end := PeriodBounds(tt.period, now)
		if !start.Equal(tt.start) || !end.Equal(tt.end) {
			t.Errorf("PeriodBounds(%q) = [%v, %v), want [%v, %v)",
				tt.period, start, end, tt.start, tt.end)
		}
	}
}

func TestPeriodBoundsWeekStartsMonday(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2025, time.June, 22, 10, 0, 0, 0, time.UTC)

	start, end := PeriodBounds("this_week", sunday)
	if !start.Equal(date(2025, time.June, 16)) {
		t.Errorf("week start = %v, want Monday June 16", start)
	}
	if !end.Equal(date(2025, time.June, 23)) {
		t.Errorf("week end = %v, want Monday June 23", end)
	}
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2025, time.June, 18, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		message  string
		label    string
		dataType string
	}{
		{"chi tiêu tháng này", "tháng này", "expense"},
		{"thu nhập tháng trước", "tháng trước", "income"},
		{"khoản vay tuần này", "tuần này", "loan"},
		{"xem tổng quan hôm nay", "hôm nay", "all"},
		{"chi tieu thang nay", "tháng này", "expense"},
	}

	for _, tt := range tests {
		got := ParseTimeRange(tt.message, now)
		if got == nil {
			t.Errorf("ParseTimeRange(%q) = nil", tt.message)
			continue
		}
		if got.Label != tt.label {
			t.Errorf("ParseTimeRange(%q).Label = %q, want %q", tt.message, got.Label, tt.label)
		}
		if got.DataType != tt.dataType {
			t.Errorf("ParseTimeRange(%q).DataType = %q, want %q", tt.message, got.DataType, tt.dataType)
		}
	}

	if got := ParseTimeRange("chi tiêu của tôi", now); got != nil {
		t.Errorf("expected nil for message without a period phrase, got %+v", got)
	}
}

func TestParseTimeRangeLastMonthBeforeThisMonth(t *testing.T) {
	now := time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC)

	got := ParseTimeRange("chi tiêu tháng trước", now)
	if got == nil {
		t.Fatal("expected a range")
	}
	if !got.Start.Equal(date(2025, time.May, 1)) || !got.End.Equal(date(2025, time.June, 1)) {
		t.Errorf("last month = [%v, %v), want May", got.Start, got.End)
	}
}

func TestMatchesTimeQuery(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"chi tiêu tháng này", true},
		{"thu nhập tuần này", true},
		{"xem tháng này", true},
		{"tổng quan hôm nay", true},
		{"tháng này", false},                // no data type, no viewing cue
		{"ăn sáng hết 50k hôm nay", false},  // amount present, likely an insert
		{"giá cổ phiếu FPT hôm nay", false}, // no data type, no viewing cue
		{"chi tiêu của tôi", false},         // no period phrase
	}

	for _, tt := range tests {
		if got := MatchesTimeQuery(tt.message); got != tt.want {
			t.Errorf("MatchesTimeQuery(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
