package roster

import (
	"testing"

	"github.com/yipai/yipai/pkg/model"
)

func TestNewCalendar_MonthLengths(t *testing.T) {
	// 覆盖 28/29/30/31 天的月份
	cases := []struct {
		month string
		days  int
	}{
		{"2025-02", 28},
		{"2024-02", 29},
		{"2025-09", 30},
		{"2025-08", 31},
	}

	for _, tc := range cases {
		cal, err := NewCalendar(&model.RosterConfig{Month: tc.month})
		if err != nil {
			t.Fatalf("NewCalendar(%s): %v", tc.month, err)
		}
		if cal.NumDays() != tc.days {
			t.Errorf("%s should have %d days, got %d", tc.month, tc.days, cal.NumDays())
		}
	}
}

func TestNewCalendar_InvalidMonth(t *testing.T) {
	for _, month := range []string{"2025/09", "2025-13", "september", ""} {
		if _, err := NewCalendar(&model.RosterConfig{Month: month}); err == nil {
			t.Errorf("month %q should be rejected", month)
		}
	}
}

func TestCalendar_Category(t *testing.T) {
	// 2025-09-01 是周一；17日为国定假日；20日为特殊日期
	cfg := &model.RosterConfig{
		Month:          "2025-09",
		PublicHolidays: []int{17},
		SpecialDates: map[string]model.Coverage{
			"2025-09-20": {P: 1, S: 1, M: 3},
		},
	}
	cal, err := NewCalendar(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if got := cal.Category(1); got != model.DayWeekday {
		t.Errorf("day 1 should be weekday, got %s", got)
	}
	// 周六/周日
	for _, d := range []int{6, 7, 13, 14, 21, 27, 28} {
		if got := cal.Category(d); got != model.DayWeekendHoliday {
			t.Errorf("day %d should be weekend_holiday, got %s", d, got)
		}
	}
	// 国定假日（周三）
	if got := cal.Category(17); got != model.DayWeekendHoliday {
		t.Errorf("day 17 should be weekend_holiday, got %s", got)
	}
	// 特殊日期优先（20日本是周六）
	if got := cal.Category(20); got != model.DaySpecial {
		t.Errorf("day 20 should be special, got %s", got)
	}
}

func TestCalendar_IsPlainWeekday(t *testing.T) {
	cfg := &model.RosterConfig{
		Month:          "2025-09",
		PublicHolidays: []int{17},
		SpecialDates: map[string]model.Coverage{
			"2025-09-02": {P: 1, S: 1, M: 1}, // 周二设为特殊日期
		},
	}
	cal, err := NewCalendar(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if !cal.IsPlainWeekday(1) {
		t.Error("day 1 should be a plain weekday")
	}
	// 特殊日期不算普通平日，即使落在周二
	if cal.IsPlainWeekday(2) {
		t.Error("special date should not be a plain weekday")
	}
	if cal.IsPlainWeekday(6) || cal.IsPlainWeekday(17) {
		t.Error("weekend and holiday should not be plain weekdays")
	}
}

func TestCalendar_DateStrs(t *testing.T) {
	cal, err := NewCalendar(&model.RosterConfig{Month: "2025-09"})
	if err != nil {
		t.Fatal(err)
	}

	strs := cal.DateStrs()
	if len(strs) != 30 {
		t.Fatalf("expected 30 dates, got %d", len(strs))
	}
	if strs[0] != "2025-09-01" || strs[29] != "2025-09-30" {
		t.Errorf("dates should span the month in order, got %s..%s", strs[0], strs[29])
	}
	if cal.DateStr(17) != "2025-09-17" {
		t.Errorf("DateStr(17) = %s", cal.DateStr(17))
	}
}

func TestNewCalendar_SpecialDateOutsideMonth(t *testing.T) {
	cfg := &model.RosterConfig{
		Month: "2025-09",
		SpecialDates: map[string]model.Coverage{
			"2025-10-01": {P: 1, S: 1, M: 1},
		},
	}
	if _, err := NewCalendar(cfg); err == nil {
		t.Error("special date outside the month should be rejected")
	}

	cfg.SpecialDates = map[string]model.Coverage{"20-09-2025": {}}
	if _, err := NewCalendar(cfg); err == nil {
		t.Error("malformed special date should be rejected")
	}
}
