package validator

import (
	"fmt"
	"testing"

	"github.com/yipai/yipai/pkg/model"
)

// newRequest 10名轮班人员、2025-09、17日假日
func newRequest() *model.GenerateRequest {
	personnel := make([]model.Person, 0, 10)
	for i := 1; i <= 10; i++ {
		personnel = append(personnel, model.Person{ID: i, Name: "Person", Role: model.RoleShift})
	}
	return &model.GenerateRequest{
		Personnel: personnel,
		Config: model.RosterConfig{
			Month:          "2025-09",
			PublicHolidays: []int{17},
			MaxNightShifts: 9,
		},
	}
}

// emptySchedule 每天都有键但全空
func emptySchedule(days int) model.Schedule {
	s := make(model.Schedule, days)
	for d := 1; d <= days; d++ {
		s[dateStr(d)] = model.NewDayShifts()
	}
	return s
}

func dateStr(d int) string {
	return fmt.Sprintf("2025-09-%02d", d)
}

// hasRule 违反列表中是否包含指定规则（personID 为 0 时不限定人员）
func hasRule(violations []Violation, rule RuleID, personID int) bool {
	for _, v := range violations {
		if v.Rule == rule && (personID == 0 || v.PersonID == personID) {
			return true
		}
	}
	return false
}

func TestCheck_MissingDays(t *testing.T) {
	v := New(newRequest())
	violations := v.Check(model.Schedule{})

	if !hasRule(violations, RuleShape, 0) {
		t.Error("empty schedule should violate the shape rule")
	}
	if !hasRule(violations, RuleCoverage, 0) {
		t.Error("empty schedule should violate coverage")
	}
}

func TestCheck_CoverageMismatch(t *testing.T) {
	// 全空排班：每天每班人数都是0，与需求不符
	v := New(newRequest())
	violations := v.Check(emptySchedule(30))

	if !hasRule(violations, RuleCoverage, 0) {
		t.Error("expected coverage violations")
	}
	// 结构本身完整
	if hasRule(violations, RuleShape, 0) {
		t.Error("complete empty schedule should pass the shape rule")
	}
}

func TestCheck_UnknownPerson(t *testing.T) {
	s := emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftMorning, 99)

	violations := New(newRequest()).Check(s)
	if !hasRule(violations, RuleShape, 99) {
		t.Error("unknown person id should be reported")
	}
}

func TestCheck_DoubleShift(t *testing.T) {
	s := emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftMorning, 1)
	s[dateStr(1)].Add(model.ShiftNight, 1)

	violations := New(newRequest()).Check(s)
	if !hasRule(violations, RuleSingleShift, 1) {
		t.Error("two shifts on one day should be reported")
	}
}

func TestCheck_LeaveViolation(t *testing.T) {
	req := newRequest()
	req.Personnel[0].RequestedLeaves = []int{5}

	s := emptySchedule(30)
	s[dateStr(5)].Add(model.ShiftEvening, 1)

	violations := New(req).Check(s)
	if !hasRule(violations, RuleLeave, 1) {
		t.Error("assignment on a leave day should be reported")
	}
}

func TestCheck_NonShiftRole(t *testing.T) {
	req := newRequest()
	req.Personnel[0].Role = model.RoleNonShift

	s := emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftEvening, 1)  // 平日小夜：违规
	s[dateStr(6)].Add(model.ShiftMorning, 1)  // 周六白班：违规
	s[dateStr(17)].Add(model.ShiftMorning, 1) // 假日白班：违规
	s[dateStr(2)].Add(model.ShiftMorning, 1)  // 平日白班：合法

	violations := New(req).Check(s)

	count := 0
	for _, v := range violations {
		if v.Rule == RuleRole && v.PersonID == 1 {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected 3 role violations, got %d", count)
	}
}

func TestCheck_Transitions(t *testing.T) {
	// 大夜 -> 白班
	s := emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftNight, 1)
	s[dateStr(2)].Add(model.ShiftMorning, 1)
	if !hasRule(New(newRequest()).Check(s), RuleTransition, 1) {
		t.Error("M->P should be reported")
	}

	// 大夜 -> 小夜
	s = emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftNight, 1)
	s[dateStr(2)].Add(model.ShiftEvening, 1)
	if !hasRule(New(newRequest()).Check(s), RuleTransition, 1) {
		t.Error("M->S should be reported")
	}

	// 小夜 -> 白班
	s = emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftEvening, 1)
	s[dateStr(2)].Add(model.ShiftMorning, 1)
	if !hasRule(New(newRequest()).Check(s), RuleTransition, 1) {
		t.Error("S->P should be reported")
	}

	// 小夜 -> 小夜 合法（大夜后强制休息是另一条规则）
	s = emptySchedule(30)
	s[dateStr(1)].Add(model.ShiftEvening, 1)
	s[dateStr(2)].Add(model.ShiftEvening, 1)
	if hasRule(New(newRequest()).Check(s), RuleTransition, 1) {
		t.Error("S->S should be allowed")
	}
}

func TestCheck_ConsecutiveWork(t *testing.T) {
	// 连续6天白班
	s := emptySchedule(30)
	for d := 8; d <= 13; d++ {
		s[dateStr(d)].Add(model.ShiftMorning, 1)
	}
	if !hasRule(New(newRequest()).Check(s), RuleConsecutiveWork, 1) {
		t.Error("6 consecutive worked days should be reported")
	}

	// 5天后休1天：合法
	s = emptySchedule(30)
	for d := 8; d <= 12; d++ {
		s[dateStr(d)].Add(model.ShiftMorning, 1)
	}
	s[dateStr(14)].Add(model.ShiftMorning, 1)
	if hasRule(New(newRequest()).Check(s), RuleConsecutiveWork, 1) {
		t.Error("5 worked days with a rest day should be allowed")
	}
}

func TestCheck_ConsecutiveNights(t *testing.T) {
	s := emptySchedule(30)
	for d := 10; d <= 12; d++ {
		s[dateStr(d)].Add(model.ShiftNight, 1)
	}
	if !hasRule(New(newRequest()).Check(s), RuleConsecutiveNight, 1) {
		t.Error("3 consecutive nights should be reported")
	}
}

func TestCheck_MandatoryRest_SingleNight(t *testing.T) {
	// 单个大夜后次日上班
	s := emptySchedule(30)
	s[dateStr(10)].Add(model.ShiftNight, 1)
	s[dateStr(11)].Add(model.ShiftNight, 2)
	s[dateStr(11)].Add(model.ShiftEvening, 1)

	violations := New(newRequest()).Check(s)
	if !hasRule(violations, RuleMandatoryRest, 1) {
		t.Error("work on the day after a single night should be reported")
	}
	// 人员2只有一个大夜、之后休息，不应被报告
	if hasRule(violations, RuleMandatoryRest, 2) {
		t.Error("person 2 rested after the night and should pass")
	}
}

func TestCheck_MandatoryRest_DoubleNight(t *testing.T) {
	// 连续两个大夜后第2天上班
	s := emptySchedule(30)
	s[dateStr(4)].Add(model.ShiftNight, 1)
	s[dateStr(5)].Add(model.ShiftNight, 1)
	s[dateStr(7)].Add(model.ShiftMorning, 1)

	violations := New(newRequest()).Check(s)
	if !hasRule(violations, RuleMandatoryRest, 1) {
		t.Error("work on the second rest day after a double night should be reported")
	}

	// 两天都休息则合法
	s = emptySchedule(30)
	s[dateStr(4)].Add(model.ShiftNight, 1)
	s[dateStr(5)].Add(model.ShiftNight, 1)
	s[dateStr(8)].Add(model.ShiftMorning, 1)
	if hasRule(New(newRequest()).Check(s), RuleMandatoryRest, 1) {
		t.Error("two rest days after a double night should pass")
	}
}

func TestCheck_MandatoryRest_MonthEnd(t *testing.T) {
	// 连班到达月末，超出月份的休息义务消失
	s := emptySchedule(30)
	s[dateStr(29)].Add(model.ShiftNight, 1)
	s[dateStr(30)].Add(model.ShiftNight, 1)

	if hasRule(New(newRequest()).Check(s), RuleMandatoryRest, 1) {
		t.Error("a night run ending on the last day has no rest obligation")
	}
}

func TestCheck_MandatoryRest_LeaveOverride(t *testing.T) {
	// 应休日本就是休假日：休假已满足不上班义务
	req := newRequest()
	req.Personnel[0].RequestedLeaves = []int{6}

	s := emptySchedule(30)
	s[dateStr(5)].Add(model.ShiftNight, 1)

	if hasRule(New(req).Check(s), RuleMandatoryRest, 1) {
		t.Error("pre-tagged leave fulfils the rest obligation")
	}
}

func TestCheck_NightCap(t *testing.T) {
	req := newRequest()
	req.Config.MaxNightShifts = 3

	// 4个大夜，彼此隔开以避开其它规则
	s := emptySchedule(30)
	for _, d := range []int{1, 5, 9, 13} {
		s[dateStr(d)].Add(model.ShiftNight, 1)
	}

	violations := New(req).Check(s)
	if !hasRule(violations, RuleNightCap, 1) {
		t.Error("exceeding the monthly night cap should be reported")
	}
}
