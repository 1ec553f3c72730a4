package roster

import (
	"strings"
	"testing"

	"github.com/yipai/yipai/pkg/errors"
	"github.com/yipai/yipai/pkg/model"
)

func shiftPeople(n int) []model.Person {
	people := make([]model.Person, 0, n)
	for i := 1; i <= n; i++ {
		people = append(people, model.Person{ID: i, Name: "Person", Role: model.RoleShift})
	}
	return people
}

func TestNormalize_DefaultNightCap(t *testing.T) {
	req := &model.GenerateRequest{Config: model.RosterConfig{Month: "2025-09"}}
	Normalize(req)
	if req.Config.MaxNightShifts != model.DefaultMaxNightShifts {
		t.Errorf("MaxNightShifts = %d, want %d", req.Config.MaxNightShifts, model.DefaultMaxNightShifts)
	}

	// 已设置的值不被覆盖
	req.Config.MaxNightShifts = 5
	Normalize(req)
	if req.Config.MaxNightShifts != 5 {
		t.Error("existing MaxNightShifts should be kept")
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	req := &model.GenerateRequest{
		Personnel: shiftPeople(10),
		Config: model.RosterConfig{
			Month:          "2025-09",
			PublicHolidays: []int{17},
			MaxNightShifts: 9,
		},
	}
	if appErr := ValidateRequest(req); appErr != nil {
		t.Fatalf("valid request rejected: %v", appErr)
	}
}

func TestValidateRequest_Invalid(t *testing.T) {
	base := func() *model.GenerateRequest {
		return &model.GenerateRequest{
			Personnel: shiftPeople(5),
			Config:    model.RosterConfig{Month: "2025-09", MaxNightShifts: 9},
		}
	}

	cases := []struct {
		name   string
		mutate func(*model.GenerateRequest)
	}{
		{"空人员列表", func(r *model.GenerateRequest) { r.Personnel = nil }},
		{"人员ID重复", func(r *model.GenerateRequest) { r.Personnel[1].ID = r.Personnel[0].ID }},
		{"人员ID非正", func(r *model.GenerateRequest) { r.Personnel[0].ID = 0 }},
		{"未知角色", func(r *model.GenerateRequest) { r.Personnel[0].Role = "manager" }},
		{"休假日越界", func(r *model.GenerateRequest) { r.Personnel[0].RequestedLeaves = []int{31} }},
		{"多类休假重叠", func(r *model.GenerateRequest) {
			r.Personnel[0].RequestedLeaves = []int{5}
			r.Personnel[0].AnnualLeaves = []int{5}
		}},
		{"假日越界", func(r *model.GenerateRequest) { r.Config.PublicHolidays = []int{0} }},
		{"特殊日期为负", func(r *model.GenerateRequest) {
			r.Config.SpecialDates = map[string]model.Coverage{"2025-09-10": {P: -1}}
		}},
		{"大夜上限为负", func(r *model.GenerateRequest) { r.Config.MaxNightShifts = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)
			appErr := ValidateRequest(req)
			if appErr == nil {
				t.Fatal("expected INVALID_INPUT")
			}
			if appErr.Code != errors.CodeInvalidInput {
				t.Errorf("code = %s, want %s", appErr.Code, errors.CodeInvalidInput)
			}
		})
	}
}

func newCapacityFixture(t *testing.T, req *model.GenerateRequest) (*Calendar, *CoverageTable, *LeaveIndex) {
	t.Helper()
	cal, err := NewCalendar(&req.Config)
	if err != nil {
		t.Fatal(err)
	}
	return cal, NewCoverageTable(cal), NewLeaveIndex(req.Personnel)
}

func TestCheckCapacity_Sufficient(t *testing.T) {
	req := &model.GenerateRequest{
		Personnel: shiftPeople(10),
		Config:    model.RosterConfig{Month: "2025-09", MaxNightShifts: 9},
	}
	cal, cov, leaves := newCapacityFixture(t, req)
	if appErr := CheckCapacity(req, cal, cov, leaves); appErr != nil {
		t.Fatalf("capacity check should pass: %v", appErr)
	}
}

func TestCheckCapacity_ShrunkRoster(t *testing.T) {
	// 4名轮班人员排平日5人次需求，供给必然不足
	req := &model.GenerateRequest{
		Personnel: shiftPeople(4),
		Config:    model.RosterConfig{Month: "2025-09", MaxNightShifts: 9},
	}
	cal, cov, leaves := newCapacityFixture(t, req)
	appErr := CheckCapacity(req, cal, cov, leaves)
	if appErr == nil {
		t.Fatal("expected INSUFFICIENT_CAPACITY")
	}
	if appErr.Code != errors.CodeInsufficientCapacity {
		t.Errorf("code = %s, want %s", appErr.Code, errors.CodeInsufficientCapacity)
	}
}

func TestCheckCapacity_NightCapShortage(t *testing.T) {
	// 2025-09 大夜需求 68 人次；10人、大夜上限6 → 供给60，不足
	req := &model.GenerateRequest{
		Personnel: shiftPeople(10),
		Config:    model.RosterConfig{Month: "2025-09", MaxNightShifts: 6},
	}
	cal, cov, leaves := newCapacityFixture(t, req)
	appErr := CheckCapacity(req, cal, cov, leaves)
	if appErr == nil {
		t.Fatal("expected INSUFFICIENT_CAPACITY for night shortage")
	}
	if !strings.Contains(appErr.Message, "大夜") {
		t.Errorf("message should mention night shifts: %s", appErr.Message)
	}
}

func TestCheckCapacity_DayShortage(t *testing.T) {
	// 人数充足，但某一天大家都休假
	people := shiftPeople(10)
	for i := range people {
		people[i].RequestedLeaves = []int{15}
	}
	req := &model.GenerateRequest{
		Personnel: people,
		Config:    model.RosterConfig{Month: "2025-09", MaxNightShifts: 9},
	}
	cal, cov, leaves := newCapacityFixture(t, req)
	if appErr := CheckCapacity(req, cal, cov, leaves); appErr == nil {
		t.Fatal("a day with everyone on leave should fail the capacity check")
	}
}

func TestLeaveIndex(t *testing.T) {
	people := []model.Person{
		{ID: 1, Role: model.RoleShift, RequestedLeaves: []int{3}, ExtraLeaves: []int{7}},
		{ID: 2, Role: model.RoleShift},
	}
	idx := NewLeaveIndex(people)

	if !idx.Unavailable(1, 3) || !idx.Unavailable(1, 7) {
		t.Error("declared leave days should be unavailable")
	}
	if idx.Unavailable(1, 4) || idx.Unavailable(2, 3) {
		t.Error("other days should be available")
	}
	if idx.Count(1) != 2 || idx.Count(2) != 0 {
		t.Error("leave counts mismatch")
	}
}
