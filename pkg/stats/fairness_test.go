package stats

import (
	"testing"

	"github.com/yipai/yipai/pkg/model"
)

func newRequest() *model.GenerateRequest {
	return &model.GenerateRequest{
		Personnel: []model.Person{
			{ID: 1, Name: "甲", Role: model.RoleShift},
			{ID: 2, Name: "乙", Role: model.RoleShift},
			{ID: 3, Name: "丙", Role: model.RoleNonShift},
		},
		Config: model.RosterConfig{Month: "2025-09", MaxNightShifts: 9},
	}
}

func TestAnalyze_Counts(t *testing.T) {
	schedule := model.Schedule{
		"2025-09-01": &model.DayShifts{P: []int{1, 3}, S: []int{2}, M: []int{}},
		"2025-09-02": &model.DayShifts{P: []int{}, S: []int{}, M: []int{1}},
		"2025-09-06": &model.DayShifts{P: []int{2}, S: []int{}, M: []int{}}, // 周六
	}

	metrics, err := NewFairnessAnalyzer().Analyze(newRequest(), schedule)
	if err != nil {
		t.Fatal(err)
	}

	if len(metrics.PersonStats) != 3 {
		t.Fatalf("expected 3 person stats, got %d", len(metrics.PersonStats))
	}

	p1 := metrics.PersonStats[0]
	if p1.TotalShifts != 2 || p1.MorningShifts != 1 || p1.NightShifts != 1 {
		t.Errorf("person 1 stats = %+v", p1)
	}

	p2 := metrics.PersonStats[1]
	if p2.TotalShifts != 2 || p2.WeekendShifts != 1 {
		t.Errorf("person 2 stats = %+v", p2)
	}

	// 非轮班人员只进明细，不进平衡统计
	if metrics.MaxLoad != 2 || metrics.MinLoad != 2 || metrics.LoadRange != 0 {
		t.Errorf("load range = %d..%d", metrics.MinLoad, metrics.MaxLoad)
	}
}

func TestAnalyze_GiniBounds(t *testing.T) {
	// 完全不均：一人全部、一人为零
	schedule := model.Schedule{
		"2025-09-01": &model.DayShifts{P: []int{1}, S: []int{}, M: []int{}},
		"2025-09-02": &model.DayShifts{P: []int{1}, S: []int{}, M: []int{}},
	}
	metrics, err := NewFairnessAnalyzer().Analyze(newRequest(), schedule)
	if err != nil {
		t.Fatal(err)
	}
	if metrics.LoadGini < 0 || metrics.LoadGini > 1 {
		t.Errorf("gini out of range: %f", metrics.LoadGini)
	}
	if metrics.LoadGini == 0 {
		t.Error("unequal loads should have positive gini")
	}
	if metrics.OverallFairnessScore < 0 || metrics.OverallFairnessScore > 100 {
		t.Errorf("score out of range: %f", metrics.OverallFairnessScore)
	}
}

func TestAnalyze_PerfectFairness(t *testing.T) {
	schedule := model.Schedule{
		"2025-09-01": &model.DayShifts{P: []int{1}, S: []int{2}, M: []int{}},
	}
	metrics, err := NewFairnessAnalyzer().Analyze(newRequest(), schedule)
	if err != nil {
		t.Fatal(err)
	}
	if metrics.LoadGini > 0.01 {
		t.Errorf("equal loads should have gini near 0, got %f", metrics.LoadGini)
	}
}

func TestAnalyze_EmptySchedule(t *testing.T) {
	metrics, err := NewFairnessAnalyzer().Analyze(newRequest(), model.Schedule{})
	if err != nil {
		t.Fatal(err)
	}
	if metrics.AvgLoad != 0 || metrics.LoadGini != 0 {
		t.Errorf("empty schedule should yield zero metrics, got %+v", metrics)
	}
}

func TestAnalyze_InvalidMonth(t *testing.T) {
	req := newRequest()
	req.Config.Month = "bogus"
	if _, err := NewFairnessAnalyzer().Analyze(req, model.Schedule{}); err == nil {
		t.Error("invalid month should be rejected")
	}
}
