// Package stats 提供排班结果的统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/yipai/yipai/pkg/model"
	"github.com/yipai/yipai/pkg/roster"
)

// FairnessMetrics 工作量公平性指标
type FairnessMetrics struct {
	// 工作量公平性
	LoadGini    float64 `json:"load_gini"`     // 上班人次基尼系数 (0=完全公平)
	LoadStdDev  float64 `json:"load_std_dev"`  // 上班人次标准差
	AvgLoad     float64 `json:"avg_load"`      // 人均上班人次
	MaxLoad     int     `json:"max_load"`      // 最大上班人次
	MinLoad     int     `json:"min_load"`      // 最小上班人次
	LoadRange   int     `json:"load_range"`    // 上班人次极差
	NightGini   float64 `json:"night_gini"`    // 大夜分配基尼系数
	WeekendGini float64 `json:"weekend_gini"`  // 周末/假日班分配基尼系数

	// 人员级别统计
	PersonStats []PersonStat `json:"person_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// PersonStat 单人统计
type PersonStat struct {
	PersonID      int     `json:"person_id"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	TotalShifts   int     `json:"total_shifts"`
	MorningShifts int     `json:"morning_shifts"`
	EveningShifts int     `json:"evening_shifts"`
	NightShifts   int     `json:"night_shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	LeaveDays     int     `json:"leave_days"`
	Deviation     float64 `json:"deviation"` // 与轮班人员均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 统计一份排班的工作量公平性
// 基尼与极差只统计轮班人员，非轮班人员仅出现在明细中
func (a *FairnessAnalyzer) Analyze(req *model.GenerateRequest, schedule model.Schedule) (*FairnessMetrics, error) {
	cal, err := roster.NewCalendar(&req.Config)
	if err != nil {
		return nil, err
	}

	metrics := &FairnessMetrics{PersonStats: make([]PersonStat, 0, len(req.Personnel))}
	leaves := roster.NewLeaveIndex(req.Personnel)

	var shiftLoads, nightLoads, weekendLoads []float64
	for i := range req.Personnel {
		p := &req.Personnel[i]
		shifts := schedule.PersonShifts(cal.DateStrs(), p.ID)

		stat := PersonStat{
			PersonID:  p.ID,
			Name:      p.Name,
			Role:      string(p.Role),
			LeaveDays: leaves.Count(p.ID),
		}
		for d, st := range shifts {
			stat.TotalShifts++
			switch st {
			case model.ShiftMorning:
				stat.MorningShifts++
			case model.ShiftEvening:
				stat.EveningShifts++
			case model.ShiftNight:
				stat.NightShifts++
			}
			if cal.Category(d) == model.DayWeekendHoliday {
				stat.WeekendShifts++
			}
		}
		metrics.PersonStats = append(metrics.PersonStats, stat)

		if p.Role == model.RoleShift {
			shiftLoads = append(shiftLoads, float64(stat.TotalShifts))
			nightLoads = append(nightLoads, float64(stat.NightShifts))
			weekendLoads = append(weekendLoads, float64(stat.WeekendShifts))
		}
	}

	sort.Slice(metrics.PersonStats, func(i, j int) bool {
		return metrics.PersonStats[i].PersonID < metrics.PersonStats[j].PersonID
	})

	if len(shiftLoads) == 0 {
		metrics.OverallFairnessScore = 100
		return metrics, nil
	}

	metrics.AvgLoad = mean(shiftLoads)
	metrics.LoadStdDev = stdDev(shiftLoads, metrics.AvgLoad)
	metrics.MaxLoad = int(maxOf(shiftLoads))
	metrics.MinLoad = int(minOf(shiftLoads))
	metrics.LoadRange = metrics.MaxLoad - metrics.MinLoad
	metrics.LoadGini = gini(shiftLoads)
	metrics.NightGini = gini(nightLoads)
	metrics.WeekendGini = gini(weekendLoads)

	for i := range metrics.PersonStats {
		s := &metrics.PersonStats[i]
		if s.Role == string(model.RoleShift) && metrics.AvgLoad > 0 {
			s.Deviation = (float64(s.TotalShifts) - metrics.AvgLoad) / metrics.AvgLoad * 100
		}
	}

	// 综合评分：基尼越小越公平
	score := 100 * (1 - metrics.LoadGini*0.5 - metrics.NightGini*0.3 - metrics.WeekendGini*0.2)
	if score < 0 {
		score = 0
	}
	metrics.OverallFairnessScore = score

	return metrics, nil
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}
	return (2*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += (v - avg) * (v - avg)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
