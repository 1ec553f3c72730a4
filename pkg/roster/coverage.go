package roster

import "github.com/yipai/yipai/pkg/model"

// 缺省人数需求
var (
	weekdayCoverage        = model.Coverage{P: 1, S: 2, M: 2}
	weekendHolidayCoverage = model.Coverage{P: 2, S: 2, M: 3}
)

// CoverageTable 人数需求表：按日期类别给出每班所需人数，特殊日期使用字面向量
type CoverageTable struct {
	cal *Calendar
}

// NewCoverageTable 创建人数需求表
func NewCoverageTable(cal *Calendar) *CoverageTable {
	return &CoverageTable{cal: cal}
}

// DayCoverage 返回第 d 天的人数需求向量
func (t *CoverageTable) DayCoverage(d int) model.Coverage {
	if cov, ok := t.cal.SpecialCoverage(d); ok {
		return cov
	}
	if t.cal.isWeekendHoliday(d) {
		return weekendHolidayCoverage
	}
	return weekdayCoverage
}

// Required 返回第 d 天班别 s 所需人数
func (t *CoverageTable) Required(d int, s model.ShiftType) int {
	return t.DayCoverage(d).Get(s)
}

// TotalDemand 全月需求总人次
func (t *CoverageTable) TotalDemand() int {
	total := 0
	for d := 1; d <= t.cal.NumDays(); d++ {
		total += t.DayCoverage(d).Total()
	}
	return total
}

// NightDemand 全月大夜需求总人次
func (t *CoverageTable) NightDemand() int {
	total := 0
	for d := 1; d <= t.cal.NumDays(); d++ {
		total += t.DayCoverage(d).M
	}
	return total
}
