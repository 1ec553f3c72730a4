package solver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"

	"github.com/yipai/yipai/pkg/model"
)

// encodeSchedule 从求解结果读出变量取值，生成按日期键控的排班表
// 每一天都有键，人员ID升序
func (e *Engine) encodeSchedule(m *rosterModel, resp *cmpb.CpSolverResponse) model.Schedule {
	schedule := make(model.Schedule, e.cal.NumDays())

	for d := 1; d <= e.cal.NumDays(); d++ {
		day := model.NewDayShifts()
		for pi := range e.personnel {
			for s, st := range model.ShiftTypes {
				if cpmodel.SolutionBooleanValue(resp, m.x[pi][d-1][s]) {
					day.Add(st, e.personnel[pi].ID)
				}
			}
		}
		day.Sort()
		schedule[e.cal.DateStr(d)] = day
	}

	return schedule
}
