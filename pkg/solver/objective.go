package solver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/yipai/yipai/pkg/model"
)

// addObjective 最小化轮班人员的工作量失衡
// load[p] 为全月上班人次，目标为 max(load) - min(load)
// 非轮班人员可排空间过窄，不计入平衡项
func (e *Engine) addObjective(m *rosterModel) {
	numDays := int64(e.cal.NumDays())

	var loads []cpmodel.LinearArgument
	for pi := range e.personnel {
		if e.personnel[pi].Role != model.RoleShift {
			continue
		}
		load := cpmodel.NewLinearExpr()
		for d := 0; d < e.cal.NumDays(); d++ {
			load.Add(m.w[pi][d])
		}
		loads = append(loads, load)
	}
	if len(loads) == 0 {
		return
	}

	m.loadMin = m.builder.NewIntVar(0, numDays)
	m.loadMax = m.builder.NewIntVar(0, numDays)
	m.builder.AddMinEquality(m.loadMin, loads...)
	m.builder.AddMaxEquality(m.loadMax, loads...)

	m.builder.Minimize(cpmodel.NewLinearExpr().
		AddTerm(m.loadMax, 1).
		AddTerm(m.loadMin, -1))
}
