package solver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/yipai/yipai/pkg/model"
)

// 连续性上限
const (
	maxConsecutiveWorkDays = 5 // 任意6天窗口内至多工作5天
	maxConsecutiveNights   = 2 // 任意3天窗口内至多2个大夜
)

// addConstraints 按固定顺序张贴全部硬约束
// 每条规则都表达为决策布尔与 w 辅助变量上的线性不等式
func (e *Engine) addConstraints(m *rosterModel) {
	e.addCoverageConstraints(m)
	e.addWorkedDayChannel(m)
	e.addLeaveConstraints(m)
	e.addRoleConstraints(m)
	e.addTransitionConstraints(m)
	e.addConsecutiveWorkCap(m)
	e.addConsecutiveNightCap(m)
	e.addMandatoryRestConstraints(m)
	e.addMonthlyNightCap(m)
	e.addNonShiftMonthlyCap(m)
}

// addCoverageConstraints (a) 逐日逐班人数等式
func (e *Engine) addCoverageConstraints(m *rosterModel) {
	for d := 1; d <= e.cal.NumDays(); d++ {
		for s, st := range model.ShiftTypes {
			onShift := cpmodel.NewLinearExpr()
			for pi := range e.personnel {
				onShift.Add(m.x[pi][d-1][s])
			}
			m.builder.AddEquality(onShift, cpmodel.NewConstant(int64(e.cov.Required(d, st))))
		}
	}
}

// addWorkedDayChannel (b) w[p,d] = Σ_s x[p,d,s]
// w 为布尔变量，等式同时强制每人每天至多一个班别
func (e *Engine) addWorkedDayChannel(m *rosterModel) {
	for pi := range e.personnel {
		for d := 0; d < e.cal.NumDays(); d++ {
			m.builder.AddEquality(m.w[pi][d], m.dayWork(pi, d))
		}
	}
}

// addLeaveConstraints (c) 休假日不上任何班
func (e *Engine) addLeaveConstraints(m *rosterModel) {
	for pi := range e.personnel {
		p := &e.personnel[pi]
		for d := 1; d <= e.cal.NumDays(); d++ {
			if e.leaves.Unavailable(p.ID, d) {
				m.builder.AddEquality(m.w[pi][d-1], cpmodel.NewConstant(0))
			}
		}
	}
}

// addRoleConstraints (d) 非轮班人员仅可上普通平日的白班
func (e *Engine) addRoleConstraints(m *rosterModel) {
	zero := cpmodel.NewConstant(0)
	for pi := range e.personnel {
		if e.personnel[pi].Role != model.RoleNonShift {
			continue
		}
		for d := 1; d <= e.cal.NumDays(); d++ {
			m.builder.AddEquality(m.x[pi][d-1][idxS], zero)
			m.builder.AddEquality(m.x[pi][d-1][idxM], zero)
			if !e.cal.IsPlainWeekday(d) {
				m.builder.AddEquality(m.x[pi][d-1][idxP], zero)
			}
		}
	}
}

// addTransitionConstraints (e) 相邻两天的班别衔接规则
// 大夜后次日只能大夜或休息；小夜后次日不可白班
func (e *Engine) addTransitionConstraints(m *rosterModel) {
	for pi := range e.personnel {
		for d := 0; d < e.cal.NumDays()-1; d++ {
			// M -> 非P
			m.builder.AddLinearConstraint(
				cpmodel.NewLinearExpr().AddSum(m.x[pi][d][idxM], m.x[pi][d+1][idxP]), 0, 1)
			// M -> 非S
			m.builder.AddLinearConstraint(
				cpmodel.NewLinearExpr().AddSum(m.x[pi][d][idxM], m.x[pi][d+1][idxS]), 0, 1)
			// S -> 非P
			m.builder.AddLinearConstraint(
				cpmodel.NewLinearExpr().AddSum(m.x[pi][d][idxS], m.x[pi][d+1][idxP]), 0, 1)
		}
	}
}

// addConsecutiveWorkCap (f) 任意6天窗口内至多工作5天
func (e *Engine) addConsecutiveWorkCap(m *rosterModel) {
	for pi := range e.personnel {
		for d := 0; d+5 < e.cal.NumDays(); d++ {
			window := cpmodel.NewLinearExpr()
			for i := d; i <= d+5; i++ {
				window.Add(m.w[pi][i])
			}
			m.builder.AddLinearConstraint(window, 0, maxConsecutiveWorkDays)
		}
	}
}

// addConsecutiveNightCap (g) 任意3天窗口内至多2个大夜
func (e *Engine) addConsecutiveNightCap(m *rosterModel) {
	for pi := range e.personnel {
		for d := 0; d+2 < e.cal.NumDays(); d++ {
			window := cpmodel.NewLinearExpr().
				AddSum(m.x[pi][d][idxM], m.x[pi][d+1][idxM], m.x[pi][d+2][idxM])
			m.builder.AddLinearConstraint(window, 0, maxConsecutiveNights)
		}
	}
}

// addMandatoryRestConstraints (h) 大夜连班后的强制休息
// 单夜：x[d,M]=1 且 x[d+1,M]=0 时 w[d+1]=0，线性化为 x[d,M] - x[d+1,M] + w[d+1] ≤ 1
// 双夜：x[d,M]=x[d+1,M]=1 时 w[d+2]=w[d+3]=0，线性化为 x[d,M] + x[d+1,M] + w[d+k] ≤ 2
// 连班到达月末时，超出月份的休息义务自然消失
// 若应休日本就是休假日，(c) 已令 w=0，约束平凡满足
func (e *Engine) addMandatoryRestConstraints(m *rosterModel) {
	numDays := e.cal.NumDays()
	for pi := range e.personnel {
		for d := 0; d < numDays-1; d++ {
			single := cpmodel.NewLinearExpr().
				AddTerm(m.x[pi][d][idxM], 1).
				AddTerm(m.x[pi][d+1][idxM], -1).
				AddTerm(m.w[pi][d+1], 1)
			m.builder.AddLinearConstraint(single, -1, 1)
		}

		for d := 0; d < numDays-1; d++ {
			for _, k := range []int{2, 3} {
				if d+k >= numDays {
					break
				}
				double := cpmodel.NewLinearExpr().
					AddSum(m.x[pi][d][idxM], m.x[pi][d+1][idxM], m.w[pi][d+k])
				m.builder.AddLinearConstraint(double, 0, 2)
			}
		}
	}
}

// addMonthlyNightCap (i) 每人每月大夜总数上限
func (e *Engine) addMonthlyNightCap(m *rosterModel) {
	limit := int64(e.req.Config.MaxNightShifts)
	for pi := range e.personnel {
		nights := cpmodel.NewLinearExpr()
		for d := 0; d < e.cal.NumDays(); d++ {
			nights.Add(m.x[pi][d][idxM])
		}
		m.builder.AddLinearConstraint(nights, 0, limit)
	}
}

// addNonShiftMonthlyCap 非轮班人员每月工作日上限（配置为0时不限）
func (e *Engine) addNonShiftMonthlyCap(m *rosterModel) {
	if e.req.Config.MaxNonShift <= 0 {
		return
	}
	limit := int64(e.req.Config.MaxNonShift)
	for pi := range e.personnel {
		if e.personnel[pi].Role != model.RoleNonShift {
			continue
		}
		worked := cpmodel.NewLinearExpr()
		for d := 0; d < e.cal.NumDays(); d++ {
			worked.Add(m.w[pi][d])
		}
		m.builder.AddLinearConstraint(worked, 0, limit)
	}
}
