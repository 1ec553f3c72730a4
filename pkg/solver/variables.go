package solver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// 班别在决策变量中的下标
const (
	idxP = 0
	idxS = 1
	idxM = 2
)

// rosterModel 一次求解的变量与模型
type rosterModel struct {
	builder *cpmodel.Builder

	// x[p][d][s]：人员 p 在第 d+1 天上班别 s
	x [][][3]cpmodel.BoolVar

	// w[p][d]：人员 p 在第 d+1 天是否上班（经线性等式与 x 通道关联）
	w [][]cpmodel.BoolVar

	// 工作量平衡目标的辅助变量
	loadMin cpmodel.IntVar
	loadMax cpmodel.IntVar
}

// buildModel 分配决策变量并张贴全部约束与目标
func (e *Engine) buildModel() *rosterModel {
	numDays := e.cal.NumDays()

	m := &rosterModel{
		builder: cpmodel.NewCpModelBuilder(),
		x:       make([][][3]cpmodel.BoolVar, len(e.personnel)),
		w:       make([][]cpmodel.BoolVar, len(e.personnel)),
	}

	for pi := range e.personnel {
		m.x[pi] = make([][3]cpmodel.BoolVar, numDays)
		m.w[pi] = make([]cpmodel.BoolVar, numDays)
		for d := 0; d < numDays; d++ {
			for s := 0; s < 3; s++ {
				m.x[pi][d][s] = m.builder.NewBoolVar()
			}
			m.w[pi][d] = m.builder.NewBoolVar()
		}
	}

	e.addConstraints(m)
	e.addObjective(m)
	return m
}

// dayWork 人员 pi 在第 d 天（0起）的上班人次表达式
func (m *rosterModel) dayWork(pi, d int) *cpmodel.LinearExpr {
	return cpmodel.NewLinearExpr().AddSum(m.x[pi][d][idxP], m.x[pi][d][idxS], m.x[pi][d][idxM])
}
