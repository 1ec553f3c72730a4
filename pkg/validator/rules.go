package validator

import (
	"fmt"

	"github.com/yipai/yipai/pkg/model"
)

// shapeRule 输出结构完整性：每天都有键，且不含未知人员
type shapeRule struct{}

func (r *shapeRule) ID() RuleID   { return RuleShape }
func (r *shapeRule) Name() string { return "输出结构完整性" }

func (r *shapeRule) Check(ctx *Context) []Violation {
	var violations []Violation

	known := make(map[int]bool, len(ctx.Personnel))
	for i := range ctx.Personnel {
		known[ctx.Personnel[i].ID] = true
	}

	for d := 1; d <= ctx.Cal.NumDays(); d++ {
		date := ctx.Cal.DateStr(d)
		day := ctx.Schedule[date]
		if day == nil {
			violations = append(violations, Violation{
				Rule: RuleShape, Date: date,
				Message: fmt.Sprintf("排班缺少日期 %s", date),
			})
			continue
		}
		for _, st := range model.ShiftTypes {
			for _, id := range day.Get(st) {
				if !known[id] {
					violations = append(violations, Violation{
						Rule: RuleShape, PersonID: id, Date: date,
						Message: fmt.Sprintf("%s 班别 %s 出现未知人员 %d", date, st, id),
					})
				}
			}
		}
	}

	if len(ctx.Schedule) != ctx.Cal.NumDays() {
		violations = append(violations, Violation{
			Rule:    RuleShape,
			Message: fmt.Sprintf("排班含 %d 个日期，应为 %d 个", len(ctx.Schedule), ctx.Cal.NumDays()),
		})
	}

	return violations
}

// coverageRule 逐日逐班人数必须等于需求
type coverageRule struct{}

func (r *coverageRule) ID() RuleID   { return RuleCoverage }
func (r *coverageRule) Name() string { return "逐日逐班人数" }

func (r *coverageRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for d := 1; d <= ctx.Cal.NumDays(); d++ {
		day := ctx.Schedule[ctx.Cal.DateStr(d)]
		if day == nil {
			day = model.NewDayShifts() // 缺失日期按全空计数，缺键本身由 shapeRule 报告
		}
		for _, st := range model.ShiftTypes {
			required := ctx.Cov.Required(d, st)
			assigned := len(day.Get(st))
			if assigned != required {
				violations = append(violations, Violation{
					Rule: RuleCoverage, Date: ctx.Cal.DateStr(d),
					Message: fmt.Sprintf("%s 班别 %s 排 %d 人，需求 %d 人",
						ctx.Cal.DateStr(d), st, assigned, required),
				})
			}
		}
	}
	return violations
}

// singleShiftRule 每人每天至多一个班别
type singleShiftRule struct{}

func (r *singleShiftRule) ID() RuleID   { return RuleSingleShift }
func (r *singleShiftRule) Name() string { return "每人每天至多一班" }

func (r *singleShiftRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for d := 1; d <= ctx.Cal.NumDays(); d++ {
		day := ctx.Schedule[ctx.Cal.DateStr(d)]
		if day == nil {
			continue
		}
		count := make(map[int]int)
		for _, st := range model.ShiftTypes {
			for _, id := range day.Get(st) {
				count[id]++
			}
		}
		for id, n := range count {
			if n > 1 {
				violations = append(violations, Violation{
					Rule: RuleSingleShift, PersonID: id, Date: ctx.Cal.DateStr(d),
					Message: fmt.Sprintf("人员 %d 在 %s 被排 %d 个班", id, ctx.Cal.DateStr(d), n),
				})
			}
		}
	}
	return violations
}

// leaveRule 休假日不得有任何排班
type leaveRule struct{}

func (r *leaveRule) ID() RuleID   { return RuleLeave }
func (r *leaveRule) Name() string { return "休假日不排班" }

func (r *leaveRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for i := range ctx.Personnel {
		id := ctx.Personnel[i].ID
		for d := range ctx.Leaves.Days(id) {
			if ctx.Worked(id, d) {
				violations = append(violations, Violation{
					Rule: RuleLeave, PersonID: id, Date: ctx.Cal.DateStr(d),
					Message: fmt.Sprintf("人员 %d 在休假日 %s 被排班", id, ctx.Cal.DateStr(d)),
				})
			}
		}
	}
	return violations
}

// roleRule 非轮班人员仅可上普通平日的白班
type roleRule struct{}

func (r *roleRule) ID() RuleID   { return RuleRole }
func (r *roleRule) Name() string { return "非轮班人员班别限制" }

func (r *roleRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for i := range ctx.Personnel {
		p := &ctx.Personnel[i]
		if p.Role != model.RoleNonShift {
			continue
		}
		for d, st := range ctx.PersonShifts(p.ID) {
			if st != model.ShiftMorning || !ctx.Cal.IsPlainWeekday(d) {
				violations = append(violations, Violation{
					Rule: RuleRole, PersonID: p.ID, Date: ctx.Cal.DateStr(d),
					Message: fmt.Sprintf("非轮班人员 %d 在 %s 被排班别 %s", p.ID, ctx.Cal.DateStr(d), st),
				})
			}
		}
	}
	return violations
}

// transitionRule 相邻两天的班别衔接
// 大夜后次日只能大夜或休息；小夜后次日不可白班
type transitionRule struct{}

func (r *transitionRule) ID() RuleID   { return RuleTransition }
func (r *transitionRule) Name() string { return "相邻日班别衔接" }

func (r *transitionRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for i := range ctx.Personnel {
		id := ctx.Personnel[i].ID
		shifts := ctx.PersonShifts(id)
		for d := 1; d < ctx.Cal.NumDays(); d++ {
			prev, prevOK := shifts[d]
			next, nextOK := shifts[d+1]
			if !prevOK || !nextOK {
				continue
			}
			bad := (prev == model.ShiftNight && next != model.ShiftNight) ||
				(prev == model.ShiftEvening && next == model.ShiftMorning)
			if bad {
				violations = append(violations, Violation{
					Rule: RuleTransition, PersonID: id, Date: ctx.Cal.DateStr(d + 1),
					Message: fmt.Sprintf("人员 %d 班别衔接 %s->%s 不合法（%s）",
						id, prev, next, ctx.Cal.DateStr(d+1)),
				})
			}
		}
	}
	return violations
}

// consecutiveWorkRule 任意6天窗口内至多工作5天
type consecutiveWorkRule struct{}

func (r *consecutiveWorkRule) ID() RuleID   { return RuleConsecutiveWork }
func (r *consecutiveWorkRule) Name() string { return "连续工作上限" }

func (r *consecutiveWorkRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for i := range ctx.Personnel {
		id := ctx.Personnel[i].ID
		for d := 1; d+5 <= ctx.Cal.NumDays(); d++ {
			worked := 0
			for j := d; j <= d+5; j++ {
				if ctx.Worked(id, j) {
					worked++
				}
			}
			if worked > 5 {
				violations = append(violations, Violation{
					Rule: RuleConsecutiveWork, PersonID: id, Date: ctx.Cal.DateStr(d),
					Message: fmt.Sprintf("人员 %d 自 %s 起连续6天全部上班", id, ctx.Cal.DateStr(d)),
				})
			}
		}
	}
	return violations
}

// consecutiveNightRule 任意3天窗口内至多2个大夜
type consecutiveNightRule struct{}

func (r *consecutiveNightRule) ID() RuleID   { return RuleConsecutiveNight }
func (r *consecutiveNightRule) Name() string { return "连续大夜上限" }

func (r *consecutiveNightRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for i := range ctx.Personnel {
		id := ctx.Personnel[i].ID
		for d := 1; d+2 <= ctx.Cal.NumDays(); d++ {
			if ctx.OnNight(id, d) && ctx.OnNight(id, d+1) && ctx.OnNight(id, d+2) {
				violations = append(violations, Violation{
					Rule: RuleConsecutiveNight, PersonID: id, Date: ctx.Cal.DateStr(d),
					Message: fmt.Sprintf("人员 %d 自 %s 起连上3个大夜", id, ctx.Cal.DateStr(d)),
				})
			}
		}
	}
	return violations
}

// mandatoryRestRule 大夜连班后的强制休息
// 长度为 k 的极大大夜连班（k<=2）之后的 k 天不得有任何排班，月末截断
type mandatoryRestRule struct{}

func (r *mandatoryRestRule) ID() RuleID   { return RuleMandatoryRest }
func (r *mandatoryRestRule) Name() string { return "大夜后强制休息" }

func (r *mandatoryRestRule) Check(ctx *Context) []Violation {
	var violations []Violation
	numDays := ctx.Cal.NumDays()

	for i := range ctx.Personnel {
		id := ctx.Personnel[i].ID
		d := 1
		for d <= numDays {
			if !ctx.OnNight(id, d) {
				d++
				continue
			}
			// 极大连班 [d, end]
			end := d
			for end+1 <= numDays && ctx.OnNight(id, end+1) {
				end++
			}
			k := end - d + 1
			if k <= 2 {
				for j := 1; j <= k && end+j <= numDays; j++ {
					if ctx.Worked(id, end+j) {
						violations = append(violations, Violation{
							Rule: RuleMandatoryRest, PersonID: id, Date: ctx.Cal.DateStr(end + j),
							Message: fmt.Sprintf("人员 %d 连上 %d 个大夜后应于 %s 休息", id, k, ctx.Cal.DateStr(end+j)),
						})
					}
				}
			}
			d = end + 1
		}
	}
	return violations
}

// nightCapRule 每人每月大夜总数上限
type nightCapRule struct{}

func (r *nightCapRule) ID() RuleID   { return RuleNightCap }
func (r *nightCapRule) Name() string { return "每月大夜上限" }

func (r *nightCapRule) Check(ctx *Context) []Violation {
	var violations []Violation
	for i := range ctx.Personnel {
		id := ctx.Personnel[i].ID
		nights := 0
		for d := 1; d <= ctx.Cal.NumDays(); d++ {
			if ctx.OnNight(id, d) {
				nights++
			}
		}
		if nights > ctx.Config.MaxNightShifts {
			violations = append(violations, Violation{
				Rule: RuleNightCap, PersonID: id,
				Message: fmt.Sprintf("人员 %d 本月大夜 %d 班，超过上限 %d", id, nights, ctx.Config.MaxNightShifts),
			})
		}
	}
	return violations
}
