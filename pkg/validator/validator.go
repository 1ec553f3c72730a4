// Package validator 对生成的排班做独立的事后校验
// 校验器不修改排班，只复核每条硬规则并报告违反，是测试的基准判据
package validator

import (
	"sort"

	"github.com/yipai/yipai/pkg/model"
	"github.com/yipai/yipai/pkg/roster"
)

// RuleID 规则标识
type RuleID string

const (
	RuleCoverage         RuleID = "coverage"          // 逐日逐班人数
	RuleSingleShift      RuleID = "single_shift"      // 每人每天至多一班
	RuleLeave            RuleID = "leave"             // 休假日不排班
	RuleRole             RuleID = "role"              // 非轮班人员班别限制
	RuleTransition       RuleID = "transition"        // 相邻日班别衔接
	RuleConsecutiveWork  RuleID = "consecutive_work"  // 连续工作上限
	RuleConsecutiveNight RuleID = "consecutive_night" // 连续大夜上限
	RuleMandatoryRest    RuleID = "mandatory_rest"    // 大夜后强制休息
	RuleNightCap         RuleID = "night_cap"         // 每月大夜上限
	RuleShape            RuleID = "shape"             // 输出结构完整性
)

// Violation 规则违反详情
type Violation struct {
	Rule     RuleID `json:"rule"`
	PersonID int    `json:"person_id,omitempty"`
	Date     string `json:"date,omitempty"`
	Message  string `json:"message"`
}

// Rule 校验规则接口
type Rule interface {
	// ID 返回规则标识
	ID() RuleID

	// Name 返回规则名称
	Name() string

	// Check 对整份排班复核本规则
	Check(ctx *Context) []Violation
}

// Context 校验上下文：请求输入加上待审的排班及其索引
type Context struct {
	Personnel []model.Person
	Config    *model.RosterConfig
	Cal       *roster.Calendar
	Cov       *roster.CoverageTable
	Leaves    *roster.LeaveIndex
	Schedule  model.Schedule

	// 反向索引：人员ID -> 日号 -> 班别
	shiftsByPerson map[int]map[int]model.ShiftType
}

// PersonShifts 返回某人的 日号 -> 班别 索引
func (c *Context) PersonShifts(id int) map[int]model.ShiftType {
	return c.shiftsByPerson[id]
}

// Worked 某人第 d 天是否有任何班
func (c *Context) Worked(id, d int) bool {
	_, ok := c.shiftsByPerson[id][d]
	return ok
}

// OnNight 某人第 d 天是否上大夜
func (c *Context) OnNight(id, d int) bool {
	return c.shiftsByPerson[id][d] == model.ShiftNight
}

// buildIndexes 构建反向索引
func (c *Context) buildIndexes() {
	c.shiftsByPerson = make(map[int]map[int]model.ShiftType, len(c.Personnel))
	for i := range c.Personnel {
		id := c.Personnel[i].ID
		c.shiftsByPerson[id] = c.Schedule.PersonShifts(c.Cal.DateStrs(), id)
	}
}

// Validator 规则校验器
type Validator struct {
	req   *model.GenerateRequest
	rules []Rule
}

// New 创建校验器，注册全部硬规则
func New(req *model.GenerateRequest) *Validator {
	roster.Normalize(req)
	return &Validator{
		req: req,
		rules: []Rule{
			&shapeRule{},
			&coverageRule{},
			&singleShiftRule{},
			&leaveRule{},
			&roleRule{},
			&transitionRule{},
			&consecutiveWorkRule{},
			&consecutiveNightRule{},
			&mandatoryRestRule{},
			&nightCapRule{},
		},
	}
}

// Rules 返回已注册规则
func (v *Validator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}

// Check 复核整份排班，返回全部违反（空切片表示通过）
func (v *Validator) Check(schedule model.Schedule) []Violation {
	cal, err := roster.NewCalendar(&v.req.Config)
	if err != nil {
		return []Violation{{Rule: RuleShape, Message: "排班配置无效: " + err.Error()}}
	}

	ctx := &Context{
		Personnel: v.req.Personnel,
		Config:    &v.req.Config,
		Cal:       cal,
		Cov:       roster.NewCoverageTable(cal),
		Leaves:    roster.NewLeaveIndex(v.req.Personnel),
		Schedule:  schedule,
	}
	ctx.buildIndexes()

	var violations []Violation
	for _, rule := range v.rules {
		violations = append(violations, rule.Check(ctx)...)
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Date != violations[j].Date {
			return violations[i].Date < violations[j].Date
		}
		return violations[i].PersonID < violations[j].PersonID
	})
	return violations
}
