// Package solver 将月度排班规则编译为 CP-SAT 决策模型并驱动求解
package solver

import (
	"sort"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"

	"github.com/yipai/yipai/pkg/errors"
	"github.com/yipai/yipai/pkg/logger"
	"github.com/yipai/yipai/pkg/model"
	"github.com/yipai/yipai/pkg/roster"
	"github.com/yipai/yipai/pkg/validator"
)

// Status 求解结局
type Status string

const (
	StatusOptimal           Status = "OPTIMAL"
	StatusFeasible          Status = "FEASIBLE"
	StatusInfeasible        Status = "INFEASIBLE"
	StatusTimeoutNoSolution Status = "TIMEOUT_NO_SOLUTION"
)

// Options 驱动参数
type Options struct {
	TimeLimit              time.Duration // 墙钟时限
	Workers                int           // 求解器工作线程数（0=引擎缺省）
	GapLimit               float64       // 相对目标差容忍度
	StopAfterFirstSolution bool          // 找到首个可行解即停
	Deterministic          bool          // 固定种子与单线程，保证可复现
	RandomSeed             int
}

// DefaultOptions 返回缺省驱动参数
func DefaultOptions() Options {
	return Options{TimeLimit: 60 * time.Second}
}

// Result 求解结果
type Result struct {
	Status    Status         `json:"status"`
	Schedule  model.Schedule `json:"schedule,omitempty"`
	Imbalance int64          `json:"imbalance"` // 目标值：最大与最小工作量之差
	Duration  time.Duration  `json:"duration"`
}

// Engine 单次求解引擎
// 所有变量与约束只为本次求解而建，随响应编码后一并释放
type Engine struct {
	req       *model.GenerateRequest
	cal       *roster.Calendar
	cov       *roster.CoverageTable
	leaves    *roster.LeaveIndex
	personnel []model.Person // 按ID升序
	opts      Options
	log       *logger.RosterLogger
}

// New 创建求解引擎
// 输入验证与人力粗检在建模之前完成并短路返回
func New(req *model.GenerateRequest, opts Options) (*Engine, *errors.AppError) {
	roster.Normalize(req)

	if appErr := roster.ValidateRequest(req); appErr != nil {
		return nil, appErr
	}

	cal, err := roster.NewCalendar(&req.Config)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "配置无效")
	}
	cov := roster.NewCoverageTable(cal)
	leaves := roster.NewLeaveIndex(req.Personnel)

	if appErr := roster.CheckCapacity(req, cal, cov, leaves); appErr != nil {
		return nil, appErr
	}

	personnel := make([]model.Person, len(req.Personnel))
	copy(personnel, req.Personnel)
	sort.Slice(personnel, func(i, j int) bool { return personnel[i].ID < personnel[j].ID })

	if opts.TimeLimit <= 0 {
		opts.TimeLimit = 60 * time.Second
	}

	return &Engine{
		req:       req,
		cal:       cal,
		cov:       cov,
		leaves:    leaves,
		personnel: personnel,
		opts:      opts,
		log:       logger.NewRosterLogger(),
	}, nil
}

// Calendar 返回引擎使用的月历
func (e *Engine) Calendar() *roster.Calendar {
	return e.cal
}

// Solve 建模、求解并编码排班结果
func (e *Engine) Solve() (*Result, *errors.AppError) {
	start := time.Now()
	e.log.StartSolve(e.req.Config.Month, len(e.personnel), e.cal.NumDays())

	m := e.buildModel()

	modelProto, err := m.builder.Model()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "构建 CP-SAT 模型失败")
	}

	resp, err := cpmodel.SolveCpModelWithParameters(modelProto, e.satParameters())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "CP-SAT 求解失败")
	}

	duration := time.Since(start)

	switch resp.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL, cmpb.CpSolverStatus_FEASIBLE:
		result := &Result{
			Status:   StatusOptimal,
			Duration: duration,
		}
		if resp.GetStatus() == cmpb.CpSolverStatus_FEASIBLE {
			result.Status = StatusFeasible
		}
		result.Schedule = e.encodeSchedule(m, resp)
		result.Imbalance = int64(resp.GetObjectiveValue())

		// 事后独立校验：可行解上出现违反即为模型缺陷
		if appErr := e.audit(result.Schedule); appErr != nil {
			return nil, appErr
		}

		e.log.SolveComplete(e.req.Config.Month, string(result.Status), duration, result.Imbalance)
		return result, nil

	case cmpb.CpSolverStatus_INFEASIBLE:
		e.log.SolveFailed(e.req.Config.Month, string(StatusInfeasible), duration)
		return nil, errors.New(errors.CodeInfeasible, "约束条件下不存在可行排班")

	case cmpb.CpSolverStatus_MODEL_INVALID:
		return nil, errors.New(errors.CodeInternal, "CP-SAT 模型无效")

	default: // UNKNOWN：时限内未找到任何可行解
		e.log.SolveFailed(e.req.Config.Month, string(StatusTimeoutNoSolution), duration)
		return nil, errors.New(errors.CodeTimeout, "求解超时，未找到任何可行解")
	}
}

// satParameters 组装求解器参数
func (e *Engine) satParameters() *sppb.SatParameters {
	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(e.opts.TimeLimit.Seconds()),
	}
	if e.opts.Workers > 0 {
		params.NumWorkers = proto.Int32(int32(e.opts.Workers))
	}
	if e.opts.GapLimit > 0 {
		params.RelativeGapLimit = proto.Float64(e.opts.GapLimit)
	}
	if e.opts.StopAfterFirstSolution {
		params.StopAfterFirstSolution = proto.Bool(true)
	}
	if e.opts.Deterministic {
		params.NumWorkers = proto.Int32(1)
		params.RandomSeed = proto.Int32(int32(e.opts.RandomSeed))
	}
	return params
}

// audit 用独立校验器复核每条硬规则
func (e *Engine) audit(schedule model.Schedule) *errors.AppError {
	violations := validator.New(e.req).Check(schedule)
	if len(violations) == 0 {
		return nil
	}
	for _, v := range violations {
		e.log.RuleViolation(string(v.Rule), v.Message)
	}
	return errors.ValidationFailed(violations[0].Message).
		WithField("violations", violations)
}
