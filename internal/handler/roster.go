// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yipai/yipai/internal/config"
	"github.com/yipai/yipai/internal/metrics"
	"github.com/yipai/yipai/internal/repository"
	"github.com/yipai/yipai/pkg/errors"
	"github.com/yipai/yipai/pkg/logger"
	"github.com/yipai/yipai/pkg/model"
	"github.com/yipai/yipai/pkg/roster"
	"github.com/yipai/yipai/pkg/solver"
	"github.com/yipai/yipai/pkg/validator"
)

// RosterHandler 排班处理器
type RosterHandler struct {
	cfg     *config.SolverConfig
	archive *repository.ArchiveRepository // 可选，未启用归档时为 nil
}

// NewRosterHandler 创建排班处理器
func NewRosterHandler(cfg *config.SolverConfig, archive *repository.ArchiveRepository) *RosterHandler {
	return &RosterHandler{cfg: cfg, archive: archive}
}

// solverOptions 从配置组装驱动参数
func (h *RosterHandler) solverOptions() solver.Options {
	opts := solver.DefaultOptions()
	if h.cfg != nil {
		opts.TimeLimit = h.cfg.TimeLimit
		opts.Workers = h.cfg.Workers
		opts.GapLimit = h.cfg.GapLimit
		opts.StopAfterFirstSolution = h.cfg.StopAfterFirstSolution
		opts.Deterministic = h.cfg.Deterministic
		opts.RandomSeed = h.cfg.RandomSeed
	}
	return opts
}

// Generate 生成月度排班
func (h *RosterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	engine, appErr := solver.New(&req, h.solverOptions())
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result, appErr := engine.Solve()
	if appErr != nil {
		metrics.ObserveSolve(string(appErr.Code), 0)
		respondError(w, appErr)
		return
	}

	metrics.ObserveSolve(string(result.Status), result.Duration)
	metrics.SetImbalance(req.Config.Month, result.Imbalance)

	h.archiveResult(r.Context(), &req, result)

	respondJSON(w, http.StatusOK, model.GenerateResponse{Schedule: result.Schedule})
}

// archiveResult 归档求解结果（启用时）
func (h *RosterHandler) archiveResult(ctx context.Context, req *model.GenerateRequest, result *solver.Result) {
	if h.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := h.archive.Save(ctx, &repository.ArchivedRoster{
		Month:           req.Config.Month,
		Status:          string(result.Status),
		Imbalance:       result.Imbalance,
		PersonnelCount:  len(req.Personnel),
		Schedule:        result.Schedule,
		SolveDurationMS: result.Duration.Milliseconds(),
	})
	if err != nil {
		// 归档失败不影响响应
		logger.Warn().Err(err).Str("month", req.Config.Month).Msg("排班归档失败")
	}
}

// ValidateRequest 校验请求：输入加待审排班
type ValidateRequest struct {
	Personnel []model.Person     `json:"personnel"`
	Config    model.RosterConfig `json:"config"`
	Schedule  model.Schedule     `json:"schedule"`
}

// ValidateResponse 校验响应
type ValidateResponse struct {
	Valid      bool                  `json:"valid"`
	Violations []validator.Violation `json:"violations,omitempty"`
}

// Validate 校验一份排班是否满足全部硬规则
func (h *RosterHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	genReq := &model.GenerateRequest{Personnel: req.Personnel, Config: req.Config}
	roster.Normalize(genReq)
	if appErr := roster.ValidateRequest(genReq); appErr != nil {
		respondError(w, appErr)
		return
	}

	violations := validator.New(genReq).Check(req.Schedule)
	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

// ArchiveLatest 取某月最近一次归档的排班
func (h *RosterHandler) ArchiveLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.archive == nil {
		respondError(w, errors.New(errors.CodeNotFound, "排班归档未启用"))
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		respondError(w, errors.InvalidInput("month", "缺少月份参数"))
		return
	}

	record, err := h.archive.GetLatest(r.Context(), month)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取排班归档失败"))
		return
	}
	if record == nil {
		respondError(w, errors.New(errors.CodeNotFound, "该月份没有归档排班"))
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// respondJSON 输出JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("编码响应失败")
	}
}

// respondError 输出错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	respondJSON(w, err.HTTPStatus, err)
}
