package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yipai/yipai/pkg/errors"
	"github.com/yipai/yipai/pkg/model"
	"github.com/yipai/yipai/pkg/stats"
)

// FairnessRequest 公平性分析请求
type FairnessRequest struct {
	Personnel []model.Person     `json:"personnel"`
	Config    model.RosterConfig `json:"config"`
	Schedule  model.Schedule     `json:"schedule"`
}

// FairnessHandler 工作量公平性分析
func FairnessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req FairnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	genReq := &model.GenerateRequest{Personnel: req.Personnel, Config: req.Config}
	metrics, err := stats.NewFairnessAnalyzer().Analyze(genReq, req.Schedule)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "配置无效"))
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
