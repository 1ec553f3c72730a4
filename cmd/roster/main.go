// YiPai 排班命令行工具
// 离线读取 JSON 请求文件生成或校验排班

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yipai/yipai/pkg/logger"
	"github.com/yipai/yipai/pkg/model"
	"github.com/yipai/yipai/pkg/roster"
	"github.com/yipai/yipai/pkg/solver"
	"github.com/yipai/yipai/pkg/stats"
	"github.com/yipai/yipai/pkg/validator"
)

var (
	requestPath   string
	schedulePath  string
	outputPath    string
	timeLimit     time.Duration
	deterministic bool

	rootCmd = &cobra.Command{
		Use:   "roster",
		Short: "医疗月度排班命令行工具",
		Long:  "读取 JSON 请求文件，离线生成满足全部硬规则的月度排班，或校验既有排班。",
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "生成月度排班",
		RunE:  runGenerate,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "校验一份排班是否满足全部硬规则",
		RunE:  runValidate,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "分析一份排班的工作量公平性",
		RunE:  runStats,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&requestPath, "file", "f", "request.json", "请求文件路径（JSON）")

	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出文件路径（缺省输出到标准输出）")
	generateCmd.Flags().DurationVar(&timeLimit, "time-limit", 60*time.Second, "求解时限")
	generateCmd.Flags().BoolVar(&deterministic, "deterministic", false, "固定种子与单线程，保证可复现")

	validateCmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "待校验的排班文件路径（JSON）")
	validateCmd.MarkFlagRequired("schedule")

	statsCmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "排班文件路径（JSON）")
	statsCmd.MarkFlagRequired("schedule")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	logger.Init(logger.Config{Level: "warn", Format: "console", Output: "stderr"})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(requestPath)
	if err != nil {
		return err
	}

	opts := solver.DefaultOptions()
	opts.TimeLimit = timeLimit
	opts.Deterministic = deterministic

	engine, appErr := solver.New(req, opts)
	if appErr != nil {
		return appErr
	}
	result, appErr := engine.Solve()
	if appErr != nil {
		return appErr
	}

	fmt.Fprintf(os.Stderr, "求解结局: %s，工作量失衡: %d，耗时: %s\n",
		result.Status, result.Imbalance, result.Duration.Round(time.Millisecond))

	return writeJSON(outputPath, model.GenerateResponse{Schedule: result.Schedule})
}

func runValidate(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(requestPath)
	if err != nil {
		return err
	}
	schedule, err := loadSchedule(schedulePath)
	if err != nil {
		return err
	}

	violations := validator.New(req).Check(schedule)
	if len(violations) == 0 {
		fmt.Println("排班通过全部硬规则校验")
		return nil
	}

	for _, v := range violations {
		fmt.Printf("[%s] %s\n", v.Rule, v.Message)
	}
	return fmt.Errorf("共 %d 条规则违反", len(violations))
}

func runStats(cmd *cobra.Command, args []string) error {
	req, err := loadRequest(requestPath)
	if err != nil {
		return err
	}
	schedule, err := loadSchedule(schedulePath)
	if err != nil {
		return err
	}

	metrics, err := stats.NewFairnessAnalyzer().Analyze(req, schedule)
	if err != nil {
		return err
	}
	return writeJSON("", metrics)
}

// loadRequest 读取并验证请求文件
func loadRequest(path string) (*model.GenerateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取请求文件失败: %w", err)
	}
	var req model.GenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("解析请求文件失败: %w", err)
	}
	roster.Normalize(&req)
	if appErr := roster.ValidateRequest(&req); appErr != nil {
		return nil, appErr
	}
	return &req, nil
}

// loadSchedule 读取排班文件，兼容 {schedule: ...} 包装与裸映射两种格式
func loadSchedule(path string) (model.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取排班文件失败: %w", err)
	}

	var wrapped model.GenerateResponse
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Schedule) > 0 {
		return wrapped.Schedule, nil
	}

	var schedule model.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("解析排班文件失败: %w", err)
	}
	return schedule, nil
}

// writeJSON 写出JSON，path 为空时输出到标准输出
func writeJSON(path string, data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("写出文件失败: %w", err)
	}
	return nil
}
