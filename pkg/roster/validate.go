package roster

import (
	"fmt"

	"github.com/yipai/yipai/pkg/errors"
	"github.com/yipai/yipai/pkg/model"
)

// Normalize 填充请求缺省值
func Normalize(req *model.GenerateRequest) {
	if req.Config.MaxNightShifts == 0 {
		req.Config.MaxNightShifts = model.DefaultMaxNightShifts
	}
}

// ValidateRequest 在建模之前验证请求输入
// 任何失败都以 INVALID_INPUT 短路返回
func ValidateRequest(req *model.GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	cal, err := NewCalendar(&req.Config)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "配置无效").WithDetails(err.Error())
	}
	numDays := cal.NumDays()

	if len(req.Personnel) == 0 {
		ve.Add("personnel", "人员列表不能为空")
	}

	seen := make(map[int]bool, len(req.Personnel))
	for i := range req.Personnel {
		p := &req.Personnel[i]
		field := fmt.Sprintf("personnel[%d]", i)

		if p.ID <= 0 {
			ve.Add(field+".id", "人员ID必须为正整数")
		}
		if seen[p.ID] {
			ve.Add(field+".id", fmt.Sprintf("人员ID %d 重复", p.ID))
		}
		seen[p.ID] = true

		if !p.Role.Valid() {
			ve.Add(field+".role", fmt.Sprintf("角色必须为 %s 或 %s", model.RoleShift, model.RoleNonShift))
		}

		validateLeaveDays(ve, field+".requested_leaves", p.RequestedLeaves, numDays)
		validateLeaveDays(ve, field+".extra_leaves", p.ExtraLeaves, numDays)
		validateLeaveDays(ve, field+".annual_leaves", p.AnnualLeaves, numDays)

		// 同一天出现在多类休假中视为互相矛盾的输入
		kinds := make(map[int]int)
		for _, d := range p.RequestedLeaves {
			kinds[d]++
		}
		for _, d := range p.ExtraLeaves {
			kinds[d]++
		}
		for _, d := range p.AnnualLeaves {
			kinds[d]++
		}
		for d, n := range kinds {
			if n > 1 {
				ve.Add(field, fmt.Sprintf("第 %d 天同时出现在多类休假中", d))
			}
		}
	}

	for _, h := range req.Config.PublicHolidays {
		if h < 1 || h > numDays {
			ve.Add("config.public_holidays", fmt.Sprintf("日号 %d 超出月份范围 1..%d", h, numDays))
		}
	}

	for dateStr, cov := range req.Config.SpecialDates {
		if cov.P < 0 || cov.S < 0 || cov.M < 0 {
			ve.Add("config.special_dates", fmt.Sprintf("%s 的人数需求不能为负", dateStr))
		}
	}

	if req.Config.MaxNightShifts < 0 {
		ve.Add("config.max_night_shifts", "大夜上限不能为负")
	}
	if req.Config.MaxNonShift < 0 {
		ve.Add("config.max_non_shift", "非轮班工作日上限不能为负")
	}
	if req.Config.MaxDefaultLeaves < 0 {
		ve.Add("config.max_default_leaves", "缺省休假数不能为负")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// validateLeaveDays 检查休假日号是否在月份范围内
func validateLeaveDays(ve *errors.ValidationErrors, field string, days []int, numDays int) {
	for _, d := range days {
		if d < 1 || d > numDays {
			ve.Add(field, fmt.Sprintf("日号 %d 超出月份范围 1..%d", d, numDays))
		}
	}
}

// CheckCapacity 求解前的人力供需粗检
// 只拦截明显的供给缺口，更细的不可行性交给求解器判定
func CheckCapacity(req *model.GenerateRequest, cal *Calendar, cov *CoverageTable, leaves *LeaveIndex) *errors.AppError {
	numDays := cal.NumDays()

	// 全月人次供给
	supply := 0
	nightSupply := 0
	for i := range req.Personnel {
		p := &req.Personnel[i]
		switch p.Role {
		case model.RoleShift:
			avail := numDays - leaves.Count(p.ID)
			supply += avail
			if avail < req.Config.MaxNightShifts {
				nightSupply += avail
			} else {
				nightSupply += req.Config.MaxNightShifts
			}
		case model.RoleNonShift:
			avail := 0
			for d := 1; d <= numDays; d++ {
				if cal.IsPlainWeekday(d) && !leaves.Unavailable(p.ID, d) {
					avail++
				}
			}
			if req.Config.MaxNonShift > 0 && avail > req.Config.MaxNonShift {
				avail = req.Config.MaxNonShift
			}
			supply += avail
		}
	}

	demand := cov.TotalDemand()
	if demand > supply {
		return errors.InsufficientCapacity(
			fmt.Sprintf("全月需求 %d 人次，可供给上限 %d 人次", demand, supply))
	}

	nightDemand := cov.NightDemand()
	if nightDemand > nightSupply {
		return errors.InsufficientCapacity(
			fmt.Sprintf("全月大夜需求 %d 人次，受大夜上限限制的供给上限 %d 人次", nightDemand, nightSupply))
	}

	// 逐日可到岗人数
	for d := 1; d <= numDays; d++ {
		available := 0
		for i := range req.Personnel {
			p := &req.Personnel[i]
			if leaves.Unavailable(p.ID, d) {
				continue
			}
			if p.Role == model.RoleNonShift && !cal.IsPlainWeekday(d) {
				continue
			}
			available++
		}
		if need := cov.DayCoverage(d).Total(); need > available {
			return errors.InsufficientCapacity(
				fmt.Sprintf("%s 需求 %d 人，仅 %d 人可到岗", cal.DateStr(d), need, available))
		}
	}

	return nil
}
