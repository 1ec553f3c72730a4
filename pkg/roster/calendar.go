// Package roster 提供月历、人数需求表与休假索引
package roster

import (
	"fmt"
	"time"

	"github.com/yipai/yipai/pkg/model"
)

// Calendar 月历：解析月份并对每一天分类
type Calendar struct {
	Year  int
	Month time.Month

	days     []time.Time
	dateStrs []string
	holidays map[int]bool
	special  map[int]model.Coverage // 日号 -> 特殊人数向量
}

// NewCalendar 从排班配置构建月历
func NewCalendar(cfg *model.RosterConfig) (*Calendar, error) {
	t, err := time.Parse("2006-01", cfg.Month)
	if err != nil {
		return nil, fmt.Errorf("月份格式应为 YYYY-MM: %w", err)
	}

	year, month := t.Year(), t.Month()
	numDays := daysInMonth(year, month)

	cal := &Calendar{
		Year:     year,
		Month:    month,
		days:     make([]time.Time, 0, numDays),
		dateStrs: make([]string, 0, numDays),
		holidays: make(map[int]bool, len(cfg.PublicHolidays)),
		special:  make(map[int]model.Coverage, len(cfg.SpecialDates)),
	}

	for d := 1; d <= numDays; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		cal.days = append(cal.days, date)
		cal.dateStrs = append(cal.dateStrs, date.Format("2006-01-02"))
	}

	for _, h := range cfg.PublicHolidays {
		cal.holidays[h] = true
	}

	for dateStr, cov := range cfg.SpecialDates {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("特殊日期格式应为 YYYY-MM-DD: %w", err)
		}
		if date.Year() != year || date.Month() != month {
			return nil, fmt.Errorf("特殊日期 %s 不在月份 %s 内", dateStr, cfg.Month)
		}
		cal.special[date.Day()] = cov
	}

	return cal, nil
}

// daysInMonth 返回该月天数
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NumDays 返回该月天数
func (c *Calendar) NumDays() int {
	return len(c.days)
}

// Date 返回第 d 天的日期（d 从 1 开始）
func (c *Calendar) Date(d int) time.Time {
	return c.days[d-1]
}

// DateStr 返回第 d 天的 ISO 日期字符串
func (c *Calendar) DateStr(d int) string {
	return c.dateStrs[d-1]
}

// DateStrs 返回全月 ISO 日期字符串（按时间顺序）
func (c *Calendar) DateStrs() []string {
	return c.dateStrs
}

// Category 返回第 d 天的类别
// 特殊日期优先于周末/假日判定，但对连续性规则仍是普通的一天
func (c *Calendar) Category(d int) model.DayCategory {
	if _, ok := c.special[d]; ok {
		return model.DaySpecial
	}
	if c.isWeekendHoliday(d) {
		return model.DayWeekendHoliday
	}
	return model.DayWeekday
}

// IsPlainWeekday 第 d 天是否为普通平日（非周末、非假日、非特殊日期）
func (c *Calendar) IsPlainWeekday(d int) bool {
	return c.Category(d) == model.DayWeekday
}

// isWeekendHoliday 是否为周末或国定假日
func (c *Calendar) isWeekendHoliday(d int) bool {
	if c.holidays[d] {
		return true
	}
	wd := c.days[d-1].Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SpecialCoverage 返回第 d 天的特殊人数向量（若有）
func (c *Calendar) SpecialCoverage(d int) (model.Coverage, bool) {
	cov, ok := c.special[d]
	return cov, ok
}
