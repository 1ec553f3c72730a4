// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yipai/yipai/internal/database"
	"github.com/yipai/yipai/pkg/model"
)

// ArchivedRoster 排班归档记录
type ArchivedRoster struct {
	ID              uuid.UUID      `json:"id"`
	Month           string         `json:"month"`
	Status          string         `json:"status"`
	Imbalance       int64          `json:"imbalance"`
	PersonnelCount  int            `json:"personnel_count"`
	Schedule        model.Schedule `json:"schedule"`
	SolveDurationMS int64          `json:"solve_duration_ms"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ArchiveRepository 排班归档仓储
type ArchiveRepository struct {
	db *database.DB
}

// NewArchiveRepository 创建排班归档仓储
func NewArchiveRepository(db *database.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Save 归档一份生成的排班
func (r *ArchiveRepository) Save(ctx context.Context, record *ArchivedRoster) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	scheduleJSON, err := json.Marshal(record.Schedule)
	if err != nil {
		return fmt.Errorf("序列化排班失败: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO roster_archive (
			id, month, status, imbalance, personnel_count,
			schedule, solve_duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.Month, record.Status, record.Imbalance,
		record.PersonnelCount, scheduleJSON, record.SolveDurationMS, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("写入排班归档失败: %w", err)
	}
	return nil
}

// GetLatest 取某月最近一次归档
func (r *ArchiveRepository) GetLatest(ctx context.Context, month string) (*ArchivedRoster, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, month, status, imbalance, personnel_count,
		       schedule, solve_duration_ms, created_at
		FROM roster_archive
		WHERE month = $1
		ORDER BY created_at DESC
		LIMIT 1`, month)

	var record ArchivedRoster
	var scheduleJSON []byte
	err := row.Scan(
		&record.ID, &record.Month, &record.Status, &record.Imbalance,
		&record.PersonnelCount, &scheduleJSON, &record.SolveDurationMS, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取排班归档失败: %w", err)
	}

	if err := json.Unmarshal(scheduleJSON, &record.Schedule); err != nil {
		return nil, fmt.Errorf("反序列化排班失败: %w", err)
	}
	return &record, nil
}

// ListMonths 返回已归档的月份（去重，按时间倒序）
func (r *ArchiveRepository) ListMonths(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT month FROM roster_archive
		GROUP BY month
		ORDER BY MAX(created_at) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询归档月份失败: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
