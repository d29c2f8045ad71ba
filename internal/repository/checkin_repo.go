package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// CheckinRepository 打卡流水数据访问接口
// 流水只增不改：接口刻意不提供 Update/Delete
type CheckinRepository interface {
	Append(ctx context.Context, event *model.CheckinEvent) error
	// ListByEmployeeAndRange 按 (timestamp, checkin_id) 升序返回区间内流水
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.CheckinEvent, error)
}

type checkinRepo struct {
	db *gorm.DB
}

// NewCheckinRepo 创建 CheckinRepository 实例
func NewCheckinRepo(db *gorm.DB) CheckinRepository {
	return &checkinRepo{db: db}
}

func (r *checkinRepo) Append(ctx context.Context, event *model.CheckinEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *checkinRepo) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.CheckinEvent, error) {
	var events []model.CheckinEvent
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND timestamp BETWEEN ? AND ?", employeeID, from, to).
		Order("timestamp ASC, checkin_id ASC").
		Find(&events).Error
	return events, err
}
