package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// AttendanceRepository 考勤记录数据访问接口
// Create 依赖 (employee_id, date) WHERE NOT cancelled 部分唯一索引：
// 并发写入同一键时返回 gorm.ErrDuplicatedKey，调用方按「已存在」处理
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	// FindActive 查找 (employee, date) 的非取消记录，不存在时返回 gorm.ErrRecordNotFound
	FindActive(ctx context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error)
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceRecord, error)
	// ListByRange 导出用：全员区间记录（含员工），可按公司过滤
	ListByRange(ctx context.Context, from, to time.Time, company string) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) FindActive(ctx context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ? AND cancelled = ?", employeeID, date, false).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date BETWEEN ? AND ? AND cancelled = ?", employeeID, from, to, false).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByRange(ctx context.Context, from, to time.Time, company string) ([]model.AttendanceRecord, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").
		Where("date BETWEEN ? AND ? AND cancelled = ?", from, to, false).
		Order("date ASC, employee_id ASC")
	if company != "" {
		q = q.Where("company = ?", company)
	}

	var records []model.AttendanceRecord
	err := q.Find(&records).Error
	return records, err
}
