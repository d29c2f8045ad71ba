package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// ShiftAssignmentRepository 排班分配数据访问接口
type ShiftAssignmentRepository interface {
	Create(ctx context.Context, a *model.ShiftAssignment) error
	GetByID(ctx context.Context, id string) (*model.ShiftAssignment, error)
	// ListActiveByEmployee 列出某员工全部 Active 分配，按创建时间倒序
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]model.ShiftAssignment, error)
	// ListActiveOnDate 列出某日期生效的全部 Active 分配（含员工与班次）
	ListActiveOnDate(ctx context.Context, date time.Time, company string) ([]model.ShiftAssignment, error)
	List(ctx context.Context, employeeID, company string) ([]model.ShiftAssignment, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type shiftAssignmentRepo struct {
	db *gorm.DB
}

// NewShiftAssignmentRepo 创建 ShiftAssignmentRepository 实例
func NewShiftAssignmentRepo(db *gorm.DB) ShiftAssignmentRepository {
	return &shiftAssignmentRepo{db: db}
}

func (r *shiftAssignmentRepo) Create(ctx context.Context, a *model.ShiftAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *shiftAssignmentRepo) GetByID(ctx context.Context, id string) (*model.ShiftAssignment, error) {
	var a model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *shiftAssignmentRepo) ListActiveByEmployee(ctx context.Context, employeeID string) ([]model.ShiftAssignment, error) {
	var as []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("ShiftType").
		Where("employee_id = ? AND status = ?", employeeID, model.AssignmentStatusActive).
		Order("created_at DESC").
		Find(&as).Error
	return as, err
}

func (r *shiftAssignmentRepo) ListActiveOnDate(ctx context.Context, date time.Time, company string) ([]model.ShiftAssignment, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").Preload("ShiftType").
		Where("status = ? AND start_date <= ?", model.AssignmentStatusActive, date).
		Where("end_date IS NULL OR end_date >= ?", date)
	if company != "" {
		q = q.Where("company = ?", company)
	}

	var as []model.ShiftAssignment
	err := q.Find(&as).Error
	return as, err
}

func (r *shiftAssignmentRepo) List(ctx context.Context, employeeID, company string) ([]model.ShiftAssignment, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").Preload("ShiftType").
		Order("start_date DESC")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	if company != "" {
		q = q.Where("company = ?", company)
	}

	var as []model.ShiftAssignment
	err := q.Find(&as).Error
	return as, err
}

func (r *shiftAssignmentRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.ShiftAssignment{}).
		Where("assignment_id = ?", id).
		Update("status", status).Error
}
