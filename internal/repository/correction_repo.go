package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// CorrectionRepository 补卡申请数据访问接口
type CorrectionRepository interface {
	Create(ctx context.Context, req *model.CorrectionRequest) error
	GetByID(ctx context.Context, id string) (*model.CorrectionRequest, error)
	List(ctx context.Context, employeeID string) ([]model.CorrectionRequest, error)
	Update(ctx context.Context, req *model.CorrectionRequest) error
}

type correctionRepo struct {
	db *gorm.DB
}

// NewCorrectionRepo 创建 CorrectionRepository 实例
func NewCorrectionRepo(db *gorm.DB) CorrectionRepository {
	return &correctionRepo{db: db}
}

func (r *correctionRepo) Create(ctx context.Context, req *model.CorrectionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *correctionRepo) GetByID(ctx context.Context, id string) (*model.CorrectionRequest, error) {
	var req model.CorrectionRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *correctionRepo) List(ctx context.Context, employeeID string) ([]model.CorrectionRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("Employee").
		Order("created_at DESC")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}

	var reqs []model.CorrectionRequest
	err := q.Find(&reqs).Error
	return reqs, err
}

func (r *correctionRepo) Update(ctx context.Context, req *model.CorrectionRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}
