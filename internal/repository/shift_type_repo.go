package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// ShiftTypeRepository 班次类型数据访问接口
type ShiftTypeRepository interface {
	Create(ctx context.Context, st *model.ShiftType) error
	GetByID(ctx context.Context, id string) (*model.ShiftType, error)
	GetByName(ctx context.Context, name string) (*model.ShiftType, error)
	List(ctx context.Context) ([]model.ShiftType, error)
	Update(ctx context.Context, st *model.ShiftType) error
}

type shiftTypeRepo struct {
	db *gorm.DB
}

// NewShiftTypeRepo 创建 ShiftTypeRepository 实例
func NewShiftTypeRepo(db *gorm.DB) ShiftTypeRepository {
	return &shiftTypeRepo{db: db}
}

func (r *shiftTypeRepo) Create(ctx context.Context, st *model.ShiftType) error {
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *shiftTypeRepo) GetByID(ctx context.Context, id string) (*model.ShiftType, error) {
	var st model.ShiftType
	err := r.db.WithContext(ctx).
		Where("shift_type_id = ?", id).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *shiftTypeRepo) GetByName(ctx context.Context, name string) (*model.ShiftType, error) {
	var st model.ShiftType
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *shiftTypeRepo) List(ctx context.Context) ([]model.ShiftType, error) {
	var sts []model.ShiftType
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&sts).Error
	return sts, err
}

func (r *shiftTypeRepo) Update(ctx context.Context, st *model.ShiftType) error {
	return r.db.WithContext(ctx).Save(st).Error
}
