package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Employee   EmployeeRepository
	ShiftType  ShiftTypeRepository
	Assignment ShiftAssignmentRepository
	Checkin    CheckinRepository
	Attendance AttendanceRepository
	Correction CorrectionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Employee:   NewEmployeeRepo(db),
		ShiftType:  NewShiftTypeRepo(db),
		Assignment: NewShiftAssignmentRepo(db),
		Checkin:    NewCheckinRepo(db),
		Attendance: NewAttendanceRepo(db),
		Correction: NewCorrectionRepo(db),
	}
}

// BeginTx 开启事务，返回事务句柄
// 未绑定数据库的聚合（如测试中手工组装的）返回 nil 句柄，
// 调用方持 nil 句柄时 WithTx 退化为原聚合
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务句柄的 Repository 视图
// 打卡状态机的「读尾部 + 追加」依赖该视图在同一事务内执行
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
