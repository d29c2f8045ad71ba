package model

import "time"

// 排班分配状态
const (
	AssignmentStatusActive    = "Active"
	AssignmentStatusCancelled = "Cancelled"
)

// ShiftAssignment 排班分配表 — 对应 shift_assignments
// EndDate 为 nil 表示开放式分配（无上界）
// 不变量：同一员工的 Active 分配日期范围互不重叠（含端点）
type ShiftAssignment struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	EmployeeID   string     `gorm:"type:uuid;not null"                             json:"employee_id"`
	ShiftTypeID  string     `gorm:"type:uuid;not null"                             json:"shift_type_id"`
	StartDate    time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	Company      string     `gorm:"type:varchar(100);not null"                     json:"company"`
	Status       string     `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	// 关联
	Employee  *Employee  `gorm:"foreignKey:EmployeeID;references:EmployeeID"    json:"employee,omitempty"`
	ShiftType *ShiftType `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID"  json:"shift_type,omitempty"`
}

// TableName 指定表名
func (ShiftAssignment) TableName() string { return "shift_assignments" }
