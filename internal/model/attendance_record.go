package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 考勤状态
const (
	AttendanceStatusPresent = "Present"
	AttendanceStatusAbsent  = "Absent"
	AttendanceStatusHalfDay = "HalfDay"
	AttendanceStatusOnLeave = "OnLeave"
)

// AttendanceRecord 考勤记录表 — 对应 attendance_records
// 由对账引擎或补卡审批写入，落库后不可变（仅可置 cancelled）
// 不变量：非取消记录按 (employee_id, date) 唯一，由部分唯一索引保证
type AttendanceRecord struct {
	AttendanceID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	EmployeeID   string          `gorm:"type:uuid;not null"                             json:"employee_id"`
	Date         time.Time       `gorm:"type:date;not null"                             json:"date"`
	Status       string          `gorm:"type:varchar(20);not null"                      json:"status"`
	WorkingHours decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"           json:"working_hours"`
	LateEntry    bool            `gorm:"not null;default:false"                         json:"late_entry"`
	EarlyExit    bool            `gorm:"not null;default:false"                         json:"early_exit"`
	ShiftTypeID  *string         `gorm:"type:uuid"                                      json:"shift_type_id,omitempty"`
	Company      string          `gorm:"type:varchar(100);not null"                     json:"company"`
	Cancelled    bool            `gorm:"not null;default:false"                         json:"cancelled"`
	BaseModel

	// 关联
	Employee  *Employee  `gorm:"foreignKey:EmployeeID;references:EmployeeID"   json:"employee,omitempty"`
	ShiftType *ShiftType `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID" json:"shift_type,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
