package model

import "time"

// 补卡申请状态
const (
	CorrectionStatusPending  = "Pending"
	CorrectionStatusApproved = "Approved"
	CorrectionStatusRejected = "Rejected"
)

// CorrectionRequest 补卡申请表 — 对应 attendance_correction_requests
// 审批通过后经由同一受唯一索引保护的考勤存储写入记录，
// 对账引擎会像对待自动生成记录一样跳过该 (employee, date)
type CorrectionRequest struct {
	RequestID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	EmployeeID      string     `gorm:"type:uuid;not null"                             json:"employee_id"`
	Date            time.Time  `gorm:"type:date;not null"                             json:"date"`
	RequestedStatus string     `gorm:"type:varchar(20);not null"                      json:"requested_status"`
	Reason          string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	Status          string     `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	DecidedBy       *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	BaseModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (CorrectionRequest) TableName() string { return "attendance_correction_requests" }
