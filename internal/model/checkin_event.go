package model

import "time"

// 打卡方向
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// CheckinEvent 打卡流水表 — 对应 checkin_events
// 追加写入，落库后不可变；排序键 (employee_id, timestamp)，
// 时间戳相同时以自增主键（插入顺序）决序
type CheckinEvent struct {
	CheckinID  int64     `gorm:"primaryKey;autoIncrement"           json:"checkin_id"`
	EmployeeID string    `gorm:"type:uuid;not null"                 json:"employee_id"`
	Timestamp  time.Time `gorm:"not null"                           json:"timestamp"`
	Direction  string    `gorm:"type:varchar(3);not null"           json:"direction"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (CheckinEvent) TableName() string { return "checkin_events" }
