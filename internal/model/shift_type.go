package model

import "github.com/shopspring/decimal"

// ShiftType 班次类型表 — 对应 shift_types
// StartTime/EndTime 为一天内的时刻（"HH:MM" 或 "HH:MM:SS"）；
// EndTime < StartTime 表示跨午夜班次，结束时刻落在次日
type ShiftType struct {
	ShiftTypeID           string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_type_id"`
	Name                  string          `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	StartTime             string          `gorm:"type:varchar(8);not null"                       json:"start_time"`
	EndTime               string          `gorm:"type:varchar(8);not null"                       json:"end_time"`
	LateEntryGraceMinutes int             `gorm:"not null;default:15"                            json:"late_entry_grace_minutes"`
	EarlyExitGraceMinutes int             `gorm:"not null;default:15"                            json:"early_exit_grace_minutes"`
	HalfDayHoursThreshold decimal.Decimal `gorm:"type:numeric(6,2);not null;default:4.00"        json:"half_day_hours_threshold"`
	AbsentHoursThreshold  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:2.00"        json:"absent_hours_threshold"`
	BaseModel
}

// TableName 指定表名
func (ShiftType) TableName() string { return "shift_types" }
