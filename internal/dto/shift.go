package dto

// ── 班次模块 DTO ──

// CreateShiftTypeRequest 创建班次类型请求
// 宽限与阈值为空时使用默认值（15/15 分钟，4.0/2.0 小时）
type CreateShiftTypeRequest struct {
	Name                  string   `json:"name"       binding:"required,min=2,max=100"`
	StartTime             string   `json:"start_time" binding:"required"` // "09:00"
	EndTime               string   `json:"end_time"   binding:"required"` // "18:00"；小于 start_time 表示跨午夜
	LateEntryGraceMinutes *int     `json:"late_entry_grace_minutes" binding:"omitempty,min=0,max=240"`
	EarlyExitGraceMinutes *int     `json:"early_exit_grace_minutes" binding:"omitempty,min=0,max=240"`
	HalfDayHoursThreshold *float64 `json:"half_day_hours_threshold" binding:"omitempty,min=0,max=24"`
	AbsentHoursThreshold  *float64 `json:"absent_hours_threshold"   binding:"omitempty,min=0,max=24"`
}

// UpdateShiftTypeRequest 更新班次类型请求（仅时刻与宽限可改）
type UpdateShiftTypeRequest struct {
	StartTime             *string `json:"start_time"`
	EndTime               *string `json:"end_time"`
	LateEntryGraceMinutes *int    `json:"late_entry_grace_minutes" binding:"omitempty,min=0,max=240"`
	EarlyExitGraceMinutes *int    `json:"early_exit_grace_minutes" binding:"omitempty,min=0,max=240"`
}

// ShiftTypeResponse 班次类型响应
type ShiftTypeResponse struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	StartTime             string `json:"start_time"`
	EndTime               string `json:"end_time"`
	CrossMidnight         bool   `json:"cross_midnight"`
	LateEntryGraceMinutes int    `json:"late_entry_grace_minutes"`
	EarlyExitGraceMinutes int    `json:"early_exit_grace_minutes"`
	HalfDayHoursThreshold string `json:"half_day_hours_threshold"`
	AbsentHoursThreshold  string `json:"absent_hours_threshold"`
}

// AssignShiftRequest 排班分配请求
type AssignShiftRequest struct {
	EmployeeID  string  `json:"employee_id"   binding:"required,uuid"`
	ShiftTypeID string  `json:"shift_type_id" binding:"required,uuid"`
	StartDate   string  `json:"start_date"    binding:"required"` // "2006-01-02"
	EndDate     *string `json:"end_date"`                        // 为空表示开放式分配
	Company     string  `json:"company"`                         // 为空时取员工所属公司
}

// AssignmentResponse 排班分配响应
type AssignmentResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	ShiftTypeID  string  `json:"shift_type_id"`
	ShiftName    string  `json:"shift_name,omitempty"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
	Company      string  `json:"company"`
	Status       string  `json:"status"`
}

// CurrentShiftRequest 查询某日生效班次的参数
type CurrentShiftRequest struct {
	EmployeeID string `form:"employee_id"`
	Date       string `form:"date"` // 为空时取今天
}
