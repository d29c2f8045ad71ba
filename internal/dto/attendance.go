package dto

// ── 考勤模块 DTO ──

// ReconcileRequest 考勤结算请求
// Date 缺省时结算昨天；EmployeeID 非空时仅结算单个员工
type ReconcileRequest struct {
	Date    string `json:"date"`
	Company string `json:"company"`
}

// ReconcileEntry 单个员工的结算明细
type ReconcileEntry struct {
	EmployeeID string `json:"employee_id"`
	Outcome    string `json:"outcome"` // created / skipped / error
	Status     string `json:"status,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ReconcileResultResponse 批量结算结果响应
type ReconcileResultResponse struct {
	Date           string           `json:"date"`
	Created        int              `json:"created"`
	Skipped        int              `json:"skipped"`
	Errors         int              `json:"errors"`
	LateCount      int              `json:"late_count"`
	EarlyExitCount int              `json:"early_exit_count"`
	Entries        []ReconcileEntry `json:"entries"`
}

// AttendanceRecordResponse 考勤记录响应
type AttendanceRecordResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	ShiftName    string `json:"shift_name,omitempty"`
	WorkingHours string `json:"working_hours"`
	LateEntry    bool   `json:"late_entry"`
	EarlyExit    bool   `json:"early_exit"`
}

// RangeRequest 区间查询参数（from/to 缺省为本月初/今天）
type RangeRequest struct {
	EmployeeID string `form:"employee_id"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// SummaryResponse 区间考勤汇总响应
type SummaryResponse struct {
	EmployeeID string                     `json:"employee_id"`
	From       string                     `json:"from"`
	To         string                     `json:"to"`
	TotalDays  int                        `json:"total_days"`
	Present    int                        `json:"present"`
	HalfDay    int                        `json:"half_day"`
	Absent     int                        `json:"absent"`
	OnLeave    int                        `json:"on_leave"`
	Records    []AttendanceRecordResponse `json:"records"`
}

// DetailResponse 区间考勤明细响应（汇总 + 迟到/早退统计 + 打卡流水）
type DetailResponse struct {
	SummaryResponse
	LateDays      int                    `json:"late_days"`
	EarlyExitDays int                    `json:"early_exit_days"`
	TotalHours    string                 `json:"total_hours"`
	Checkins      []CheckinEventResponse `json:"checkins"`
}

// ExportRequest 考勤导出查询参数
type ExportRequest struct {
	From    string `form:"from" binding:"required"`
	To      string `form:"to"   binding:"required"`
	Company string `form:"company"`
}

// CreateCorrectionRequestBody 发起考勤更正申请
type CreateCorrectionRequestBody struct {
	Date   string `json:"date"   binding:"required"`
	Status string `json:"status" binding:"required,oneof=Present HalfDay"`
	Reason string `json:"reason" binding:"required,min=4,max=500"`
}

// DecideCorrectionRequest 审批更正申请
type DecideCorrectionRequest struct {
	Approve bool `json:"approve"`
}

// CorrectionResponse 更正申请响应
type CorrectionResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	RequestedStatus string  `json:"requested_status"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"` // Pending / Approved / Rejected
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
}
