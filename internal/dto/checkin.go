package dto

// ── 打卡模块 DTO ──

// SubmitCheckinRequest 提交打卡请求
type SubmitCheckinRequest struct {
	Direction string `json:"direction" binding:"required,oneof=IN OUT"`
}

// CheckinEventResponse 单条打卡流水响应
type CheckinEventResponse struct {
	CheckinID  int64  `json:"checkin_id"`
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"` // "2006-01-02 15:04:05"（部署时区）
	Direction  string `json:"direction"`
}

// DaySummaryResponse 单日打卡汇总响应
type DaySummaryResponse struct {
	Date        string                 `json:"date"`
	FirstIn     *string                `json:"first_in,omitempty"`
	LastOut     *string                `json:"last_out,omitempty"`
	IsOpen      bool                   `json:"is_open"` // 末条流水为 IN（尚未签退）
	WorkedHours string                 `json:"worked_hours"`
	Events      []CheckinEventResponse `json:"events,omitempty"`
}

// HistoryRequest 打卡历史查询参数
type HistoryRequest struct {
	From string `form:"from" binding:"required"` // "2006-01-02"
	To   string `form:"to"   binding:"required"`
}
