package handler

import (
	"github.com/nanpipat/hr-rebase/config"
	"github.com/nanpipat/hr-rebase/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Checkin    *CheckinHandler
	Shift      *ShiftHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	loc := cfg.Attendance.Location()
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Checkin:    NewCheckinHandler(svc.Checkin),
		Shift:      NewShiftHandler(svc.Shift, loc),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
	}
}
