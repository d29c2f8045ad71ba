package service

import (
	"go.uber.org/zap"

	"github.com/nanpipat/hr-rebase/config"
	"github.com/nanpipat/hr-rebase/internal/repository"
	"github.com/nanpipat/hr-rebase/pkg/jwt"
	"github.com/nanpipat/hr-rebase/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Checkin    CheckinService
	Shift      ShiftService
	Attendance AttendanceService
	Export     ExportService
}

// NewService 创建 Service 聚合
// 所有时间相关业务共用 attendance.timezone 指定的部署时区
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	loc := cfg.Attendance.Location()
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, cache, logger),
		Checkin:    NewCheckinService(repo, logger, loc),
		Shift:      NewShiftService(repo, logger, loc),
		Attendance: NewAttendanceService(repo, cache, logger, loc),
		Export:     NewExportService(repo, logger, loc),
	}
}
