package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/model"
	"github.com/nanpipat/hr-rebase/internal/repository"
	"github.com/nanpipat/hr-rebase/pkg/dateutil"
)

// ── 打卡模块业务错误 ──

var (
	ErrEmployeeNotFound  = errors.New("员工不存在")
	ErrEmployeeInactive  = errors.New("员工非在职状态")
	ErrInvalidDirection  = errors.New("打卡方向无效")
	ErrAlreadyCheckedIn  = errors.New("已签到，请先签退")
	ErrNotCheckedIn      = errors.New("今日尚未签到")
	ErrAlreadyCheckedOut = errors.New("今日已签退")
	ErrDateRangeInvalid  = errors.New("日期范围无效")
)

// 时间戳对外展示格式（部署时区）
const timestampLayout = "2006-01-02 15:04:05"

// CheckinService 打卡业务接口
type CheckinService interface {
	// 提交打卡（严格 IN/OUT 交替，按日重置）
	Submit(ctx context.Context, employeeID, direction string) (*dto.CheckinEventResponse, error)
	// 今日实时状态
	TodayStatus(ctx context.Context, employeeID string) (*dto.DaySummaryResponse, error)
	// 历史打卡（按民用日分桶，日期倒序）
	History(ctx context.Context, employeeID string, req *dto.HistoryRequest) ([]dto.DaySummaryResponse, error)
}

type checkinService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
}

// NewCheckinService 创建 CheckinService 实例
func NewCheckinService(repo *repository.Repository, logger *zap.Logger, loc *time.Location) CheckinService {
	return &checkinService{repo: repo, logger: logger, loc: loc}
}

// ────────────────────── Submit ──────────────────────

// 状态机每员工每日两态：待签到 / 待签退，午夜重置，
// 前一日的末条流水不参与校验。
// 「读日尾 + 追加」在同一事务内执行，并以员工行锁作为
// 该员工的串行化点，防止并发提交同时观察到相同尾部。
func (s *checkinService) Submit(ctx context.Context, employeeID, direction string) (*dto.CheckinEventResponse, error) {
	if direction != model.DirectionIn && direction != model.DirectionOut {
		return nil, ErrInvalidDirection
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	emp, err := txRepo.Employee.GetByIDForUpdate(ctx, employeeID)
	if err != nil {
		rollback(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("锁定员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	if !emp.IsActive() {
		rollback(tx)
		return nil, ErrEmployeeInactive
	}

	now := time.Now().In(s.loc)
	from, to := dateutil.DayWindow(now, s.loc)

	events, err := txRepo.Checkin.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		rollback(tx)
		s.logger.Error("查询当日流水失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	var last *model.CheckinEvent
	if len(events) > 0 {
		last = &events[len(events)-1]
	}

	switch direction {
	case model.DirectionIn:
		if last != nil && last.Direction == model.DirectionIn {
			rollback(tx)
			return nil, ErrAlreadyCheckedIn
		}
	case model.DirectionOut:
		if last == nil {
			rollback(tx)
			return nil, ErrNotCheckedIn
		}
		if last.Direction == model.DirectionOut {
			rollback(tx)
			return nil, ErrAlreadyCheckedOut
		}
	}

	event := &model.CheckinEvent{
		EmployeeID: employeeID,
		Timestamp:  now,
		Direction:  direction,
	}
	if err := txRepo.Checkin.Append(ctx, event); err != nil {
		rollback(tx)
		s.logger.Error("追加打卡流水失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("打卡成功",
		zap.String("employee_id", employeeID),
		zap.String("direction", direction),
		zap.Time("timestamp", now))

	resp := toCheckinEventResponse(event, s.loc)
	return &resp, nil
}

// ────────────────────── TodayStatus ──────────────────────

func (s *checkinService) TodayStatus(ctx context.Context, employeeID string) (*dto.DaySummaryResponse, error) {
	if _, err := s.getActiveEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	now := time.Now().In(s.loc)
	from, to := dateutil.DayWindow(now, s.loc)

	events, err := s.repo.Checkin.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询当日流水失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	resp := toDaySummaryResponse(from, computeDaySummary(events, &now), events, s.loc)
	return &resp, nil
}

// ────────────────────── History ──────────────────────

func (s *checkinService) History(ctx context.Context, employeeID string, req *dto.HistoryRequest) ([]dto.DaySummaryResponse, error) {
	if _, err := s.getActiveEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	fromDate, err := dateutil.ParseDate(req.From, s.loc)
	if err != nil {
		return nil, ErrDateRangeInvalid
	}
	toDate, err := dateutil.ParseDate(req.To, s.loc)
	if err != nil {
		return nil, ErrDateRangeInvalid
	}
	if toDate.Before(fromDate) {
		return nil, ErrDateRangeInvalid
	}

	from, _ := dateutil.DayWindow(fromDate, s.loc)
	_, to := dateutil.DayWindow(toDate, s.loc)

	events, err := s.repo.Checkin.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询历史流水失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	// 按民用日分桶；桶内保持 (timestamp, checkin_id) 升序
	buckets := make(map[time.Time][]model.CheckinEvent)
	for _, e := range events {
		day := dateutil.DateOf(e.Timestamp, s.loc)
		buckets[day] = append(buckets[day], e)
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	// 历史日按已关闭语义计算，未闭合 IN 不计工时
	result := make([]dto.DaySummaryResponse, 0, len(days))
	for _, day := range days {
		result = append(result, toDaySummaryResponse(day, computeDaySummary(buckets[day], nil), buckets[day], s.loc))
	}
	return result, nil
}

// ────────────────────── 内部辅助 ──────────────────────

func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func (s *checkinService) getActiveEmployee(ctx context.Context, employeeID string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	if !emp.IsActive() {
		return nil, ErrEmployeeInactive
	}
	return emp, nil
}

func toCheckinEventResponse(e *model.CheckinEvent, loc *time.Location) dto.CheckinEventResponse {
	return dto.CheckinEventResponse{
		CheckinID:  e.CheckinID,
		EmployeeID: e.EmployeeID,
		Timestamp:  e.Timestamp.In(loc).Format(timestampLayout),
		Direction:  e.Direction,
	}
}

func toDaySummaryResponse(day time.Time, sum daySummary, events []model.CheckinEvent, loc *time.Location) dto.DaySummaryResponse {
	resp := dto.DaySummaryResponse{
		Date:        day.Format(dateutil.DateLayout),
		IsOpen:      sum.IsOpen,
		WorkedHours: sum.WorkedHours.StringFixed(2),
	}
	if sum.FirstIn != nil {
		v := sum.FirstIn.In(loc).Format(timestampLayout)
		resp.FirstIn = &v
	}
	if sum.LastOut != nil {
		v := sum.LastOut.In(loc).Format(timestampLayout)
		resp.LastOut = &v
	}
	for i := range events {
		resp.Events = append(resp.Events, toCheckinEventResponse(&events[i], loc))
	}
	return resp
}
