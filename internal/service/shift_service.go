package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/model"
	"github.com/nanpipat/hr-rebase/internal/repository"
	"github.com/nanpipat/hr-rebase/pkg/dateutil"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftTypeNotFound   = errors.New("班次类型不存在")
	ErrShiftTypeExists     = errors.New("班次类型名称已存在")
	ErrClockInvalid        = errors.New("时刻格式无效")
	ErrThresholdInvalid    = errors.New("考勤阈值配置无效：半天阈值须不低于缺勤阈值")
	ErrAssignmentNotFound  = errors.New("排班分配不存在")
	ErrAssignmentNotActive = errors.New("排班分配非生效状态，不可取消")
	ErrAssignmentOverlap   = errors.New("排班分配日期范围重叠")
)

// 班次默认配置
var (
	defaultLateGraceMinutes  = 15
	defaultEarlyGraceMinutes = 15
	defaultHalfDayThreshold  = decimal.NewFromFloat(4.0)
	defaultAbsentThreshold   = decimal.NewFromFloat(2.0)
)

// ShiftService 班次与排班业务接口
type ShiftService interface {
	// 班次类型目录
	CreateShiftType(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	UpdateShiftType(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	GetShiftType(ctx context.Context, id string) (*dto.ShiftTypeResponse, error)
	ListShiftTypes(ctx context.Context) ([]dto.ShiftTypeResponse, error)

	// 排班分配
	Assign(ctx context.Context, req *dto.AssignShiftRequest) (*dto.AssignmentResponse, error)
	Unassign(ctx context.Context, assignmentID string) error
	// 某员工某日生效的分配；不存在时返回 (nil, nil)
	CurrentShiftFor(ctx context.Context, employeeID string, date time.Time) (*dto.AssignmentResponse, error)
	ListAssignments(ctx context.Context, employeeID, company string) ([]dto.AssignmentResponse, error)
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, logger *zap.Logger, loc *time.Location) ShiftService {
	return &shiftService{repo: repo, logger: logger, loc: loc}
}

// ────────────────────── CreateShiftType ──────────────────────

func (s *shiftService) CreateShiftType(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	if _, err := dateutil.ParseClock(req.StartTime); err != nil {
		return nil, ErrClockInvalid
	}
	if _, err := dateutil.ParseClock(req.EndTime); err != nil {
		return nil, ErrClockInvalid
	}

	st := &model.ShiftType{
		Name:                  req.Name,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		LateEntryGraceMinutes: defaultLateGraceMinutes,
		EarlyExitGraceMinutes: defaultEarlyGraceMinutes,
		HalfDayHoursThreshold: defaultHalfDayThreshold,
		AbsentHoursThreshold:  defaultAbsentThreshold,
	}
	if req.LateEntryGraceMinutes != nil {
		st.LateEntryGraceMinutes = *req.LateEntryGraceMinutes
	}
	if req.EarlyExitGraceMinutes != nil {
		st.EarlyExitGraceMinutes = *req.EarlyExitGraceMinutes
	}
	if req.HalfDayHoursThreshold != nil {
		st.HalfDayHoursThreshold = decimal.NewFromFloat(*req.HalfDayHoursThreshold)
	}
	if req.AbsentHoursThreshold != nil {
		st.AbsentHoursThreshold = decimal.NewFromFloat(*req.AbsentHoursThreshold)
	}

	// 阈值倒置在入口拒绝；结算侧仍有兜底分类
	if st.HalfDayHoursThreshold.LessThan(st.AbsentHoursThreshold) {
		return nil, ErrThresholdInvalid
	}

	if _, err := s.repo.ShiftType.GetByName(ctx, req.Name); err == nil {
		return nil, ErrShiftTypeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询班次类型失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	if err := s.repo.ShiftType.Create(ctx, st); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrShiftTypeExists
		}
		s.logger.Error("创建班次类型失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("班次类型已创建", zap.String("shift_type_id", st.ShiftTypeID), zap.String("name", st.Name))

	resp := toShiftTypeResponse(st)
	return &resp, nil
}

// ────────────────────── UpdateShiftType ──────────────────────

// 仅时刻与宽限可改；阈值与名称落库后不再变动，
// 避免追溯改写既有结算口径
func (s *shiftService) UpdateShiftType(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	st, err := s.repo.ShiftType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.String("shift_type_id", id), zap.Error(err))
		return nil, err
	}

	if req.StartTime != nil {
		if _, err := dateutil.ParseClock(*req.StartTime); err != nil {
			return nil, ErrClockInvalid
		}
		st.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if _, err := dateutil.ParseClock(*req.EndTime); err != nil {
			return nil, ErrClockInvalid
		}
		st.EndTime = *req.EndTime
	}
	if req.LateEntryGraceMinutes != nil {
		st.LateEntryGraceMinutes = *req.LateEntryGraceMinutes
	}
	if req.EarlyExitGraceMinutes != nil {
		st.EarlyExitGraceMinutes = *req.EarlyExitGraceMinutes
	}

	if err := s.repo.ShiftType.Update(ctx, st); err != nil {
		s.logger.Error("更新班次类型失败", zap.String("shift_type_id", id), zap.Error(err))
		return nil, err
	}

	resp := toShiftTypeResponse(st)
	return &resp, nil
}

// ────────────────────── GetShiftType / ListShiftTypes ──────────────────────

func (s *shiftService) GetShiftType(ctx context.Context, id string) (*dto.ShiftTypeResponse, error) {
	st, err := s.repo.ShiftType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.String("shift_type_id", id), zap.Error(err))
		return nil, err
	}
	resp := toShiftTypeResponse(st)
	return &resp, nil
}

func (s *shiftService) ListShiftTypes(ctx context.Context) ([]dto.ShiftTypeResponse, error) {
	sts, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ShiftTypeResponse, 0, len(sts))
	for i := range sts {
		result = append(result, toShiftTypeResponse(&sts[i]))
	}
	return result, nil
}

// ────────────────────── Assign ──────────────────────

func (s *shiftService) Assign(ctx context.Context, req *dto.AssignShiftRequest) (*dto.AssignmentResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	if !emp.IsActive() {
		return nil, ErrEmployeeInactive
	}

	if _, err := s.repo.ShiftType.GetByID(ctx, req.ShiftTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.String("shift_type_id", req.ShiftTypeID), zap.Error(err))
		return nil, err
	}

	startDate, err := dateutil.ParseDate(req.StartDate, s.loc)
	if err != nil {
		return nil, ErrDateRangeInvalid
	}
	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		d, err := dateutil.ParseDate(*req.EndDate, s.loc)
		if err != nil {
			return nil, ErrDateRangeInvalid
		}
		if d.Before(startDate) {
			return nil, ErrDateRangeInvalid
		}
		endDate = &d
	}

	// 闭区间重叠校验：开放式分配按上界 +∞ 处理，端点相接视为重叠
	existing, err := s.repo.Assignment.ListActiveByEmployee(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("查询既有分配失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	for i := range existing {
		if dateutil.RangesOverlap(startDate, endDate, existing[i].StartDate, existing[i].EndDate) {
			return nil, fmt.Errorf("%w：与分配 %s 冲突", ErrAssignmentOverlap, existing[i].AssignmentID)
		}
	}

	company := req.Company
	if company == "" {
		company = emp.Company
	}

	a := &model.ShiftAssignment{
		EmployeeID:  req.EmployeeID,
		ShiftTypeID: req.ShiftTypeID,
		StartDate:   startDate,
		EndDate:     endDate,
		Company:     company,
		Status:      model.AssignmentStatusActive,
	}
	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("创建排班分配失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班分配已创建",
		zap.String("assignment_id", a.AssignmentID),
		zap.String("employee_id", a.EmployeeID),
		zap.String("shift_type_id", a.ShiftTypeID))

	created, err := s.repo.Assignment.GetByID(ctx, a.AssignmentID)
	if err != nil {
		s.logger.Error("回读排班分配失败", zap.String("assignment_id", a.AssignmentID), zap.Error(err))
		return nil, err
	}
	resp := toAssignmentResponse(created)
	return &resp, nil
}

// ────────────────────── Unassign ──────────────────────

// 分配不可原地改写日期范围：调整排班的正途是取消后重新分配
func (s *shiftService) Unassign(ctx context.Context, assignmentID string) error {
	a, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("查询排班分配失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return err
	}
	if a.Status != model.AssignmentStatusActive {
		return ErrAssignmentNotActive
	}

	if err := s.repo.Assignment.UpdateStatus(ctx, assignmentID, model.AssignmentStatusCancelled); err != nil {
		s.logger.Error("取消排班分配失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return err
	}

	s.logger.Info("排班分配已取消", zap.String("assignment_id", assignmentID))
	return nil
}

// ────────────────────── CurrentShiftFor ──────────────────────

// 返回覆盖 date 的 Active 分配；重叠不变量被破坏出现多条时
// 取创建时间最近的一条
func (s *shiftService) CurrentShiftFor(ctx context.Context, employeeID string, date time.Time) (*dto.AssignmentResponse, error) {
	as, err := s.repo.Assignment.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询排班分配失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	day := dateutil.DateOf(date, s.loc)
	for i := range as {
		if dateutil.ContainsDate(as[i].StartDate, as[i].EndDate, day) {
			resp := toAssignmentResponse(&as[i])
			return &resp, nil
		}
	}
	return nil, nil
}

// ────────────────────── ListAssignments ──────────────────────

func (s *shiftService) ListAssignments(ctx context.Context, employeeID, company string) ([]dto.AssignmentResponse, error) {
	as, err := s.repo.Assignment.List(ctx, employeeID, company)
	if err != nil {
		s.logger.Error("查询排班分配列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.AssignmentResponse, 0, len(as))
	for i := range as {
		result = append(result, toAssignmentResponse(&as[i]))
	}
	return result, nil
}

// ────────────────────── 内部辅助 ──────────────────────

func toShiftTypeResponse(st *model.ShiftType) dto.ShiftTypeResponse {
	startClock, _ := dateutil.ParseClock(st.StartTime)
	endClock, _ := dateutil.ParseClock(st.EndTime)
	return dto.ShiftTypeResponse{
		ID:                    st.ShiftTypeID,
		Name:                  st.Name,
		StartTime:             st.StartTime,
		EndTime:               st.EndTime,
		CrossMidnight:         endClock < startClock,
		LateEntryGraceMinutes: st.LateEntryGraceMinutes,
		EarlyExitGraceMinutes: st.EarlyExitGraceMinutes,
		HalfDayHoursThreshold: st.HalfDayHoursThreshold.StringFixed(2),
		AbsentHoursThreshold:  st.AbsentHoursThreshold.StringFixed(2),
	}
}

func toAssignmentResponse(a *model.ShiftAssignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:          a.AssignmentID,
		EmployeeID:  a.EmployeeID,
		ShiftTypeID: a.ShiftTypeID,
		StartDate:   a.StartDate.Format(dateutil.DateLayout),
		Company:     a.Company,
		Status:      a.Status,
	}
	if a.EndDate != nil {
		v := a.EndDate.Format(dateutil.DateLayout)
		resp.EndDate = &v
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.Name
	}
	if a.ShiftType != nil {
		resp.ShiftName = a.ShiftType.Name
	}
	return resp
}
