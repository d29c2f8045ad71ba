package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/model"
	"github.com/nanpipat/hr-rebase/internal/repository"
	"github.com/nanpipat/hr-rebase/pkg/dateutil"
	"github.com/nanpipat/hr-rebase/pkg/redis"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceExists     = errors.New("该日期的考勤记录已存在")
	ErrReconcileInProgress  = errors.New("该日期的考勤结算正在进行中")
	ErrCorrectionNotFound   = errors.New("考勤更正申请不存在")
	ErrCorrectionDecided    = errors.New("考勤更正申请已审批，不可重复处理")
	ErrCorrectionDateFuture = errors.New("不可为未来日期申请考勤更正")
)

// 结算明细 outcome 取值
const (
	outcomeCreated = "created"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

// 跨午夜班次的签退归属边际：班次结束后一小时内的 OUT
// 仍计入该班次日的流水窗口
const crossMidnightCheckoutMargin = time.Hour

// AttendanceService 考勤结算与报表业务接口
type AttendanceService interface {
	// 批量结算某日期全部在班员工的考勤
	Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileResultResponse, error)
	// 区间汇总（状态计数 + 记录）
	Summary(ctx context.Context, employeeID string, req *dto.RangeRequest) (*dto.SummaryResponse, error)
	// 区间明细（汇总 + 迟到/早退统计 + 打卡流水）
	Detail(ctx context.Context, employeeID string, req *dto.RangeRequest) (*dto.DetailResponse, error)

	// 考勤更正申请
	CreateCorrection(ctx context.Context, employeeID string, req *dto.CreateCorrectionRequestBody) (*dto.CorrectionResponse, error)
	ListCorrections(ctx context.Context, employeeID string) ([]dto.CorrectionResponse, error)
	DecideCorrection(ctx context.Context, requestID, deciderID string, approve bool) (*dto.CorrectionResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
	loc    *time.Location
}

// NewAttendanceService 创建 AttendanceService 实例
// cache 可为 nil（结算去重锁退化为仅靠唯一索引兜底）
func NewAttendanceService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger, loc *time.Location) AttendanceService {
	return &attendanceService{repo: repo, cache: cache, logger: logger, loc: loc}
}

// ════════════════════════════════════════════════════════════
// Reconcile — 考勤结算引擎
// ════════════════════════════════════════════════════════════

// 对目标日期有生效排班的每个员工独立结算：
//  1. 幂等守卫：该 (employee, date) 已有非取消记录 → skip
//  2. 取该班次日窗口内的打卡流水
//  3. 无流水 → Absent / 0 工时 / 无标记
//  4. 有流水 → IN/OUT 配对计时、阈值分类、迟到/早退判定
//  5. 写入一条不可变考勤记录
//
// 单个员工的失败只计入错误明细，批次不中断；
// 写入撞上唯一索引视同「已存在」按 skip 处理，
// 因而与并发批次或并发补卡审批同时运行也是安全的。
func (s *attendanceService) Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconcileResultResponse, error) {
	targetDate, err := s.resolveTargetDate(req.Date)
	if err != nil {
		return nil, ErrDateRangeInvalid
	}
	dateStr := targetDate.Format(dateutil.DateLayout)

	// 尽力而为的批次去重；锁失效不影响正确性
	if s.cache != nil {
		ok, err := s.cache.AcquireReconcileLock(ctx, dateStr, 10*time.Minute)
		if err != nil {
			s.logger.Warn("获取结算锁失败，继续执行", zap.String("date", dateStr), zap.Error(err))
		} else if !ok {
			return nil, ErrReconcileInProgress
		} else {
			defer func() {
				if err := s.cache.ReleaseReconcileLock(context.Background(), dateStr); err != nil {
					s.logger.Warn("释放结算锁失败", zap.String("date", dateStr), zap.Error(err))
				}
			}()
		}
	}

	assignments, err := s.repo.Assignment.ListActiveOnDate(ctx, targetDate, req.Company)
	if err != nil {
		s.logger.Error("查询生效排班失败", zap.String("date", dateStr), zap.Error(err))
		return nil, err
	}

	// 每员工至多一条生效分配；不变量被破坏时取创建时间最近的
	byEmployee := make(map[string]*model.ShiftAssignment, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		if prev, ok := byEmployee[a.EmployeeID]; !ok || a.CreatedAt.After(prev.CreatedAt) {
			byEmployee[a.EmployeeID] = a
		}
	}

	employeeIDs := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	result := &dto.ReconcileResultResponse{
		Date:    dateStr,
		Entries: make([]dto.ReconcileEntry, 0, len(employeeIDs)),
	}

	for _, employeeID := range employeeIDs {
		entry, record := s.reconcileEmployee(ctx, employeeID, byEmployee[employeeID], targetDate)
		switch entry.Outcome {
		case outcomeCreated:
			result.Created++
			// 迟到/早退计数只统计本批次新建的记录
			if record.LateEntry {
				result.LateCount++
			}
			if record.EarlyExit {
				result.EarlyExitCount++
			}
		case outcomeSkipped:
			result.Skipped++
		case outcomeError:
			result.Errors++
		}
		result.Entries = append(result.Entries, entry)
	}

	s.logger.Info("考勤结算完成",
		zap.String("date", dateStr),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors))

	return result, nil
}

// reconcileEmployee 单员工结算；任何失败都折叠为 error 明细，不向上传播
func (s *attendanceService) reconcileEmployee(ctx context.Context, employeeID string, assignment *model.ShiftAssignment, targetDate time.Time) (dto.ReconcileEntry, *model.AttendanceRecord) {
	entry := dto.ReconcileEntry{EmployeeID: employeeID}

	// 1. 幂等守卫
	if _, err := s.repo.Attendance.FindActive(ctx, employeeID, targetDate); err == nil {
		entry.Outcome = outcomeSkipped
		entry.Reason = "考勤记录已存在"
		return entry, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("幂等检查失败", zap.String("employee_id", employeeID), zap.Error(err))
		entry.Outcome = outcomeError
		entry.Reason = err.Error()
		return entry, nil
	}

	shift := assignment.ShiftType
	if shift == nil {
		entry.Outcome = outcomeError
		entry.Reason = "排班分配缺少班次类型"
		return entry, nil
	}

	record, err := s.buildRecord(ctx, employeeID, assignment, shift, targetDate)
	if err != nil {
		entry.Outcome = outcomeError
		entry.Reason = err.Error()
		return entry, nil
	}

	// 5. 写入；唯一索引冲突视同已存在
	if err := s.repo.Attendance.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			entry.Outcome = outcomeSkipped
			entry.Reason = "考勤记录已存在"
			return entry, nil
		}
		s.logger.Error("写入考勤记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		entry.Outcome = outcomeError
		entry.Reason = err.Error()
		return entry, nil
	}

	entry.Outcome = outcomeCreated
	entry.Status = record.Status
	return entry, record
}

// buildRecord 由流水推导一条考勤记录（不落库）
func (s *attendanceService) buildRecord(ctx context.Context, employeeID string, assignment *model.ShiftAssignment, shift *model.ShiftType, targetDate time.Time) (*model.AttendanceRecord, error) {
	startClock, err := dateutil.ParseClock(shift.StartTime)
	if err != nil {
		return nil, err
	}
	endClock, err := dateutil.ParseClock(shift.EndTime)
	if err != nil {
		return nil, err
	}
	crossMidnight := endClock < startClock

	shiftStart := dateutil.AtClock(targetDate, startClock, s.loc)
	shiftEnd := dateutil.AtClock(targetDate, endClock, s.loc)
	if crossMidnight {
		shiftEnd = dateutil.AtClock(targetDate.AddDate(0, 0, 1), endClock, s.loc)
	}

	// 2. 班次日流水窗口：民用日闭区间；跨午夜班次延伸到
	//    次日班次结束后的签退边际
	windowFrom, windowTo := dateutil.DayWindow(targetDate, s.loc)
	if crossMidnight {
		windowTo = shiftEnd.Add(crossMidnightCheckoutMargin)
	}

	events, err := s.repo.Checkin.ListByEmployeeAndRange(ctx, employeeID, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}

	record := &model.AttendanceRecord{
		EmployeeID:   employeeID,
		Date:         targetDate,
		Status:       model.AttendanceStatusAbsent,
		WorkingHours: decimal.Zero,
		ShiftTypeID:  &assignment.ShiftTypeID,
		Company:      assignment.Company,
	}

	// 3. 无流水 → 缺勤
	if len(events) == 0 {
		return record, nil
	}

	// 4. 配对计时与分类
	firstIn, lastOut, hours := pairWorkedHours(events)
	record.WorkingHours = hours
	record.Status = classifyStatus(hours, shift)

	grace := func(minutes int) time.Duration { return time.Duration(minutes) * time.Minute }
	if firstIn != nil && firstIn.After(shiftStart.Add(grace(shift.LateEntryGraceMinutes))) {
		record.LateEntry = true
	}
	if lastOut != nil && lastOut.Before(shiftEnd.Add(-grace(shift.EarlyExitGraceMinutes))) {
		record.EarlyExit = true
	}

	return record, nil
}

// ────────────────────── Summary / Detail ──────────────────────

func (s *attendanceService) Summary(ctx context.Context, employeeID string, req *dto.RangeRequest) (*dto.SummaryResponse, error) {
	return s.summarize(ctx, employeeID, req)
}

func (s *attendanceService) Detail(ctx context.Context, employeeID string, req *dto.RangeRequest) (*dto.DetailResponse, error) {
	summary, err := s.summarize(ctx, employeeID, req)
	if err != nil {
		return nil, err
	}

	from, _ := dateutil.ParseDate(summary.From, s.loc)
	to, _ := dateutil.ParseDate(summary.To, s.loc)
	windowFrom, _ := dateutil.DayWindow(from, s.loc)
	_, windowTo := dateutil.DayWindow(to, s.loc)

	events, err := s.repo.Checkin.ListByEmployeeAndRange(ctx, employeeID, windowFrom, windowTo)
	if err != nil {
		s.logger.Error("查询区间流水失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	detail := &dto.DetailResponse{SummaryResponse: *summary}
	total := decimal.Zero
	records, err := s.repo.Attendance.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询区间考勤失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	for i := range records {
		if records[i].LateEntry {
			detail.LateDays++
		}
		if records[i].EarlyExit {
			detail.EarlyExitDays++
		}
		total = total.Add(records[i].WorkingHours)
	}
	detail.TotalHours = total.StringFixed(2)

	detail.Checkins = make([]dto.CheckinEventResponse, 0, len(events))
	for i := range events {
		detail.Checkins = append(detail.Checkins, toCheckinEventResponse(&events[i], s.loc))
	}
	return detail, nil
}

func (s *attendanceService) summarize(ctx context.Context, employeeID string, req *dto.RangeRequest) (*dto.SummaryResponse, error) {
	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	now := time.Now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	to := dateutil.DateOf(now, s.loc)

	var err error
	if req.From != "" {
		if from, err = dateutil.ParseDate(req.From, s.loc); err != nil {
			return nil, ErrDateRangeInvalid
		}
	}
	if req.To != "" {
		if to, err = dateutil.ParseDate(req.To, s.loc); err != nil {
			return nil, ErrDateRangeInvalid
		}
	}
	if to.Before(from) {
		return nil, ErrDateRangeInvalid
	}

	records, err := s.repo.Attendance.ListByEmployeeAndRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询区间考勤失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	resp := &dto.SummaryResponse{
		EmployeeID: employeeID,
		From:       from.Format(dateutil.DateLayout),
		To:         to.Format(dateutil.DateLayout),
		TotalDays:  len(records),
		Records:    make([]dto.AttendanceRecordResponse, 0, len(records)),
	}
	for i := range records {
		switch records[i].Status {
		case model.AttendanceStatusPresent:
			resp.Present++
		case model.AttendanceStatusHalfDay:
			resp.HalfDay++
		case model.AttendanceStatusAbsent:
			resp.Absent++
		case model.AttendanceStatusOnLeave:
			resp.OnLeave++
		}
		resp.Records = append(resp.Records, toAttendanceRecordResponse(&records[i]))
	}
	return resp, nil
}

// ────────────────────── 考勤更正申请 ──────────────────────

func (s *attendanceService) CreateCorrection(ctx context.Context, employeeID string, req *dto.CreateCorrectionRequestBody) (*dto.CorrectionResponse, error) {
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

	date, err := dateutil.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, ErrDateRangeInvalid
	}
	if date.After(dateutil.DateOf(time.Now().In(s.loc), s.loc)) {
		return nil, ErrCorrectionDateFuture
	}

	// 已有非取消记录的日期不接受更正申请
	if _, err := s.repo.Attendance.FindActive(ctx, employeeID, date); err == nil {
		return nil, ErrAttendanceExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询考勤记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	cr := &model.CorrectionRequest{
		EmployeeID:      employeeID,
		Date:            date,
		RequestedStatus: req.Status,
		Reason:          req.Reason,
		Status:          model.CorrectionStatusPending,
	}
	if err := s.repo.Correction.Create(ctx, cr); err != nil {
		s.logger.Error("创建更正申请失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("考勤更正申请已创建",
		zap.String("request_id", cr.RequestID),
		zap.String("employee_id", employeeID),
		zap.String("date", req.Date))

	resp := toCorrectionResponse(cr)
	return &resp, nil
}

func (s *attendanceService) ListCorrections(ctx context.Context, employeeID string) ([]dto.CorrectionResponse, error) {
	crs, err := s.repo.Correction.List(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询更正申请列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CorrectionResponse, 0, len(crs))
	for i := range crs {
		result = append(result, toCorrectionResponse(&crs[i]))
	}
	return result, nil
}

// 审批通过时经由同一受唯一索引保护的考勤存储写入记录，
// 结算引擎随后会像对待自动生成记录一样跳过该 (employee, date)
func (s *attendanceService) DecideCorrection(ctx context.Context, requestID, deciderID string, approve bool) (*dto.CorrectionResponse, error) {
	cr, err := s.repo.Correction.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCorrectionNotFound
		}
		s.logger.Error("查询更正申请失败", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}
	if cr.Status != model.CorrectionStatusPending {
		return nil, ErrCorrectionDecided
	}

	if approve {
		emp, err := s.repo.Employee.GetByID(ctx, cr.EmployeeID)
		if err != nil {
			s.logger.Error("查询员工失败", zap.String("employee_id", cr.EmployeeID), zap.Error(err))
			return nil, err
		}

		// 工时按流水实配计算；更正只覆盖状态判定
		windowFrom, windowTo := dateutil.DayWindow(cr.Date, s.loc)
		events, err := s.repo.Checkin.ListByEmployeeAndRange(ctx, cr.EmployeeID, windowFrom, windowTo)
		if err != nil {
			s.logger.Error("查询流水失败", zap.String("employee_id", cr.EmployeeID), zap.Error(err))
			return nil, err
		}
		_, _, hours := pairWorkedHours(events)

		record := &model.AttendanceRecord{
			EmployeeID:   cr.EmployeeID,
			Date:         cr.Date,
			Status:       cr.RequestedStatus,
			WorkingHours: hours,
			Company:      emp.Company,
		}
		if assignment, err := s.currentAssignment(ctx, cr.EmployeeID, cr.Date); err == nil && assignment != nil {
			record.ShiftTypeID = &assignment.ShiftTypeID
		}

		if err := s.repo.Attendance.Create(ctx, record); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrAttendanceExists
			}
			s.logger.Error("写入更正考勤记录失败", zap.String("request_id", requestID), zap.Error(err))
			return nil, err
		}
		cr.Status = model.CorrectionStatusApproved
	} else {
		cr.Status = model.CorrectionStatusRejected
	}

	now := time.Now().In(s.loc)
	cr.DecidedBy = &deciderID
	cr.DecidedAt = &now
	if err := s.repo.Correction.Update(ctx, cr); err != nil {
		s.logger.Error("更新更正申请失败", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("考勤更正申请已审批",
		zap.String("request_id", requestID),
		zap.String("status", cr.Status),
		zap.String("decided_by", deciderID))

	resp := toCorrectionResponse(cr)
	return &resp, nil
}

// ────────────────────── 内部辅助 ──────────────────────

// resolveTargetDate 解析结算日期；缺省为昨天
func (s *attendanceService) resolveTargetDate(raw string) (time.Time, error) {
	if raw == "" {
		return dateutil.DateOf(time.Now().In(s.loc).AddDate(0, 0, -1), s.loc), nil
	}
	return dateutil.ParseDate(raw, s.loc)
}

func (s *attendanceService) currentAssignment(ctx context.Context, employeeID string, date time.Time) (*model.ShiftAssignment, error) {
	as, err := s.repo.Assignment.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for i := range as {
		if dateutil.ContainsDate(as[i].StartDate, as[i].EndDate, date) {
			return &as[i], nil
		}
	}
	return nil, nil
}

func toAttendanceRecordResponse(r *model.AttendanceRecord) dto.AttendanceRecordResponse {
	resp := dto.AttendanceRecordResponse{
		ID:           r.AttendanceID,
		EmployeeID:   r.EmployeeID,
		Date:         r.Date.Format(dateutil.DateLayout),
		Status:       r.Status,
		WorkingHours: r.WorkingHours.StringFixed(2),
		LateEntry:    r.LateEntry,
		EarlyExit:    r.EarlyExit,
	}
	if r.Employee != nil {
		resp.EmployeeName = r.Employee.Name
	}
	if r.ShiftType != nil {
		resp.ShiftName = r.ShiftType.Name
	}
	return resp
}

func toCorrectionResponse(cr *model.CorrectionRequest) dto.CorrectionResponse {
	resp := dto.CorrectionResponse{
		ID:              cr.RequestID,
		EmployeeID:      cr.EmployeeID,
		Date:            cr.Date.Format(dateutil.DateLayout),
		RequestedStatus: cr.RequestedStatus,
		Reason:          cr.Reason,
		Status:          cr.Status,
		DecidedBy:       cr.DecidedBy,
	}
	if cr.Employee != nil {
		resp.EmployeeName = cr.Employee.Name
	}
	if cr.DecidedAt != nil {
		v := cr.DecidedAt.Format(timestampLayout)
		resp.DecidedAt = &v
	}
	return resp
}
