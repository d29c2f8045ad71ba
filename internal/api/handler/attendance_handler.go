package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/service"
	"github.com/nanpipat/hr-rebase/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Reconcile 批量结算某日考勤
// POST /api/v1/attendance/reconcile
func (h *AttendanceHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	// 请求体可为空：缺省结算昨天、不限公司
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Reconcile(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Summary 区间考勤汇总
// GET /api/v1/attendance/summary
func (h *AttendanceHandler) Summary(c *gin.Context) {
	var req dto.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	employeeID, ok := resolveTargetEmployee(c, req.EmployeeID)
	if !ok {
		return
	}

	summary, err := h.attendanceSvc.Summary(c.Request.Context(), employeeID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

// Detail 区间考勤明细（含迟到/早退统计与打卡流水）
// GET /api/v1/attendance/detail
func (h *AttendanceHandler) Detail(c *gin.Context) {
	var req dto.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	employeeID, ok := resolveTargetEmployee(c, req.EmployeeID)
	if !ok {
		return
	}

	detail, err := h.attendanceSvc.Detail(c.Request.Context(), employeeID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, detail)
}

// ────────────────────── 考勤更正 ──────────────────────

// CreateCorrection 发起考勤更正申请
// POST /api/v1/attendance/corrections
func (h *AttendanceHandler) CreateCorrection(c *gin.Context) {
	var req dto.CreateCorrectionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	correction, err := h.attendanceSvc.CreateCorrection(c.Request.Context(), employeeID, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, correction)
}

// ListCorrections 查询更正申请列表
// GET /api/v1/attendance/corrections
func (h *AttendanceHandler) ListCorrections(c *gin.Context) {
	employeeID, ok := resolveTargetEmployee(c, c.Query("employee_id"))
	if !ok {
		return
	}

	corrections, err := h.attendanceSvc.ListCorrections(c.Request.Context(), employeeID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": corrections})
}

// DecideCorrection 审批更正申请
// PUT /api/v1/attendance/corrections/:id
func (h *AttendanceHandler) DecideCorrection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	var req dto.DecideCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	deciderID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	correction, err := h.attendanceSvc.DecideCorrection(c.Request.Context(), id, deciderID, req.Approve)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, correction)
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReconcileInProgress):
		response.Conflict(c, 14001, "该日期结算任务正在执行")
	case errors.Is(err, service.ErrAttendanceExists):
		response.Conflict(c, 14002, "该日考勤记录已存在")
	case errors.Is(err, service.ErrCorrectionNotFound):
		response.NotFound(c, 14003, "更正申请不存在")
	case errors.Is(err, service.ErrCorrectionDecided):
		response.Conflict(c, 14004, "更正申请已审批")
	case errors.Is(err, service.ErrCorrectionDateFuture):
		response.BadRequest(c, 14005, "不能为未来日期发起更正")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.Forbidden(c, 12002, "员工账号已停用")
	case errors.Is(err, service.ErrDateRangeInvalid):
		response.BadRequest(c, 12007, "日期区间无效")
	default:
		response.InternalError(c)
	}
}
