package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/service"
	"github.com/nanpipat/hr-rebase/pkg/dateutil"
	"github.com/nanpipat/hr-rebase/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
	loc      *time.Location
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService, loc *time.Location) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, loc: loc}
}

// ────────────────────── 班次类型 ──────────────────────

// CreateShiftType 创建班次类型
// POST /api/v1/shift-types
func (h *ShiftHandler) CreateShiftType(c *gin.Context) {
	var req dto.CreateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shift, err := h.shiftSvc.CreateShiftType(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShiftType 更新班次类型（仅时间与宽限）
// PUT /api/v1/shift-types/:id
func (h *ShiftHandler) UpdateShiftType(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.UpdateShiftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shift, err := h.shiftSvc.UpdateShiftType(c.Request.Context(), id, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// GetShiftType 获取班次类型详情
// GET /api/v1/shift-types/:id
func (h *ShiftHandler) GetShiftType(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	shift, err := h.shiftSvc.GetShiftType(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// ListShiftTypes 获取班次类型列表
// GET /api/v1/shift-types
func (h *ShiftHandler) ListShiftTypes(c *gin.Context) {
	shifts, err := h.shiftSvc.ListShiftTypes(c.Request.Context())
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// ────────────────────── 排班分配 ──────────────────────

// Assign 为员工分配班次
// POST /api/v1/shift-assignments
func (h *ShiftHandler) Assign(c *gin.Context) {
	var req dto.AssignShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.shiftSvc.Assign(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, assignment)
}

// Unassign 取消班次分配
// DELETE /api/v1/shift-assignments/:id
func (h *ShiftHandler) Unassign(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "分配ID不能为空")
		return
	}

	if err := h.shiftSvc.Unassign(c.Request.Context(), id); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// CurrentShift 查询某员工某日生效的班次
// GET /api/v1/shift-assignments/current
func (h *ShiftHandler) CurrentShift(c *gin.Context) {
	var req dto.CurrentShiftRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	employeeID, ok := resolveTargetEmployee(c, req.EmployeeID)
	if !ok {
		return
	}

	date := time.Now().In(h.loc)
	if req.Date != "" {
		parsed, err := dateutil.ParseDate(req.Date, h.loc)
		if err != nil {
			response.BadRequest(c, 10001, "日期格式无效")
			return
		}
		date = parsed
	}

	assignment, err := h.shiftSvc.CurrentShiftFor(c.Request.Context(), employeeID, date)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	// 无生效分配时返回 null，由调用方按默认规则处理
	response.OK(c, assignment)
}

// ListAssignments 获取分配列表
// GET /api/v1/shift-assignments
func (h *ShiftHandler) ListAssignments(c *gin.Context) {
	employeeID, ok := resolveTargetEmployee(c, c.Query("employee_id"))
	if !ok {
		return
	}

	assignments, err := h.shiftSvc.ListAssignments(c.Request.Context(), employeeID, c.Query("company"))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.NotFound(c, 13001, "班次类型不存在")
	case errors.Is(err, service.ErrShiftTypeExists):
		response.Conflict(c, 13002, "班次名称已存在")
	case errors.Is(err, service.ErrClockInvalid):
		response.BadRequest(c, 13003, "班次时间格式无效")
	case errors.Is(err, service.ErrThresholdInvalid):
		response.BadRequest(c, 13004, "工时阈值无效")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 13005, "班次分配不存在")
	case errors.Is(err, service.ErrAssignmentNotActive):
		response.Conflict(c, 13006, "班次分配已取消")
	case errors.Is(err, service.ErrAssignmentOverlap):
		response.ErrorWithDetails(c, http.StatusConflict, 13007, "班次分配时段重叠", err.Error())
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
