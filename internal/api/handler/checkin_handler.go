package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/service"
	"github.com/nanpipat/hr-rebase/pkg/response"
)

// CheckinHandler 打卡模块 HTTP 处理器
type CheckinHandler struct {
	checkinSvc service.CheckinService
}

// NewCheckinHandler 创建 CheckinHandler
func NewCheckinHandler(checkinSvc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinSvc: checkinSvc}
}

// Submit 提交打卡（IN/OUT 严格交替）
// POST /api/v1/checkins
func (h *CheckinHandler) Submit(c *gin.Context) {
	var req dto.SubmitCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	event, err := h.checkinSvc.Submit(c.Request.Context(), employeeID, req.Direction)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}

	response.Created(c, event)
}

// TodayStatus 今日打卡实时状态
// GET /api/v1/checkins/today
func (h *CheckinHandler) TodayStatus(c *gin.Context) {
	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	summary, err := h.checkinSvc.TodayStatus(c.Request.Context(), employeeID)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}

	response.OK(c, summary)
}

// History 历史打卡（按日分桶，日期倒序）
// GET /api/v1/checkins/history
func (h *CheckinHandler) History(c *gin.Context) {
	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	employeeID, ok := MustGetEmployeeID(c)
	if !ok {
		return
	}

	days, err := h.checkinSvc.History(c.Request.Context(), employeeID, &req)
	if err != nil {
		h.handleCheckinError(c, err)
		return
	}

	response.OK(c, gin.H{"list": days})
}

// handleCheckinError 统一处理打卡模块业务错误
func (h *CheckinHandler) handleCheckinError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.Forbidden(c, 12002, "员工账号已停用")
	case errors.Is(err, service.ErrInvalidDirection):
		response.BadRequest(c, 12003, "打卡方向无效")
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 12004, "已签到，请先签退")
	case errors.Is(err, service.ErrNotCheckedIn):
		response.Conflict(c, 12005, "今日尚未签到")
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		response.Conflict(c, 12006, "已签退，请先签到")
	case errors.Is(err, service.ErrDateRangeInvalid):
		response.BadRequest(c, 12007, "日期区间无效")
	default:
		response.InternalError(c)
	}
}
