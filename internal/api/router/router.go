package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nanpipat/hr-rebase/config"
	"github.com/nanpipat/hr-rebase/internal/api/handler"
	"github.com/nanpipat/hr-rebase/internal/api/middleware"
	"github.com/nanpipat/hr-rebase/pkg/jwt"
	"github.com/nanpipat/hr-rebase/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 打卡模块
			checkins := authorized.Group("/checkins")
			{
				checkins.POST("", h.Checkin.Submit)
				checkins.GET("/today", h.Checkin.TodayStatus)
				checkins.GET("/history", h.Checkin.History)
			}

			// 班次类型模块
			shiftTypes := authorized.Group("/shift-types")
			{
				shiftTypes.GET("", h.Shift.ListShiftTypes)
				shiftTypes.GET("/:id", h.Shift.GetShiftType)
				shiftTypes.POST("", middleware.RoleAuth("admin", "hr"), h.Shift.CreateShiftType)
				shiftTypes.PUT("/:id", middleware.RoleAuth("admin", "hr"), h.Shift.UpdateShiftType)
			}

			// 排班分配模块
			assignments := authorized.Group("/shift-assignments")
			{
				assignments.GET("", h.Shift.ListAssignments)
				assignments.GET("/current", h.Shift.CurrentShift)
				assignments.POST("", middleware.RoleAuth("admin", "hr"), h.Shift.Assign)
				assignments.DELETE("/:id", middleware.RoleAuth("admin", "hr"), h.Shift.Unassign)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/reconcile", middleware.RoleAuth("admin", "hr"), h.Attendance.Reconcile)
				attendance.GET("/summary", h.Attendance.Summary)
				attendance.GET("/detail", h.Attendance.Detail)
				attendance.POST("/corrections", h.Attendance.CreateCorrection)
				attendance.GET("/corrections", h.Attendance.ListCorrections)
				attendance.PUT("/corrections/:id", middleware.RoleAuth("admin", "hr"), h.Attendance.DecideCorrection)
				attendance.GET("/export", middleware.RoleAuth("admin", "hr"), h.Export.ExportAttendance)
			}
		}
	}

	return r
}
