package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nanpipat/hr-rebase/config"
	"github.com/nanpipat/hr-rebase/internal/api/handler"
	"github.com/nanpipat/hr-rebase/internal/api/router"
	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/repository"
	"github.com/nanpipat/hr-rebase/internal/service"
	"github.com/nanpipat/hr-rebase/pkg/database"
	"github.com/nanpipat/hr-rebase/pkg/jwt"
	applogger "github.com/nanpipat/hr-rebase/pkg/logger"
	"github.com/nanpipat/hr-rebase/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Attendance.Timezone),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与结算锁功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, logger)
	h := handler.NewHandler(cfg, svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 每日自动结算（可选）
	rootCtx, stopJobs := context.WithCancel(context.Background())
	if cfg.Attendance.AutoReconcile {
		go runDailyReconcile(rootCtx, cfg, svc.Attendance, logger)
	}

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// runDailyReconcile 在每天 attendance.auto_reconcile_at 时刻结算前一天的考勤。
// 单次失败仅记录日志，不影响后续触发；结算锁保证多实例下只有一个实例实际执行。
func runDailyReconcile(ctx context.Context, cfg *config.Config, attendanceSvc service.AttendanceService, logger *zap.Logger) {
	loc := cfg.Attendance.Location()
	at, err := time.Parse("15:04", cfg.Attendance.AutoReconcileAt)
	if err != nil {
		logger.Error("自动结算时刻解析失败，任务未启动", zap.Error(err))
		return
	}

	logger.Info("每日自动结算任务已启动", zap.String("at", cfg.Attendance.AutoReconcileAt))

	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		// Date 缺省即结算昨天
		result, err := attendanceSvc.Reconcile(ctx, &dto.ReconcileRequest{})
		if err != nil {
			logger.Error("每日自动结算失败", zap.Error(err))
			continue
		}
		logger.Info("每日自动结算完成",
			zap.String("date", result.Date),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", result.Errors),
		)
	}
}
