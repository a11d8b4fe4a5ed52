package main

import (
	"time"

	"github.com/blues/lms/internal/config"
	"github.com/blues/lms/internal/database"
	"github.com/blues/lms/internal/guard"
	"github.com/blues/lms/internal/logger"
	"github.com/blues/lms/internal/notify"
	"github.com/blues/lms/internal/router"
	"github.com/blues/lms/internal/task"
	"github.com/blues/lms/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	level := logger.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.Output == "file" {
		fileLogger, err := logger.NewWithFileRotation(level, cfg.Log.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 任务互斥守卫：单实例用进程内单飞，多实例用 Redis 租约
	newGuard := func() guard.JobGuard { return guard.NewRunGuard() }
	if cfg.Task.DistributedLock {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := time.Duration(cfg.Task.LockTTLMinutes) * time.Minute
		newGuard = func() guard.JobGuard { return guard.NewRedisJobLease(rdb, ttl) }
	}

	// 外发通知
	dispatcher := webhook.NewDispatcher(db, cfg.Webhook)
	notifier, err := notify.NewNotifier(db, dispatcher, cfg.Webhook.NotifyPoolSize)
	if err != nil {
		logger.Fatal("Failed to initialize notifier: %v", err)
	}
	defer notifier.Release()

	// 定时任务
	settlementJob := task.NewSettlementJob(db, cfg, newGuard())
	tierJob := task.NewTierJob(db, cfg, newGuard())
	jobs := []task.Job{settlementJob, tierJob}
	if cfg.Webhook.ResumeMinutes > 0 {
		jobs = append(jobs, task.NewWebhookResumeJob(dispatcher, cfg, newGuard()))
	}
	manager := task.NewManager(jobs...)
	manager.Start()
	defer manager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由并启动服务器
	r := router.Setup(db, dispatcher, notifier, settlementJob, tierJob)

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
