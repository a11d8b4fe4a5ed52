package task

import (
	"github.com/blues/lms/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// Job 可调度任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

// NewManager 创建任务管理器
// 任务实例由外部注入，与手动触发入口共享同一份互斥守卫
func NewManager(jobs ...Job) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		jobs:      jobs,
	}
}

// Start 注册所有任务并启动调度器
func (m *Manager) Start() {
	for _, job := range m.jobs {
		_, err := m.scheduler.NewJob(
			job.GetSchedule(),
			gocron.NewTask(job.Execute),
			gocron.WithName(job.GetName()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			logger.Error("Failed to register job %s: %v", job.GetName(), err)
			continue
		}
		logger.Info("Registered job %s", job.GetName())
	}

	m.scheduler.Start()
	logger.Info("Task manager started successfully")
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
