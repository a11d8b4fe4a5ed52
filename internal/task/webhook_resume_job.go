package task

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/lms/internal/config"
	"github.com/blues/lms/internal/guard"
	"github.com/blues/lms/internal/logger"
	"github.com/blues/lms/internal/webhook"
	"github.com/go-co-op/gocron/v2"
)

// WebhookResumeJob 滞留投递补发任务
// 投递进行到一半进程重启会把记录留在 pending，
// 本任务周期性把超过可见窗口的记录按剩余次数续投
type WebhookResumeJob struct {
	dispatcher *webhook.Dispatcher
	config     *config.Config
	guard      guard.JobGuard
}

// NewWebhookResumeJob 创建补发任务
func NewWebhookResumeJob(dispatcher *webhook.Dispatcher, cfg *config.Config, g guard.JobGuard) *WebhookResumeJob {
	return &WebhookResumeJob{
		dispatcher: dispatcher,
		config:     cfg,
		guard:      g,
	}
}

// GetName 获取任务名称
func (j *WebhookResumeJob) GetName() string {
	return "webhook_resume"
}

// GetSchedule 获取调度配置
func (j *WebhookResumeJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Webhook.ResumeMinutes) * time.Minute)
}

// Execute 执行任务
func (j *WebhookResumeJob) Execute() {
	resumed, skipped, err := j.RunCycle(context.Background())
	if err != nil {
		logger.Error("Failed to resume stale deliveries: %v", err)
		return
	}
	if skipped {
		return
	}
	if resumed > 0 {
		logger.Info("Resumed %d stale webhook deliveries", resumed)
	}
}

// RunCycle 执行一轮补发
// 与结算、评级任务一样持守卫单飞，避免同一条滞留投递被并发续投两次
func (j *WebhookResumeJob) RunCycle(ctx context.Context) (int, bool, error) {
	ok, err := j.guard.TryAcquire(ctx, j.GetName())
	if err != nil {
		return 0, false, fmt.Errorf("failed to acquire resume guard: %w", err)
	}
	if !ok {
		logger.Warn("Webhook resume cycle already running, skipping")
		return 0, true, nil
	}
	defer func() {
		if err := j.guard.Release(ctx, j.GetName()); err != nil {
			logger.Error("Failed to release resume guard: %v", err)
		}
	}()

	staleMinutes := j.config.Webhook.StaleMinutes
	if staleMinutes <= 0 {
		staleMinutes = 15
	}

	resumed, err := j.dispatcher.ResumeStale(ctx, time.Duration(staleMinutes)*time.Minute)
	if err != nil {
		return 0, false, err
	}
	return resumed, false, nil
}
