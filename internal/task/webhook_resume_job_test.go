package task

import (
	"context"
	"testing"

	"github.com/blues/lms/internal/config"
	"github.com/blues/lms/internal/guard"
	"github.com/blues/lms/internal/webhook"
)

func resumeTestConfig() *config.Config {
	return &config.Config{
		Webhook: config.WebhookConfig{
			TimeoutSeconds: 2,
			MaxAttempts:    3,
			StaleMinutes:   15,
			ResumeMinutes:  10,
		},
	}
}

func TestWebhookResumeCycleSkipsWhenRunning(t *testing.T) {
	db := openTestDB(t)
	cfg := resumeTestConfig()

	g := guard.NewRunGuard()
	job := NewWebhookResumeJob(webhook.NewDispatcher(db, cfg.Webhook), cfg, g)

	// 模拟已有一轮在跑
	if ok, _ := g.TryAcquire(context.Background(), job.GetName()); !ok {
		t.Fatal("setup: failed to hold guard")
	}

	resumed, skipped, err := job.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("concurrent invocation must not error: %v", err)
	}
	if !skipped {
		t.Fatal("expected skipped cycle")
	}
	if resumed != 0 {
		t.Fatalf("skipped cycle must resume nothing, got %d", resumed)
	}
}

func TestWebhookResumeCycleReleasesGuard(t *testing.T) {
	db := openTestDB(t)
	cfg := resumeTestConfig()
	job := NewWebhookResumeJob(webhook.NewDispatcher(db, cfg.Webhook), cfg, guard.NewRunGuard())

	for i := 0; i < 2; i++ {
		_, skipped, err := job.RunCycle(context.Background())
		if err != nil {
			t.Fatalf("cycle %d failed: %v", i+1, err)
		}
		if skipped {
			t.Fatalf("cycle %d unexpectedly skipped", i+1)
		}
	}
}
