package task

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/lms/internal/config"
	"github.com/blues/lms/internal/guard"
	"github.com/blues/lms/internal/logger"
	"github.com/blues/lms/internal/logic"
	"github.com/blues/lms/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// TierJob 卖家分级任务
// 按滚动30天表现重算每个卖家的等级，逐个处理，单个卖家失败不中断整轮
type TierJob struct {
	db        *gorm.DB
	config    *config.Config
	guard     guard.JobGuard
	tierLogic *logic.TierLogic
}

// TierResult 一轮分级评估的汇总
type TierResult struct {
	Skipped   bool `json:"skipped"`
	Total     int  `json:"total"`
	Changed   int  `json:"changed"`
	Evaluated int  `json:"evaluated"`
	Failed    int  `json:"failed"`
}

// NewTierJob 创建卖家分级任务
func NewTierJob(db *gorm.DB, cfg *config.Config, g guard.JobGuard) *TierJob {
	return &TierJob{
		db:        db,
		config:    cfg,
		guard:     g,
		tierLogic: logic.NewTierLogic(db),
	}
}

// GetName 获取任务名称
func (j *TierJob) GetName() string {
	return "tier_evaluator"
}

// GetSchedule 获取调度配置
func (j *TierJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.TierIntervalHours) * time.Hour)
}

// Execute 执行任务
func (j *TierJob) Execute() {
	result, err := j.RunCycle(context.Background(), time.Now())
	if err != nil {
		logger.Error("Tier evaluation cycle aborted: %v", err)
		return
	}
	if result.Skipped {
		return
	}
	logger.Info("Tier evaluation cycle finished: %d sellers, %d changed, %d failed",
		result.Total, result.Changed, result.Failed)
}

// RunCycle 执行一轮分级评估
// 并发触发时返回 Skipped 结果；卖家查询失败属于整轮失败
func (j *TierJob) RunCycle(ctx context.Context, now time.Time) (*TierResult, error) {
	ok, err := j.guard.TryAcquire(ctx, j.GetName())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire tier guard: %w", err)
	}
	if !ok {
		logger.Warn("Tier evaluation cycle already running, skipping")
		return &TierResult{Skipped: true}, nil
	}
	defer func() {
		if err := j.guard.Release(ctx, j.GetName()); err != nil {
			logger.Error("Failed to release tier guard: %v", err)
		}
	}()

	var sellers []model.SellerModel
	err = j.db.Where("role = ? AND active = ?", model.SellerRoleSeller, true).Find(&sellers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sellers for evaluation: %w", err)
	}

	result := &TierResult{Total: len(sellers)}

	for i := range sellers {
		seller := &sellers[i]
		previous := seller.Tier

		record, err := j.tierLogic.EvaluateSeller(seller, now)
		if err != nil {
			logger.Error("Failed to evaluate seller %d: %v", seller.Id, err)
			result.Failed++
			continue
		}

		result.Evaluated++
		if record.NewTier != record.PreviousTier {
			result.Changed++
			logger.Info("Seller %d tier changed from %s to %s: %s",
				seller.Id, previous, record.NewTier, record.Reason)
		}
	}

	return result, nil
}
