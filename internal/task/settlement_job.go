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

// SettlementJob 结算任务
// 扫描到期的结算批次，逐个转成资金流水并更新卖家余额，
// 单个批次失败不中断整轮
type SettlementJob struct {
	db     *gorm.DB
	config *config.Config
	guard  guard.JobGuard
}

// BatchOutcome 单个批次的处理结果
type BatchOutcome struct {
	BatchId  int64  `json:"batch_id"`
	SellerId int64  `json:"seller_id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// SettlementResult 一轮结算的汇总
type SettlementResult struct {
	Skipped   bool           `json:"skipped"`
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
	Recovered int            `json:"recovered"`
	Outcomes  []BatchOutcome `json:"outcomes"`
}

// NewSettlementJob 创建结算任务
func NewSettlementJob(db *gorm.DB, cfg *config.Config, g guard.JobGuard) *SettlementJob {
	return &SettlementJob{
		db:     db,
		config: cfg,
		guard:  g,
	}
}

// GetName 获取任务名称
func (j *SettlementJob) GetName() string {
	return "settlement_processor"
}

// GetSchedule 获取调度配置
func (j *SettlementJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.SettlementIntervalHours) * time.Hour)
}

// Execute 执行任务
func (j *SettlementJob) Execute() {
	result, err := j.RunCycle(context.Background(), time.Now())
	if err != nil {
		logger.Error("Settlement cycle aborted: %v", err)
		return
	}
	if result.Skipped {
		return
	}
	logger.Info("Settlement cycle finished: %d batches, %d completed, %d failed",
		result.Total, result.Completed, result.Failed)
}

// RunCycle 执行一轮结算
// 并发触发时返回 Skipped 结果而不是报错；批次查询失败属于整轮失败，
// 释放守卫后向调用方返回错误，零批次被处理
func (j *SettlementJob) RunCycle(ctx context.Context, now time.Time) (*SettlementResult, error) {
	ok, err := j.guard.TryAcquire(ctx, j.GetName())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire settlement guard: %w", err)
	}
	if !ok {
		logger.Warn("Settlement cycle already running, skipping")
		return &SettlementResult{Skipped: true}, nil
	}
	defer func() {
		if err := j.guard.Release(ctx, j.GetName()); err != nil {
			logger.Error("Failed to release settlement guard: %v", err)
		}
	}()

	recovered, err := j.recoverStaleBatches(now)
	if err != nil {
		return nil, err
	}

	var batches []model.SettlementBatchModel
	err = j.db.Where("status = ? AND due_at <= ?", model.BatchStatusScheduled, now).
		Order("due_at").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due settlement batches: %w", err)
	}

	result := &SettlementResult{
		Total:     len(batches),
		Recovered: recovered,
		Outcomes:  make([]BatchOutcome, 0, len(batches)),
	}

	for i := range batches {
		outcome := j.processBatch(&batches[i])
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Status == string(model.BatchStatusCompleted) {
			result.Completed++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// recoverStaleBatches 回收僵死的 processing 批次
// 上一轮崩溃会把批次留在 processing，超过时限后重置为 scheduled 让本轮重新捞起
func (j *SettlementJob) recoverStaleBatches(now time.Time) (int, error) {
	staleMinutes := j.config.Task.StaleProcessingMinutes
	if staleMinutes <= 0 {
		staleMinutes = 30
	}
	cutoff := now.Add(-time.Duration(staleMinutes) * time.Minute)

	res := j.db.Model(&model.SettlementBatchModel{}).
		Where("status = ? AND processing_at < ?", model.BatchStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":        model.BatchStatusScheduled,
			"processing_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to recover stale processing batches: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logger.Warn("Recovered %d stale processing batches", res.RowsAffected)
	}
	return int(res.RowsAffected), nil
}

// processBatch 处理单个批次，任何失败都收敛为该批次的 failed 终态
func (j *SettlementJob) processBatch(batch *model.SettlementBatchModel) BatchOutcome {
	outcome := BatchOutcome{
		BatchId:  batch.Id,
		SellerId: batch.SellerId,
		Amount:   batch.TotalAmount,
	}

	// 先落 processing 标记，中途崩溃会留下可见的非终态而不是悄悄重跑
	started := time.Now()
	err := j.db.Model(batch).Updates(map[string]interface{}{
		"status":        model.BatchStatusProcessing,
		"processing_at": &started,
	}).Error
	if err != nil {
		logger.Error("Failed to mark batch %d processing: %v", batch.Id, err)
		outcome.Status = string(model.BatchStatusFailed)
		outcome.Error = err.Error()
		return outcome
	}

	if err := j.settle(batch); err != nil {
		logger.Error("Failed to settle batch %d for seller %d: %v", batch.Id, batch.SellerId, err)
		j.markFailed(batch, err.Error())
		outcome.Status = string(model.BatchStatusFailed)
		outcome.Error = err.Error()
		return outcome
	}

	completed := time.Now()
	err = j.db.Model(batch).Updates(map[string]interface{}{
		"status":       model.BatchStatusCompleted,
		"completed_at": &completed,
	}).Error
	if err != nil {
		logger.Error("Failed to mark batch %d completed: %v", batch.Id, err)
		outcome.Status = string(model.BatchStatusFailed)
		outcome.Error = err.Error()
		return outcome
	}

	logger.Info("Settled batch %d for seller %d, amount: %d", batch.Id, batch.SellerId, batch.TotalAmount)
	outcome.Status = string(model.BatchStatusCompleted)
	return outcome
}

// settle 把批次转成流水并更新余额，再把批次覆盖的运单标记为已结算
// 整体在一个事务里执行，入账和余额更新要么全落要么全滚；
// 崩在 completed 落库之前的批次会被回收重跑，流水已存在时跳过入账只补齐收尾，
// 保证每个批次至多产生一次资金变动
func (j *SettlementJob) settle(batch *model.SettlementBatchModel) error {
	return j.db.Transaction(func(tx *gorm.DB) error {
		var landed int64
		err := tx.Model(&model.LedgerEntryModel{}).
			Where("batch_id = ?", batch.Id).
			Count(&landed).Error
		if err != nil {
			return fmt.Errorf("failed to check ledger entry for batch %d: %w", batch.Id, err)
		}

		if landed > 0 {
			logger.Warn("Batch %d already has a ledger entry, skipping fund movement", batch.Id)
		} else {
			ledger := logic.NewLedgerLogic(tx)
			snapshot, err := ledger.LoadOrCreateSnapshot(batch.SellerId)
			if err != nil {
				return err
			}
			if _, err := ledger.AppendSettlement(snapshot, batch); err != nil {
				return err
			}
		}

		orderIds, err := batch.GetOrderIds()
		if err != nil {
			return fmt.Errorf("failed to parse order ids for batch %d: %w", batch.Id, err)
		}
		if len(orderIds) > 0 {
			now := time.Now()
			err := tx.Model(&model.ShipmentModel{}).
				Where("id IN ?", orderIds).
				Updates(map[string]interface{}{
					"settled":    true,
					"settled_at": &now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to mark shipments settled for batch %d: %w", batch.Id, err)
			}
		}

		return nil
	})
}

// markFailed 把批次置为失败并记录原因
func (j *SettlementJob) markFailed(batch *model.SettlementBatchModel, reason string) {
	err := j.db.Model(batch).Updates(map[string]interface{}{
		"status":         model.BatchStatusFailed,
		"failure_reason": reason,
	}).Error
	if err != nil {
		logger.Error("Failed to mark batch %d failed: %v", batch.Id, err)
	}
}
