package model

import (
	"encoding/json"
	"time"
)

// SettlementBatchModel 结算批次
// 由外部排期方在订单满足结算条件时创建，到期后由结算任务独占处理
type SettlementBatchModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SellerId       int64  `json:"seller_id" gorm:"index;not null"`
	TierAtSchedule string `json:"tier_at_schedule"` // 排期时的卖家等级
	OrderIds       string `json:"order_ids" gorm:"type:text"`
	TotalAmount    int64  `json:"total_amount" gorm:"not null"`

	Status        string     `json:"status" gorm:"index;default:'scheduled'"` // scheduled, processing, completed, failed
	DueAt         time.Time  `json:"due_at" gorm:"index;not null"`
	ProcessingAt  *time.Time `json:"processing_at"` // 进入 processing 的时间，用于僵死批次恢复
	CompletedAt   *time.Time `json:"completed_at"`
	FailureReason string     `json:"failure_reason"`
}

// BatchStatus 结算批次状态
type BatchStatus string

const (
	BatchStatusScheduled  BatchStatus = "scheduled"  // 待结算
	BatchStatusProcessing BatchStatus = "processing" // 处理中
	BatchStatusCompleted  BatchStatus = "completed"  // 已完成
	BatchStatusFailed     BatchStatus = "failed"     // 失败
)

// TableName 自定义表名
func (SettlementBatchModel) TableName() string {
	return "settlement_batch"
}

// GetOrderIds 解析批次包含的运单ID集合
func (b *SettlementBatchModel) GetOrderIds() ([]int64, error) {
	if b.OrderIds == "" {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(b.OrderIds), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetOrderIds 序列化批次包含的运单ID集合
func (b *SettlementBatchModel) SetOrderIds(ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	b.OrderIds = string(data)
	return nil
}
