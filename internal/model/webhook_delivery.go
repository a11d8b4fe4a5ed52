package model

import (
	"time"
)

// WebhookDeliveryModel 外发通知投递记录
// 一条记录对应一次事件的完整尝试序列，重试时原地更新
type WebhookDeliveryModel struct {
	Id        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CarrierId  int64  `json:"carrier_id" gorm:"index;not null"`
	ShipmentId int64  `json:"shipment_id" gorm:"index;not null"`
	Event      string `json:"event" gorm:"not null"`
	TargetUrl  string `json:"target_url" gorm:"not null"`
	Payload    string `json:"payload" gorm:"type:text"` // 发送时的载荷快照
	Signature  string `json:"signature"`

	Status       string     `json:"status" gorm:"index;default:'pending'"` // pending, success, failed
	AttemptCount int        `json:"attempt_count" gorm:"default:0"`
	MaxAttempts  int        `json:"max_attempts" gorm:"default:3"`
	LastAttempt  *time.Time `json:"last_attempt"`
	LastError    string     `json:"last_error"`

	ResponseStatus int        `json:"response_status"`
	ResponseBody   string     `json:"response_body"` // 截断后的响应快照
	CompletedAt    *time.Time `json:"completed_at"`
}

// DeliveryStatus 投递状态
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending" // 投递中
	DeliveryStatusSuccess DeliveryStatus = "success" // 成功
	DeliveryStatusFailed  DeliveryStatus = "failed"  // 重试耗尽
)

// TableName 自定义表名
func (WebhookDeliveryModel) TableName() string {
	return "webhook_delivery"
}
