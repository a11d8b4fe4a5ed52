package model

import (
	"time"
)

// LedgerEntryModel 资金流水
// 只追加，创建后不再修改或删除
type LedgerEntryModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	SellerId int64  `json:"seller_id" gorm:"index;not null"`
	Kind     string `json:"kind" gorm:"not null"` // settlement
	Amount   int64  `json:"amount" gorm:"not null"`
	BatchId  int64  `json:"batch_id" gorm:"index"`

	PendingBefore   int64 `json:"pending_before"`
	PendingAfter    int64 `json:"pending_after"`
	AvailableBefore int64 `json:"available_before"`
	AvailableAfter  int64 `json:"available_after"`

	Description string `json:"description"`
}

// LedgerKind 流水类型
type LedgerKind string

const (
	LedgerKindSettlement LedgerKind = "settlement" // 结算入账
)

// TableName 自定义表名
func (LedgerEntryModel) TableName() string {
	return "ledger_entry"
}
