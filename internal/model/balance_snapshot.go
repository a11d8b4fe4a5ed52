package model

import (
	"time"
)

// BalanceSnapshotModel 卖家资金与等级快照
// 每个卖家一行，由结算任务与分级任务覆盖更新
type BalanceSnapshotModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SellerId        int64  `json:"seller_id" gorm:"uniqueIndex;not null"`
	PendingAmount   int64  `json:"pending_amount" gorm:"default:0"`   // 待结算金额
	AvailableAmount int64  `json:"available_amount" gorm:"default:0"` // 可提现金额
	LifetimeSettled int64  `json:"lifetime_settled" gorm:"default:0"` // 累计已结算
	CurrentTier     string `json:"current_tier" gorm:"default:'bronze'"`

	// 滚动30天统计，分级任务每轮刷新
	MonthlyOrders    int64 `json:"monthly_orders" gorm:"default:0"`
	MonthlyDelivered int64 `json:"monthly_delivered" gorm:"default:0"`
	MonthlyRto       int64 `json:"monthly_rto" gorm:"default:0"`
	MonthlyCancelled int64 `json:"monthly_cancelled" gorm:"default:0"`

	LastEvaluatedAt *time.Time `json:"last_evaluated_at"`
}

// TableName 自定义表名
func (BalanceSnapshotModel) TableName() string {
	return "balance_snapshot"
}
