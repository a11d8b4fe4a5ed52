package model

import (
	"time"
)

// TierEvaluationModel 等级评估记录
// 每个评估周期每个卖家一条，无论等级是否变化都写入，作为审计轨迹
type TierEvaluationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	SellerId     int64  `json:"seller_id" gorm:"index;not null"`
	Period       string `json:"period" gorm:"index;not null"` // 评估周期，如 2026-08
	PreviousTier string `json:"previous_tier" gorm:"not null"`
	NewTier      string `json:"new_tier" gorm:"not null"`

	MonthlyOrders int64   `json:"monthly_orders"`
	RtoPercent    float64 `json:"rto_percent"`
	Reason        string  `json:"reason"`
}

// TableName 自定义表名
func (TierEvaluationModel) TableName() string {
	return "tier_evaluation"
}
