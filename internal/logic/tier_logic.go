package logic

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/blues/lms/internal/model"
	"gorm.io/gorm"
)

// 等级阈值
// 升降档阈值不对称，形成滞回带，避免卖家在边界附近反复升降
const (
	goldOrderFloor   = 500 // 低于此单量金牌降档
	goldOrderBar     = 800 // 超过此单量可升金牌
	silverOrderFloor = 150 // 低于此单量银牌降档
	silverOrderBar   = 300 // 超过此单量青铜可升银牌
	goldRtoCeiling   = 15.0
	silverRtoCeiling = 20.0

	evaluationWindow = 30 * 24 * time.Hour
)

// SellerMetrics 卖家滚动窗口表现
type SellerMetrics struct {
	TotalOrders int64
	Delivered   int64
	Returned    int64
	Cancelled   int64
	RtoPercent  float64
}

// TierLogic 卖家分级业务逻辑
type TierLogic struct {
	db     *gorm.DB
	ledger *LedgerLogic
}

// NewTierLogic 创建卖家分级业务逻辑
func NewTierLogic(db *gorm.DB) *TierLogic {
	return &TierLogic{db: db, ledger: NewLedgerLogic(db)}
}

// ComputeMetrics 统计卖家在 [now-30d, now] 窗口内的表现
func (t *TierLogic) ComputeMetrics(sellerId int64, now time.Time) (SellerMetrics, error) {
	windowStart := now.Add(-evaluationWindow)
	var metrics SellerMetrics

	base := func() *gorm.DB {
		return t.db.Model(&model.ShipmentModel{}).
			Where("seller_id = ? AND created_at >= ? AND created_at <= ?", sellerId, windowStart, now)
	}

	if err := base().Count(&metrics.TotalOrders).Error; err != nil {
		return metrics, fmt.Errorf("failed to count orders for seller %d: %w", sellerId, err)
	}
	if err := base().Where("status = ?", model.ShipmentStatusDelivered).Count(&metrics.Delivered).Error; err != nil {
		return metrics, fmt.Errorf("failed to count delivered orders for seller %d: %w", sellerId, err)
	}
	if err := base().Where("status = ?", model.ShipmentStatusRto).Count(&metrics.Returned).Error; err != nil {
		return metrics, fmt.Errorf("failed to count RTO orders for seller %d: %w", sellerId, err)
	}
	if err := base().Where("status = ?", model.ShipmentStatusCancelled).Count(&metrics.Cancelled).Error; err != nil {
		return metrics, fmt.Errorf("failed to count cancelled orders for seller %d: %w", sellerId, err)
	}

	if metrics.TotalOrders > 0 {
		metrics.RtoPercent = math.Round(float64(metrics.Returned)/float64(metrics.TotalOrders)*10000) / 100
	}

	return metrics, nil
}

// DecideTier 根据窗口表现决定卖家等级
// 先检查升档，再检查降档，降档可以覆盖同一轮的升档结果
func DecideTier(previous string, metrics SellerMetrics) (string, string) {
	tier := previous
	n := metrics.TotalOrders
	r := metrics.RtoPercent
	var reasons []string

	if n > goldOrderBar && r <= goldRtoCeiling {
		tier = string(model.SellerTierGold)
		reasons = append(reasons, fmt.Sprintf("upgraded to gold: %d orders with %.2f%% RTO", n, r))
	} else if tier == string(model.SellerTierBronze) && n > silverOrderBar && r <= goldRtoCeiling {
		tier = string(model.SellerTierSilver)
		reasons = append(reasons, fmt.Sprintf("upgraded to silver: %d orders with %.2f%% RTO", n, r))
	}

	if tier == string(model.SellerTierGold) && (n < goldOrderFloor || r > goldRtoCeiling) {
		tier = string(model.SellerTierSilver)
		reasons = append(reasons, fmt.Sprintf("downgraded to silver: %d orders, %.2f%% RTO below gold requirements", n, r))
	}
	if tier == string(model.SellerTierSilver) && (n < silverOrderFloor || r > silverRtoCeiling) {
		tier = string(model.SellerTierBronze)
		reasons = append(reasons, fmt.Sprintf("downgraded to bronze: %d orders, %.2f%% RTO below silver requirements", n, r))
	}

	if len(reasons) == 0 {
		return tier, fmt.Sprintf("no change: %d orders with %.2f%% RTO", n, r)
	}
	return tier, strings.Join(reasons, "; ")
}

// EvaluateSeller 评估单个卖家并落审计记录
// 无论等级是否变化都写评估记录；等级变化时同步卖家与快照，
// 滚动统计无条件刷新
func (t *TierLogic) EvaluateSeller(seller *model.SellerModel, now time.Time) (*model.TierEvaluationModel, error) {
	snapshot, err := t.ledger.LoadOrCreateSnapshot(seller.Id)
	if err != nil {
		return nil, err
	}

	previous := snapshot.CurrentTier
	metrics, err := t.ComputeMetrics(seller.Id, now)
	if err != nil {
		return nil, err
	}

	newTier, reason := DecideTier(previous, metrics)

	record := &model.TierEvaluationModel{
		SellerId:      seller.Id,
		Period:        now.UTC().Format("2006-01"),
		PreviousTier:  previous,
		NewTier:       newTier,
		MonthlyOrders: metrics.TotalOrders,
		RtoPercent:    metrics.RtoPercent,
		Reason:        reason,
	}
	if err := t.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create tier evaluation for seller %d: %w", seller.Id, err)
	}

	if newTier != previous {
		if err := t.db.Model(&model.SellerModel{}).Where("id = ?", seller.Id).Update("tier", newTier).Error; err != nil {
			return nil, fmt.Errorf("failed to update seller %d tier: %w", seller.Id, err)
		}
		seller.Tier = newTier
	}

	updates := map[string]interface{}{
		"current_tier":      newTier,
		"monthly_orders":    metrics.TotalOrders,
		"monthly_delivered": metrics.Delivered,
		"monthly_rto":       metrics.Returned,
		"monthly_cancelled": metrics.Cancelled,
		"last_evaluated_at": now,
	}
	if err := t.db.Model(snapshot).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update balance snapshot for seller %d: %w", seller.Id, err)
	}

	return record, nil
}

// GetSellerEvaluations 分页获取卖家评估记录
func (t *TierLogic) GetSellerEvaluations(sellerId int64, page, pageSize int) ([]model.TierEvaluationModel, int64, error) {
	var records []model.TierEvaluationModel
	var total int64

	if err := t.db.Model(&model.TierEvaluationModel{}).Where("seller_id = ?", sellerId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tier evaluations: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := t.db.Where("seller_id = ?", sellerId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tier evaluations: %w", err)
	}

	return records, total, nil
}
