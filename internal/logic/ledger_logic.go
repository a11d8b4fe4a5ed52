package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/lms/internal/model"
	"gorm.io/gorm"
)

// LedgerLogic 资金流水业务逻辑
type LedgerLogic struct {
	db *gorm.DB
}

// NewLedgerLogic 创建资金流水业务逻辑
func NewLedgerLogic(db *gorm.DB) *LedgerLogic {
	return &LedgerLogic{db: db}
}

// LoadOrCreateSnapshot 加载卖家资金快照，首次接触时创建零值快照
func (l *LedgerLogic) LoadOrCreateSnapshot(sellerId int64) (*model.BalanceSnapshotModel, error) {
	var snapshot model.BalanceSnapshotModel
	err := l.db.Where("seller_id = ?", sellerId).First(&snapshot).Error
	if err == nil {
		return &snapshot, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load balance snapshot for seller %d: %w", sellerId, err)
	}

	snapshot = model.BalanceSnapshotModel{
		SellerId:    sellerId,
		CurrentTier: string(model.SellerTierBronze),
	}
	if err := l.db.Create(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to create balance snapshot for seller %d: %w", sellerId, err)
	}
	return &snapshot, nil
}

// AppendSettlement 追加一条结算流水并更新卖家资金快照
// 流水前后余额满足 availableAfter = availableBefore + amount，
// pendingAfter = max(0, pendingBefore - amount)
func (l *LedgerLogic) AppendSettlement(snapshot *model.BalanceSnapshotModel, batch *model.SettlementBatchModel) (*model.LedgerEntryModel, error) {
	if batch.TotalAmount <= 0 {
		return nil, fmt.Errorf("invalid settlement amount %d for batch %d", batch.TotalAmount, batch.Id)
	}

	pendingAfter := snapshot.PendingAmount - batch.TotalAmount
	if pendingAfter < 0 {
		pendingAfter = 0
	}

	entry := &model.LedgerEntryModel{
		SellerId:        batch.SellerId,
		Kind:            string(model.LedgerKindSettlement),
		Amount:          batch.TotalAmount,
		BatchId:         batch.Id,
		PendingBefore:   snapshot.PendingAmount,
		PendingAfter:    pendingAfter,
		AvailableBefore: snapshot.AvailableAmount,
		AvailableAfter:  snapshot.AvailableAmount + batch.TotalAmount,
		Description:     fmt.Sprintf("settlement of batch %d", batch.Id),
	}
	if err := l.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create ledger entry for batch %d: %w", batch.Id, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"pending_amount":   entry.PendingAfter,
		"available_amount": entry.AvailableAfter,
		"lifetime_settled": snapshot.LifetimeSettled + batch.TotalAmount,
		"updated_at":       now,
	}
	if err := l.db.Model(snapshot).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update balance snapshot for seller %d: %w", batch.SellerId, err)
	}

	snapshot.PendingAmount = entry.PendingAfter
	snapshot.AvailableAmount = entry.AvailableAfter
	snapshot.LifetimeSettled += batch.TotalAmount
	snapshot.UpdatedAt = now

	return entry, nil
}

// GetSellerEntries 分页获取卖家流水
func (l *LedgerLogic) GetSellerEntries(sellerId int64, page, pageSize int) ([]model.LedgerEntryModel, int64, error) {
	var entries []model.LedgerEntryModel
	var total int64

	if err := l.db.Model(&model.LedgerEntryModel{}).Where("seller_id = ?", sellerId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("seller_id = ?", sellerId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries: %w", err)
	}

	return entries, total, nil
}
