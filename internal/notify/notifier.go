package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/blues/lms/internal/logger"
	"github.com/blues/lms/internal/model"
	"github.com/blues/lms/internal/webhook"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Notifier 运单事件广播器
// 把一条运单事件同时推给所有订阅了回调的承运商，
// 单个承运商的投递彼此独立，互不影响
type Notifier struct {
	db         *gorm.DB
	dispatcher *webhook.Dispatcher
	pool       *ants.Pool
}

// NewNotifier 创建事件广播器
func NewNotifier(db *gorm.DB, dispatcher *webhook.Dispatcher, poolSize int) (*Notifier, error) {
	if poolSize <= 0 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create notify pool: %w", err)
	}

	return &Notifier{
		db:         db,
		dispatcher: dispatcher,
		pool:       pool,
	}, nil
}

// Broadcast 向所有已订阅的承运商并发投递同一事件
func (n *Notifier) Broadcast(ctx context.Context, event string, shipment *model.ShipmentModel) ([]*model.WebhookDeliveryModel, error) {
	var carriers []model.CarrierModel
	if err := n.db.Where("active = ? AND webhook_url <> ''", true).Find(&carriers).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscribed carriers: %w", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []*model.WebhookDeliveryModel
	)

	for i := range carriers {
		carrier := carriers[i]
		wg.Add(1)
		err := n.pool.Submit(func() {
			defer wg.Done()
			record, err := n.dispatcher.Dispatch(ctx, carrier.Id, event, shipment)
			if err != nil {
				logger.Error("Failed to dispatch event %s to carrier %d: %v", event, carrier.Id, err)
				return
			}
			if record != nil {
				mu.Lock()
				records = append(records, record)
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit dispatch for carrier %d: %v", carrier.Id, err)
		}
	}

	wg.Wait()
	return records, nil
}

// Release 释放协程池
func (n *Notifier) Release() {
	n.pool.Release()
}
