package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/lms/internal/config"
	"github.com/blues/lms/internal/logger"
	"github.com/blues/lms/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 投递请求头
const (
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryId = "X-Delivery-Id"
	HeaderSignature  = "X-Webhook-Signature"
	HeaderApiKey     = "X-Api-Key"
)

const (
	maxResponseSnapshot = 500 // 响应体审计快照长度
	maxErrorSnapshot    = 200 // HTTP 失败信息截断长度
)

// Dispatcher 外发通知投递器
// 对单个承运商端点做一次事件投递，进程内顺序重试，重试耗尽即终态
type Dispatcher struct {
	db          *gorm.DB
	client      *http.Client
	timeout     time.Duration
	maxAttempts int
	backoffBase time.Duration
}

// NewDispatcher 创建投递器
func NewDispatcher(db *gorm.DB, cfg config.WebhookConfig) *Dispatcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoffBase := time.Duration(cfg.BackoffBaseSeconds) * time.Second
	if backoffBase <= 0 {
		backoffBase = time.Second
	}

	return &Dispatcher{
		db:          db,
		client:      &http.Client{},
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Dispatch 向承运商注册的端点投递一条运单事件
// 承运商未配置回调地址时是约定的空操作，返回 (nil, nil) 且不产生投递记录；
// 投递失败不作为 error 返回，结果以投递记录的终态表达
func (d *Dispatcher) Dispatch(ctx context.Context, carrierId int64, event string, shipment *model.ShipmentModel) (*model.WebhookDeliveryModel, error) {
	var carrier model.CarrierModel
	if err := d.db.First(&carrier, carrierId).Error; err != nil {
		return nil, fmt.Errorf("failed to load carrier %d: %w", carrierId, err)
	}

	if carrier.WebhookUrl == "" {
		logger.Debug("Carrier %d has no webhook endpoint, skipping event %s", carrierId, event)
		return nil, nil
	}

	var packages []model.ShipmentPackageModel
	if err := d.db.Where("shipment_id = ?", shipment.Id).Order("id").Find(&packages).Error; err != nil {
		return nil, fmt.Errorf("failed to load packages for shipment %d: %w", shipment.Id, err)
	}

	var events []model.TrackingEventModel
	if err := d.db.Where("shipment_id = ?", shipment.Id).Order("occurred_at").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load tracking events for shipment %d: %w", shipment.Id, err)
	}

	payload := BuildPayload(shipment, packages, events, &carrier)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for shipment %d: %w", shipment.Id, err)
	}

	record := &model.WebhookDeliveryModel{
		Id:          uuid.NewString(),
		CarrierId:   carrier.Id,
		ShipmentId:  shipment.Id,
		Event:       event,
		TargetUrl:   carrier.WebhookUrl,
		Payload:     string(body),
		Signature:   Sign(body, carrier.WebhookSecret),
		Status:      string(model.DeliveryStatusPending),
		MaxAttempts: d.maxAttempts,
	}
	if err := d.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create delivery record: %w", err)
	}

	d.deliver(ctx, record, &carrier, body)
	return record, nil
}

// ResumeStale 补发滞留的 pending 记录
// 进程崩溃会让进行中的投递停在 pending，超过可见窗口后由本方法按剩余次数续投
func (d *Dispatcher) ResumeStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var records []model.WebhookDeliveryModel
	err := d.db.Where("status = ?", model.DeliveryStatusPending).
		Where("(last_attempt IS NOT NULL AND last_attempt < ?) OR (last_attempt IS NULL AND created_at < ?)", cutoff, cutoff).
		Find(&records).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query stale deliveries: %w", err)
	}

	resumed := 0
	for i := range records {
		record := &records[i]

		var carrier model.CarrierModel
		if err := d.db.First(&carrier, record.CarrierId).Error; err != nil {
			logger.Error("Failed to load carrier %d for stale delivery %s: %v", record.CarrierId, record.Id, err)
			continue
		}

		logger.Info("Resuming stale delivery %s (attempt %d/%d)", record.Id, record.AttemptCount, record.MaxAttempts)
		d.deliver(ctx, record, &carrier, []byte(record.Payload))
		resumed++
	}

	return resumed, nil
}

// deliver 执行尝试循环，从记录当前的尝试次数续起
// 上层取消时中途退出，记录保持 pending 交给补发任务续投，
// 只有重试真正耗尽才落 failed 终态
func (d *Dispatcher) deliver(ctx context.Context, record *model.WebhookDeliveryModel, carrier *model.CarrierModel, body []byte) {
	for attempt := record.AttemptCount + 1; attempt <= record.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			logger.Warn("Delivery %s interrupted before attempt %d, leaving pending for resume", record.Id, attempt)
			return
		}

		now := time.Now()
		record.AttemptCount = attempt
		record.LastAttempt = &now
		if err := d.db.Model(record).Updates(map[string]interface{}{
			"attempt_count": attempt,
			"last_attempt":  &now,
		}).Error; err != nil {
			logger.Error("Failed to persist attempt %d for delivery %s: %v", attempt, record.Id, err)
		}

		status, respBody, attemptErr := d.attempt(ctx, record, carrier, body)
		if attemptErr == nil {
			completed := time.Now()
			record.Status = string(model.DeliveryStatusSuccess)
			record.ResponseStatus = status
			record.ResponseBody = respBody
			record.CompletedAt = &completed
			record.LastError = ""
			if err := d.db.Save(record).Error; err != nil {
				logger.Error("Failed to persist delivery %s success: %v", record.Id, err)
			}
			logger.Info("Delivered event %s for shipment %d to carrier %d on attempt %d",
				record.Event, record.ShipmentId, record.CarrierId, attempt)
			return
		}

		record.LastError = attemptErr.Error()
		record.ResponseStatus = status
		record.ResponseBody = respBody
		if err := d.db.Model(record).Updates(map[string]interface{}{
			"last_error":      record.LastError,
			"response_status": status,
			"response_body":   respBody,
		}).Error; err != nil {
			logger.Error("Failed to persist delivery %s attempt error: %v", record.Id, err)
		}
		logger.Warn("Delivery %s attempt %d/%d failed: %v", record.Id, attempt, record.MaxAttempts, attemptErr)

		// 最后一次失败后不再退避
		if attempt < record.MaxAttempts {
			if !d.sleep(ctx, d.backoff(attempt)) {
				logger.Warn("Delivery %s interrupted during backoff, leaving pending for resume", record.Id)
				return
			}
		}
	}

	record.Status = string(model.DeliveryStatusFailed)
	if err := d.db.Save(record).Error; err != nil {
		logger.Error("Failed to persist delivery %s failure: %v", record.Id, err)
	}
	logger.Warn("Delivery %s exhausted %d attempts for shipment %d", record.Id, record.MaxAttempts, record.ShipmentId)
}

// attempt 发起单次 HTTP 投递，受单次超时约束
func (d *Dispatcher) attempt(ctx context.Context, record *model.WebhookDeliveryModel, carrier *model.CarrierModel, body []byte) (int, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, record.TargetUrl, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, record.Event)
	req.Header.Set(HeaderDeliveryId, record.Id)
	req.Header.Set(HeaderSignature, record.Signature)
	if carrier.ApiKey != "" {
		req.Header.Set(HeaderApiKey, carrier.ApiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSnapshot+1))
	snapshot := truncate(string(respBody), maxResponseSnapshot)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, snapshot, nil
	}

	msg := truncate(fmt.Sprintf("endpoint returned status %d: %s", resp.StatusCode, snapshot), maxErrorSnapshot)
	return resp.StatusCode, snapshot, fmt.Errorf("%s", msg)
}

// backoff 第 n 次失败后的固定退避：1s、4s、16s
func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := d.backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 4
	}
	return delay
}

// sleep 可被上层取消的等待，返回 false 表示等待被取消
func (d *Dispatcher) sleep(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
