package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/lms/internal/model"
	"github.com/blues/lms/internal/notify"
	"github.com/blues/lms/internal/webhook"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WebhookHandler 外发通知处理器
type WebhookHandler struct {
	db         *gorm.DB
	dispatcher *webhook.Dispatcher
	notifier   *notify.Notifier
}

// NewWebhookHandler 创建外发通知处理器
func NewWebhookHandler(db *gorm.DB, dispatcher *webhook.Dispatcher, notifier *notify.Notifier) *WebhookHandler {
	return &WebhookHandler{
		db:         db,
		dispatcher: dispatcher,
		notifier:   notifier,
	}
}

// DispatchRequest 事件投递请求
type DispatchRequest struct {
	ShipmentId int64  `json:"shipment_id" binding:"required"`
	Event      string `json:"event" binding:"required"`
	CarrierId  int64  `json:"carrier_id"` // 省略时广播给所有订阅方
}

// DispatchEvent 投递一条运单事件
func (h *WebhookHandler) DispatchEvent(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var shipment model.ShipmentModel
	if err := h.db.First(&shipment, req.ShipmentId).Error; err != nil {
		ErrorResponse(c, http.StatusNotFound, "shipment not found")
		return
	}

	if req.CarrierId > 0 {
		record, err := h.dispatcher.Dispatch(c.Request.Context(), req.CarrierId, req.Event, &shipment)
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
			return
		}
		if record == nil {
			SuccessResponse(c, http.StatusOK, "carrier has no webhook endpoint configured", nil)
			return
		}
		SuccessResponse(c, http.StatusOK, "event dispatched", record)
		return
	}

	records, err := h.notifier.Broadcast(c.Request.Context(), req.Event, &shipment)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "event broadcast", records)
}

// ListDeliveries 分页查询投递记录
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	query := h.db.Model(&model.WebhookDeliveryModel{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if shipmentId := c.Query("shipment_id"); shipmentId != "" {
		query = query.Where("shipment_id = ?", shipmentId)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	var deliveries []model.WebhookDeliveryModel
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&deliveries).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": deliveries,
		"pagination": gin.H{
			"page":       page,
			"page_size":  pageSize,
			"total":      total,
			"total_page": (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}
