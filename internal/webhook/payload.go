package webhook

import (
	"time"

	"github.com/blues/lms/internal/model"
)

// EventPayload 外发事件载荷
// 字段顺序与缺省值必须稳定，同一运单状态必须序列化出完全相同的字节，
// 否则签名无法复算
type EventPayload struct {
	ShipmentId  int64  `json:"shipment_id"`
	OrderNumber string `json:"order_number"`
	Awb         string `json:"awb"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`

	Sender   AddressBlock `json:"sender"`
	Receiver AddressBlock `json:"receiver"`

	Packages []PackageInfo `json:"packages"`
	Pricing  PricingInfo   `json:"pricing"`
	Service  ServiceInfo   `json:"service"`
	Tracking TrackingBlock `json:"tracking"`
}

// AddressBlock 规范化地址块
type AddressBlock struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Landmark    string `json:"landmark"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	AddressType string `json:"address_type"`
}

// PackageInfo 包裹明细
type PackageInfo struct {
	Description   string `json:"description"`
	Quantity      int    `json:"quantity"`
	WeightGrams   int64  `json:"weight_grams"`
	LengthCm      int64  `json:"length_cm"`
	WidthCm       int64  `json:"width_cm"`
	HeightCm      int64  `json:"height_cm"`
	DeclaredValue int64  `json:"declared_value"`
}

// PricingInfo 费用摘要
type PricingInfo struct {
	FreightCharge int64  `json:"freight_charge"`
	CodCharge     int64  `json:"cod_charge"`
	TotalCharge   int64  `json:"total_charge"`
	PaymentMode   string `json:"payment_mode"`
}

// ServiceInfo 服务与路由信息
type ServiceInfo struct {
	ServiceType string `json:"service_type"`
	RouteCode   string `json:"route_code"`
	CarrierCode string `json:"carrier_code"`
}

// TrackingBlock 轨迹块，携带历史轨迹
type TrackingBlock struct {
	CurrentStatus string          `json:"current_status"`
	History       []TrackingEvent `json:"history"`
}

// TrackingEvent 单条轨迹
type TrackingEvent struct {
	Status    string `json:"status"`
	Remark    string `json:"remark"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
}

const defaultAddressType = "home"

// BuildPayload 构造规范化事件载荷
// 可选字段显式给默认值，时间统一为 UTC RFC3339
func BuildPayload(
	shipment *model.ShipmentModel,
	packages []model.ShipmentPackageModel,
	events []model.TrackingEventModel,
	carrier *model.CarrierModel,
) EventPayload {
	payload := EventPayload{
		ShipmentId:  shipment.Id,
		OrderNumber: shipment.OrderNumber,
		Awb:         shipment.Awb,
		Status:      shipment.Status,
		CreatedAt:   formatTime(shipment.CreatedAt),
		UpdatedAt:   formatTime(shipment.UpdatedAt),
		Sender: AddressBlock{
			Name:        shipment.PickupName,
			Phone:       shipment.PickupPhone,
			Email:       shipment.PickupEmail,
			Address:     shipment.PickupAddress,
			Landmark:    shipment.PickupLandmark,
			City:        shipment.PickupCity,
			State:       shipment.PickupState,
			Pincode:     shipment.PickupPincode,
			AddressType: defaultString(shipment.PickupAddressType, defaultAddressType),
		},
		Receiver: AddressBlock{
			Name:        shipment.ReceiverName,
			Phone:       shipment.ReceiverPhone,
			Email:       shipment.ReceiverEmail,
			Address:     shipment.ReceiverAddress,
			Landmark:    shipment.ReceiverLandmark,
			City:        shipment.ReceiverCity,
			State:       shipment.ReceiverState,
			Pincode:     shipment.ReceiverPincode,
			AddressType: defaultString(shipment.ReceiverAddressType, defaultAddressType),
		},
		Packages: make([]PackageInfo, 0, len(packages)),
		Pricing: PricingInfo{
			FreightCharge: shipment.FreightCharge,
			CodCharge:     shipment.CodCharge,
			TotalCharge:   shipment.TotalCharge,
			PaymentMode:   shipment.PaymentMode,
		},
		Service: ServiceInfo{
			ServiceType: shipment.ServiceType,
			RouteCode:   shipment.RouteCode,
			CarrierCode: carrier.Code,
		},
		Tracking: TrackingBlock{
			CurrentStatus: shipment.Status,
			History:       make([]TrackingEvent, 0, len(events)),
		},
	}

	for _, p := range packages {
		quantity := p.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		payload.Packages = append(payload.Packages, PackageInfo{
			Description:   p.Description,
			Quantity:      quantity,
			WeightGrams:   p.WeightGrams,
			LengthCm:      p.LengthCm,
			WidthCm:       p.WidthCm,
			HeightCm:      p.HeightCm,
			DeclaredValue: p.DeclaredValue,
		})
	}

	for _, e := range events {
		payload.Tracking.History = append(payload.Tracking.History, TrackingEvent{
			Status:    e.Status,
			Remark:    e.Remark,
			Location:  e.Location,
			Timestamp: formatTime(e.OccurredAt),
		})
	}

	return payload
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
