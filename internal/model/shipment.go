package model

import (
	"time"
)

// ShipmentModel 运单
type ShipmentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SellerId    int64  `json:"seller_id" gorm:"index;not null"`
	CarrierId   int64  `json:"carrier_id" gorm:"index;not null"`
	OrderNumber string `json:"order_number" gorm:"uniqueIndex;not null"`
	Awb         string `json:"awb" gorm:"index"` // 承运商运单号
	Status      string `json:"status" gorm:"index;default:'created'"`
	PaymentMode string `json:"payment_mode" gorm:"default:'prepaid'"` // prepaid, cod

	// 发件人
	PickupName        string `json:"pickup_name"`
	PickupPhone       string `json:"pickup_phone"`
	PickupEmail       string `json:"pickup_email"`
	PickupAddress     string `json:"pickup_address"`
	PickupLandmark    string `json:"pickup_landmark"`
	PickupCity        string `json:"pickup_city"`
	PickupState       string `json:"pickup_state"`
	PickupPincode     string `json:"pickup_pincode"`
	PickupAddressType string `json:"pickup_address_type"` // home, office

	// 收件人
	ReceiverName        string `json:"receiver_name"`
	ReceiverPhone       string `json:"receiver_phone"`
	ReceiverEmail       string `json:"receiver_email"`
	ReceiverAddress     string `json:"receiver_address"`
	ReceiverLandmark    string `json:"receiver_landmark"`
	ReceiverCity        string `json:"receiver_city"`
	ReceiverState       string `json:"receiver_state"`
	ReceiverPincode     string `json:"receiver_pincode"`
	ReceiverAddressType string `json:"receiver_address_type"`

	// 费用，单位为最小货币单位（派士）
	FreightCharge int64 `json:"freight_charge" gorm:"default:0"`
	CodCharge     int64 `json:"cod_charge" gorm:"default:0"`
	TotalCharge   int64 `json:"total_charge" gorm:"default:0"`

	// 服务与路由
	ServiceType string `json:"service_type" gorm:"default:'surface'"` // surface, express
	RouteCode   string `json:"route_code"`

	// 结算
	Settled   bool       `json:"settled" gorm:"default:false"`
	SettledAt *time.Time `json:"settled_at"`

	DeliveredAt *time.Time `json:"delivered_at"`
}

// ShipmentStatus 运单状态
type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "created"    // 已创建
	ShipmentStatusPickedUp  ShipmentStatus = "picked_up"  // 已揽收
	ShipmentStatusInTransit ShipmentStatus = "in_transit" // 运输中
	ShipmentStatusDelivered ShipmentStatus = "delivered"  // 已签收
	ShipmentStatusRto       ShipmentStatus = "rto"        // 退回原址
	ShipmentStatusCancelled ShipmentStatus = "cancelled"  // 已取消
)

// TableName 自定义表名
func (ShipmentModel) TableName() string {
	return "shipment"
}

// ShipmentPackageModel 包裹明细
type ShipmentPackageModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ShipmentId    int64  `json:"shipment_id" gorm:"index;not null"`
	Description   string `json:"description"`
	Quantity      int    `json:"quantity" gorm:"default:1"`
	WeightGrams   int64  `json:"weight_grams" gorm:"not null"`
	LengthCm      int64  `json:"length_cm"`
	WidthCm       int64  `json:"width_cm"`
	HeightCm      int64  `json:"height_cm"`
	DeclaredValue int64  `json:"declared_value" gorm:"default:0"` // 申报价值
}

// TableName 自定义表名
func (ShipmentPackageModel) TableName() string {
	return "shipment_package"
}

// TrackingEventModel 轨迹事件
type TrackingEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ShipmentId int64     `json:"shipment_id" gorm:"index;not null"`
	Status     string    `json:"status" gorm:"not null"`
	Remark     string    `json:"remark"`
	Location   string    `json:"location"`
	OccurredAt time.Time `json:"occurred_at" gorm:"index;not null"`
}

// TableName 自定义表名
func (TrackingEventModel) TableName() string {
	return "tracking_event"
}
