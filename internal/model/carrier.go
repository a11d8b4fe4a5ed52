package model

import (
	"time"
)

// CarrierModel 承运商合作伙伴
type CarrierModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name          string `json:"name" gorm:"not null"`
	Code          string `json:"code" gorm:"uniqueIndex;not null"` // 承运商编码
	WebhookUrl    string `json:"webhook_url"`                      // 事件回调地址，为空表示未订阅
	WebhookSecret string `json:"-"`                                // 签名密钥
	ApiKey        string `json:"-"`                                // 可选的接口密钥
	CallbackUrl   string `json:"callback_url"`                     // 轨迹回传地址
	Active        bool   `json:"active" gorm:"default:true"`
}

// TableName 自定义表名
func (CarrierModel) TableName() string {
	return "carrier"
}
