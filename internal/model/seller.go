package model

import (
	"time"
)

// SellerModel 卖家
type SellerModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name   string `json:"name" gorm:"not null"`
	Email  string `json:"email" gorm:"uniqueIndex"`
	Role   string `json:"role" gorm:"default:'seller'"`  // seller, admin
	Tier   string `json:"tier" gorm:"default:'bronze'"`  // bronze, silver, gold
	Active bool   `json:"active" gorm:"default:true"`
}

// SellerRole 卖家角色
type SellerRole string

const (
	SellerRoleSeller SellerRole = "seller" // 参与结算与分级的角色
	SellerRoleAdmin  SellerRole = "admin"
)

// SellerTier 卖家服务等级
type SellerTier string

const (
	SellerTierBronze SellerTier = "bronze" // 青铜
	SellerTierSilver SellerTier = "silver" // 白银
	SellerTierGold   SellerTier = "gold"   // 黄金
)

// TableName 自定义表名
func (SellerModel) TableName() string {
	return "seller"
}
