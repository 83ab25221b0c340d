package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== Marketplace 常量 ====================

const (
	MarketplaceOpenMarket = "openmarket" // 开放平台（HMAC 签名 API）
	MarketplaceStorefront = "storefront" // 智能店铺平台
)

// 账号状态
const (
	AccountStatusActive   = 1
	AccountStatusDisabled = 0
)

// ==================== MarketAccount 平台账号 ====================

// MarketAccount 各平台的卖家账号（密钥对 + 可选出口代理）
// 平台可能做 IP 白名单，代理用于固定出口 IP
type MarketAccount struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Marketplace string `gorm:"size:32;not null;index"`
	Name        string `gorm:"size:100;not null"`

	VendorID  string `gorm:"size:64"`
	AccessKey string `gorm:"size:128;not null"`
	SecretKey string `gorm:"size:128;not null"`

	ProxyURL string `gorm:"size:255"`

	// 不设列默认值：带 default 的零值字段 Create 时会被跳过，
	// 停用账号（Status=0）会被悄悄写成启用
	Status int `gorm:"index"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*MarketAccount) TableName() string {
	return "market_accounts"
}

// IsActive 账号是否可用
func (a *MarketAccount) IsActive() bool {
	return a.Status == AccountStatusActive
}
