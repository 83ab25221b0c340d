package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== Product 商品主数据 ====================

// Product 内部商品
// SKU 复用开放平台主 option id，历史遗留，映射表存在的原因之一
type Product struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	SKU  string `gorm:"size:64;uniqueIndex;not null"`
	Name string `gorm:"size:255;not null"`

	Category string `gorm:"size:100;index"`
	Barcode  string `gorm:"size:64"`

	// 装箱物理参数
	CBM           float64
	UnitsPerPallet int `gorm:"default:0"`

	// 不设列默认值：gorm 对带 default 的零值字段在 Create 时跳过写入，
	// false 会被悄悄写成 true
	IsActive bool `gorm:"index"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Product) TableName() string {
	return "products"
}

// ==================== ProductMapping 商品映射 ====================

// ProductMapping 外部商品 → 内部商品的解析规则，按 marketplace 区分
// 多条映射可指向同一商品（一品多外部变体/多写法）
// 约定：同一 marketplace 下 external_option_id 只应指向一个商品，
// 违反会导致匹配数量来回摆动
type ProductMapping struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Marketplace string `gorm:"size:32;not null;index:idx_mapping_option;index:idx_mapping_name"`

	ExternalProductID   string `gorm:"size:64"`
	ExternalProductName string `gorm:"size:500;index:idx_mapping_name"`
	ExternalOptionID    string `gorm:"size:64;index:idx_mapping_option"`
	ExternalOptionName  string `gorm:"size:255"`

	ProductID int64 `gorm:"index;not null"`

	// 同 Product.IsActive：不设列默认值，停用规则必须能以 false 落库
	IsActive bool `gorm:"index"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (*ProductMapping) TableName() string {
	return "product_mappings"
}
