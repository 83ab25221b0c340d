package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ==================== Settlement 销售结算 ====================

// 结算类型
const (
	SettlementTypeSale   = "SALE"
	SettlementTypeRefund = "REFUND"
)

// Settlement 结算/营收记录（开放平台 revenue history）
// 自然键 (marketplace_order_id, external_option_id, sale_type, sale_date)
type Settlement struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	AccountID int64 `gorm:"index;not null"`

	MarketplaceOrderID string    `gorm:"size:64;not null;uniqueIndex:uk_settlements_natural"`
	ExternalOptionID   string    `gorm:"size:64;uniqueIndex:uk_settlements_natural"`
	SaleType           string    `gorm:"size:16;uniqueIndex:uk_settlements_natural"`
	SaleDate           time.Time `gorm:"index;uniqueIndex:uk_settlements_natural"`

	ProductName string `gorm:"size:500"`
	OptionName  string `gorm:"size:255"`
	Quantity    int

	// 金额（韩元，平台侧带手续费拆分，用 decimal 保留精度）
	SettlementAmount decimal.Decimal `gorm:"type:decimal(14,2)"`
	ServiceFee       decimal.Decimal `gorm:"type:decimal(14,2)"`

	// 解析结果
	ProductID *int64 `gorm:"index"`

	// 原始报文
	RawData datatypes.JSON `gorm:"type:jsonb"`

	SyncedAt *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Settlement) TableName() string {
	return "settlements"
}

// NetAmount 扣除手续费后的净额
func (s *Settlement) NetAmount() decimal.Decimal {
	return s.SettlementAmount.Sub(s.ServiceFee)
}

// IsRefund 是否退款记录
func (s *Settlement) IsRefund() bool {
	return s.SaleType == SettlementTypeRefund
}
