package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== Factory 工厂 ====================

// Factory 供货工厂
type Factory struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"size:100;not null"`
	Contact string `gorm:"size:100"`
	Phone   string `gorm:"size:32"`
	Address string `gorm:"size:255"`
	Note    string `gorm:"size:500"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Factory) TableName() string {
	return "factories"
}

// ==================== PurchaseOrder 采购单 ====================

// 采购单状态
const (
	PurchaseStatusOrdered   = "ordered"   // 已下单
	PurchaseStatusInTransit = "in_transit" // 在途
	PurchaseStatusReceived  = "received"  // 已入库
	PurchaseStatusCanceled  = "canceled"  // 已取消
)

// PurchaseOrder 向工厂下的采购单
type PurchaseOrder struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	FactoryID int64 `gorm:"index;not null"`
	ProductID int64 `gorm:"index;not null"`

	Quantity  int
	UnitCost  int64
	Status    string `gorm:"size:32;index;default:ordered"`
	OrderedAt *time.Time
	ETA       *time.Time

	Note string `gorm:"size:500"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Factory *Factory `gorm:"foreignKey:FactoryID"`
	Product *Product `gorm:"foreignKey:ProductID"`
}

func (*PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// CanReceive 是否可收货入库
func (p *PurchaseOrder) CanReceive() bool {
	return p.Status == PurchaseStatusOrdered || p.Status == PurchaseStatusInTransit
}

// ==================== InboundShipment 入库单 ====================

// InboundShipment 采购单的入库收货记录
// 收货时经 InventoryLog 增加仓库库存
type InboundShipment struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	PurchaseOrderID int64 `gorm:"index;not null"`

	ReceivedQty int
	ReceivedAt  *time.Time
	Receiver    string `gorm:"size:64"`
	Note        string `gorm:"size:500"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*InboundShipment) TableName() string {
	return "inbound_shipments"
}
