package model

import "time"

// ==================== 库存位置 ====================

const (
	InventoryLocationWarehouse   = "warehouse"   // 自营仓
	InventoryLocationMarketplace = "marketplace" // 平台仓（仓配在库）
)

// 库存变动原因
const (
	InventoryReasonManual    = "manual"     // 手工修改
	InventoryReasonImport    = "import"     // 批量导入
	InventoryReasonSync      = "sync"       // 平台库存同步
	InventoryReasonInbound   = "inbound"    // 入库收货
	InventoryReasonAdjust    = "adjust"     // 盘点调整
)

// ==================== Inventory 库存快照 ====================

// Inventory 按商品 × 位置的库存快照
// 可选按「托盘数 × 每托数量 + 散箱」分解，TotalQty 为派生合计
type Inventory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ProductID int64  `gorm:"not null;uniqueIndex:uk_inventory_product_location"`
	Location  string `gorm:"size:32;not null;uniqueIndex:uk_inventory_product_location"`

	PalletCount  int
	PerPalletQty int
	LooseQty     int

	TotalQty int `gorm:"index"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Inventory) TableName() string {
	return "inventory"
}

// ComputeTotal 重算派生合计
func (v *Inventory) ComputeTotal() int {
	v.TotalQty = v.PalletCount*v.PerPalletQty + v.LooseQty
	return v.TotalQty
}

// ==================== InventoryLog 库存流水 ====================

// InventoryLog 追加式流水，记录每次库存变动及类型化原因
type InventoryLog struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ProductID int64  `gorm:"index;not null"`
	Location  string `gorm:"size:32"`

	Reason string `gorm:"size:32;not null;index"`
	Note   string `gorm:"size:500"`

	QtyBefore int
	QtyAfter  int
	QtyDelta  int

	Operator string `gorm:"size:64"`

	// 审计
	CreatedAt time.Time
}

func (*InventoryLog) TableName() string {
	return "inventory_logs"
}
