package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ==================== 渠道常量 ====================

// Channel 订单来源渠道
// openmarket: 开放平台卖家自发货
// rocket:     开放平台仓配（火箭仓），以 shipment_box_id 为自然键
// storefront: 智能店铺平台
const (
	ChannelOpenMarket = "openmarket"
	ChannelRocket     = "rocket"
	ChannelStorefront = "storefront"
)

// ==================== 订单状态常量 ====================

// 开放平台订单状态（按平台原始词汇存储，不做翻译）
const (
	OrderStatusAccept        = "ACCEPT"         // 新订单（已付款待确认）
	OrderStatusInstruct      = "INSTRUCT"       // 备货指示
	OrderStatusDeparture     = "DEPARTURE"      // 已出库
	OrderStatusDelivering    = "DELIVERING"     // 配送中
	OrderStatusFinalDelivery = "FINAL_DELIVERY" // 配送完成
	OrderStatusNoneTracking  = "NONE_TRACKING"  // 无物流跟踪
)

// 智能店铺订单状态
const (
	StorefrontStatusPayed          = "PAYED"
	StorefrontStatusDelivering     = "DELIVERING"
	StorefrontStatusDelivered      = "DELIVERED"
	StorefrontStatusPurchaseDecide = "PURCHASE_DECIDED"
	StorefrontStatusCanceled       = "CANCELED"
)

// PriorityStatuses 同步优先级顺序
// 新订单状态优先：预算耗尽被截断时，优先保住新订单的采集
var PriorityStatuses = []string{
	OrderStatusAccept,
	OrderStatusInstruct,
	OrderStatusDeparture,
	OrderStatusDelivering,
	OrderStatusFinalDelivery,
}

// ==================== Order 订单主表 ====================

// Order 订单
// 同一自然键 (channel, marketplace_order_id, shipment_box_id) 至多一行，
// 由应用层 upsert 保证，同时加唯一索引兜底并发重复插入
type Order struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	AccountID int64  `gorm:"index;not null"`
	Channel   string `gorm:"size:32;not null;uniqueIndex:uk_orders_natural"`

	// 外部标识
	// rocket 渠道部分履约类型下 shipment_box_id 与 order_id 同值，
	// 是跨渠道错分的根因，见 SuspectMisrouted
	MarketplaceOrderID string `gorm:"size:64;not null;uniqueIndex:uk_orders_natural"`
	ShipmentBoxID      string `gorm:"size:64;uniqueIndex:uk_orders_natural"`

	// 状态（渠道各自的原始词汇）
	Status string `gorm:"size:32;index"`

	// 下单人 / 收件人
	OrdererName   string `gorm:"size:100"`
	OrdererPhone  string `gorm:"size:32"`
	ReceiverName  string `gorm:"size:100"`
	ReceiverPhone string `gorm:"size:32"`

	// 收货地址（PostgreSQL JSONB）
	ReceiverAddress datatypes.JSONMap `gorm:"type:jsonb"`

	// 时间
	OrderedAt *time.Time `gorm:"index"`
	PaidAt    *time.Time

	// 原始报文快照，重新抓取时整体覆盖
	RawData datatypes.JSON `gorm:"type:jsonb"`

	SyncedAt *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// NaturalKey 订单自然键
func (o *Order) NaturalKey() string {
	return o.Channel + ":" + o.MarketplaceOrderID + ":" + o.ShipmentBoxID
}

// SuspectMisrouted 判断是否疑似渠道错分
// 上游对部分履约类型会把 shipment_box_id 直接填成 order_id，
// 或在下单人名里带仓配标记。这里只检测、不纠正
func (o *Order) SuspectMisrouted() bool {
	if o.Channel == ChannelRocket {
		return false
	}
	if o.ShipmentBoxID != "" && o.ShipmentBoxID == o.MarketplaceOrderID {
		return true
	}
	return strings.Contains(o.OrdererName, "로켓")
}

// ==================== OrderItem 订单行 ====================

// OrderItem 订单行，归属且仅归属一个订单
// 订单行集合变化时整体删除重建，不做 diff
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	OrderID int64 `gorm:"index;not null"`

	// 外部商品标识
	ExternalOptionID string `gorm:"size:64;index"`
	ProductName      string `gorm:"size:500"`
	OptionName       string `gorm:"size:255"`
	ExternalSKU      string `gorm:"size:100"`

	// 数量与价格（韩元，整数）
	Quantity      int `gorm:"default:1"`
	UnitPrice     int64
	SalePrice     int64
	DiscountPrice int64

	// 解析结果：内部商品 ID，未匹配为 NULL
	ProductID *int64 `gorm:"index"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// TotalPrice 行总价
func (i *OrderItem) TotalPrice() int64 {
	return i.SalePrice * int64(i.Quantity)
}

// IsResolved 是否已解析到内部商品
func (i *OrderItem) IsResolved() bool {
	return i.ProductID != nil && *i.ProductID > 0
}
