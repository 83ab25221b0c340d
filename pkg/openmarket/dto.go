package openmarket

import (
	"time"

	"github.com/shopspring/decimal"

	"seller_ops_v1_202609/pkg/timewindow"
)

// 平台返回的时间串（无时区后缀，业务时区 KST）
const timestampLayout = "2006-01-02T15:04:05"

func parseKST(s string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, timewindow.KST)
}

// ==================== 订单（卖家自发货） ====================

// RawOrder 订单原始记录（ordersheets 接口）
type RawOrder struct {
	OrderID       int64  `json:"orderId"`
	ShipmentBoxID int64  `json:"shipmentBoxId"`
	Status        string `json:"status"`

	OrderedAt string `json:"orderedAt"`
	PaidAt    string `json:"paidAt"`

	Orderer  RawPerson   `json:"orderer"`
	Receiver RawReceiver `json:"receiver"`

	OrderItems []RawOrderItem `json:"orderItems"`
}

// OrderedTime 记录自身的权威下单时间
// 窗口过滤以它为准，不是请求参数的回显
func (o *RawOrder) OrderedTime() (time.Time, error) {
	return parseKST(o.OrderedAt)
}

// PaidTime 付款时间，可能为空串
func (o *RawOrder) PaidTime() (time.Time, bool) {
	if o.PaidAt == "" {
		return time.Time{}, false
	}
	t, err := parseKST(o.PaidAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RawPerson 下单人
type RawPerson struct {
	Name  string `json:"name"`
	Phone string `json:"safeNumber"`
}

// RawReceiver 收件人
type RawReceiver struct {
	Name     string `json:"name"`
	Phone    string `json:"safeNumber"`
	Addr1    string `json:"addr1"`
	Addr2    string `json:"addr2"`
	PostCode string `json:"postCode"`
}

// RawOrderItem 订单行原始记录
type RawOrderItem struct {
	VendorItemID          int64  `json:"vendorItemId"`
	SellerProductName     string `json:"sellerProductName"`
	SellerProductItemName string `json:"sellerProductItemName"`
	ShippingCount         int    `json:"shippingCount"`
	OrderPrice            int64  `json:"orderPrice"`
	SalesPrice            int64  `json:"salesPrice"`
	DiscountPrice         int64  `json:"discountPrice"`
	ExternalVendorSkuCode string `json:"externalVendorSkuCode"`
}

// OrdersPage 订单分页结果
type OrdersPage struct {
	Orders    []RawOrder
	NextToken string
}

// ==================== 仓配（火箭仓）出货 ====================

// RawRocketShipment 仓配出货箱原始记录
// 部分履约类型下 shipmentBoxId 与 orderId 同值（上游缺陷，照单保留）
type RawRocketShipment struct {
	ShipmentBoxID int64  `json:"shipmentBoxId"`
	OrderID       int64  `json:"orderId"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`

	OrdererName  string `json:"ordererName"`
	ReceiverName string `json:"receiverName"`

	Items []RawOrderItem `json:"items"`
}

// CreatedTime 记录创建时间（KST）
func (s *RawRocketShipment) CreatedTime() (time.Time, error) {
	return parseKST(s.CreatedAt)
}

// RocketPage 仓配出货分页结果
type RocketPage struct {
	Shipments []RawRocketShipment
	NextToken string
}

// ==================== 结算 ====================

// RawSettlement 结算原始记录（revenue-history 接口）
type RawSettlement struct {
	OrderID        int64  `json:"orderId"`
	VendorItemID   int64  `json:"vendorItemId"`
	SaleType       string `json:"saleType"` // SALE / REFUND
	SaleDate       string `json:"saleDate"` // yyyy-MM-dd
	SellerProductName string `json:"sellerProductName"`
	VendorItemName    string `json:"vendorItemName"`
	Quantity       int    `json:"quantity"`

	SettlementAmount decimal.Decimal `json:"settlementAmount"`
	ServiceFee       decimal.Decimal `json:"serviceFee"`
}

// SaleTime 销售确认日（KST 零点）
func (s *RawSettlement) SaleTime() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s.SaleDate, timewindow.KST)
}

// SettlementsPage 结算分页结果
type SettlementsPage struct {
	Settlements []RawSettlement
	NextToken   string
}
