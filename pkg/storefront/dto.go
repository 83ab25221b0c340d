package storefront

import (
	"time"

	"seller_ops_v1_202609/pkg/timewindow"
)

// RawProductOrder 商品订单原始记录
// productOrderId 是行级标识（一单多品时一单对应多条），orderId 是母单号
type RawProductOrder struct {
	ProductOrderID string `json:"productOrderId"`
	OrderID        string `json:"orderId"`
	Status         string `json:"productOrderStatus"`

	PaymentDate string `json:"paymentDate"` // RFC3339，带 +09:00 偏移

	ProductName      string `json:"productName"`
	ProductOption    string `json:"productOption"`
	OptionManageCode string `json:"optionManageCode"` // 卖家自管选项码，解析用主键
	SellerCustomCode string `json:"sellerCustomCode"`

	Quantity           int   `json:"quantity"`
	UnitPrice          int64 `json:"unitPrice"`
	TotalPaymentAmount int64 `json:"totalPaymentAmount"`
	ProductDiscount    int64 `json:"productDiscountAmount"`

	OrdererName   string `json:"ordererName"`
	OrdererTel    string `json:"ordererTel"`
	ReceiverName  string `json:"receiverName"`
	ReceiverTel   string `json:"receiverTel"`
	BaseAddress   string `json:"baseAddress"`
	DetailAddress string `json:"detailedAddress"`
	ZipCode       string `json:"zipCode"`
}

// PaymentTime 记录自身的权威付款时间
func (o *RawProductOrder) PaymentTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, o.PaymentDate)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(timewindow.KST), nil
}
