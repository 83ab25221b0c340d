package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seller_ops_v1_202609/pkg/timewindow"
)

func newStubServer(t *testing.T, tokenCalls *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/external/v1/oauth2/token":
			*tokenCalls++
			if r.FormValue("client_secret_sign") == "" {
				t.Error("token 请求缺少凭证签名")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok-1", "expires_in": 10800,
			})
		case "/external/v1/pay-order/seller/product-orders":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("缺少 Bearer token: %s", r.Header.Get("Authorization"))
			}
			page := r.URL.Query().Get("page")
			if page == "1" || page == "" {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"data": map[string]interface{}{
						"contents": []map[string]interface{}{
							{"productOrderId": "P1", "orderId": "O1", "productOrderStatus": "PAYED",
								"paymentDate": "2026-01-30T10:00:00+09:00", "quantity": 1},
						},
						"page": 1, "totalPages": 2,
					},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"contents": []map[string]interface{}{
						{"productOrderId": "P2", "orderId": "O2", "productOrderStatus": "PAYED",
							"paymentDate": "2026-01-30T11:00:00+09:00", "quantity": 2},
					},
					"page": 2, "totalPages": 2,
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestProductOrdersPage_PaginationAndTokenReuse(t *testing.T) {
	var tokenCalls int
	srv := newStubServer(t, &tokenCalls)
	defer srv.Close()

	c := NewClient(Config{
		BaseURL: srv.URL, ClientID: "cid", ClientSecret: "csecret",
		Timeout: 5 * time.Second,
	})
	ctx := context.Background()
	w := timewindow.Day(time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST))

	var all []RawProductOrder
	for page := 1; ; page++ {
		resp, err := c.ProductOrdersPage(ctx, w, page)
		if err != nil {
			t.Fatalf("ProductOrdersPage() error = %v", err)
		}
		all = append(all, resp.Orders...)
		if !resp.More {
			break
		}
	}

	if len(all) != 2 {
		t.Fatalf("订单数 = %d, want 2", len(all))
	}
	if all[0].ProductOrderID != "P1" || all[1].ProductOrderID != "P2" {
		t.Errorf("翻页结果错误: %+v", all)
	}
	if tokenCalls != 1 {
		t.Errorf("token 应缓存复用, 请求了 %d 次", tokenCalls)
	}

	ts, err := all[0].PaymentTime()
	if err != nil {
		t.Fatalf("PaymentTime() error = %v", err)
	}
	if ts.Hour() != 10 {
		t.Errorf("KST 付款时间 = %v", ts)
	}
}
