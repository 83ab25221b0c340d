// Package openmarket 开放平台 API 客户端
//
// 职责只到「拿到原始分页记录」为止：签名、限流退避、翻页续传。
// 不做任何持久化，窗口边界过滤留给调用方（见 pkg/timewindow）
package openmarket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"seller_ops_v1_202609/pkg/timewindow"
)

const defaultBaseURL = "https://api-gateway.openmarket.example"

// 单页上限，平台侧硬性限制
const maxPerPage = 50

// API 路径
const (
	pathOrderSheets = "/v2/providers/openapi/apis/api/v4/vendors/%s/ordersheets"
	pathRocketBoxes = "/v2/providers/openapi/apis/api/v1/vendors/%s/rocket/shipment-boxes"
	pathRevenue     = "/v2/providers/openapi/apis/api/v1/vendors/%s/revenue-history"
)

// ==================== 错误 ====================

// FetchError 非 2xx / 非 429 的抓取失败
// 429 在客户端内部有限重试，重试耗尽后也以 FetchError 浮出
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("openmarket API 错误 [%d]: %s", e.StatusCode, e.Body)
}

// ==================== 配置与客户端 ====================

// Config 按账号一份
type Config struct {
	BaseURL   string
	VendorID  string
	AccessKey string
	SecretKey string

	// 可选出口代理（平台 IP 白名单时使用）
	ProxyURL string

	Timeout    time.Duration
	MaxRetries int
}

// Client 开放平台客户端，按账号持有，初始化一次后复用
type Client struct {
	cfg  Config
	http *resty.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// 只对限流重试，网络错误与其他状态码直接浮出
			return err == nil && resp.StatusCode() == http.StatusTooManyRequests
		})

	if cfg.ProxyURL != "" {
		r.SetProxy(cfg.ProxyURL)
	}

	return &Client{cfg: cfg, http: r}
}

// getJSON 签名并发送 GET，解码 JSON 到 out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	rawQuery := query.Encode()
	auth := Sign(http.MethodGet, path, rawQuery, c.cfg.AccessKey, c.cfg.SecretKey, time.Now())

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth).
		SetHeader("Content-Type", "application/json;charset=UTF-8").
		SetQueryParamsFromValues(query).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("openmarket 请求失败: %w", err)
	}

	if resp.IsError() {
		return &FetchError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// ==================== 分页抓取 ====================

// OrdersPage 抓取一页卖家自发货订单
// 调用方回喂 nextToken 驱动翻页，token 为空串表示翻完
func (c *Client) OrdersPage(ctx context.Context, w timewindow.Window, status, nextToken string) (*OrdersPage, error) {
	from, to := w.DateParams()

	query := url.Values{}
	query.Set("createdAtFrom", from)
	query.Set("createdAtTo", to)
	query.Set("status", status)
	query.Set("maxPerPage", strconv.Itoa(maxPerPage))
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}

	var envelope struct {
		Code      int        `json:"code"`
		Message   string     `json:"message"`
		Data      []RawOrder `json:"data"`
		NextToken string     `json:"nextToken"`
	}
	path := fmt.Sprintf(pathOrderSheets, c.cfg.VendorID)
	if err := c.getJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	return &OrdersPage{Orders: envelope.Data, NextToken: envelope.NextToken}, nil
}

// RocketPage 抓取一页仓配出货箱
// 该端点 from==to 返回空，调用方需先 Widen 再按 CreatedTime 过滤
func (c *Client) RocketPage(ctx context.Context, w timewindow.Window, nextToken string) (*RocketPage, error) {
	from, to := w.DateParams()

	query := url.Values{}
	query.Set("createdAtFrom", from)
	query.Set("createdAtTo", to)
	query.Set("maxPerPage", strconv.Itoa(maxPerPage))
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}

	var envelope struct {
		Code      int                 `json:"code"`
		Message   string              `json:"message"`
		Data      []RawRocketShipment `json:"data"`
		NextToken string              `json:"nextToken"`
	}
	path := fmt.Sprintf(pathRocketBoxes, c.cfg.VendorID)
	if err := c.getJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	return &RocketPage{Shipments: envelope.Data, NextToken: envelope.NextToken}, nil
}

// SettlementsPage 抓取一页结算记录
// 同样是 from==to 返回空的端点
func (c *Client) SettlementsPage(ctx context.Context, w timewindow.Window, nextToken string) (*SettlementsPage, error) {
	from, to := w.DateParams()

	query := url.Values{}
	query.Set("recognitionDateFrom", from)
	query.Set("recognitionDateTo", to)
	query.Set("maxPerPage", strconv.Itoa(maxPerPage))
	if nextToken != "" {
		query.Set("token", nextToken)
	}

	var envelope struct {
		Code      int             `json:"code"`
		Message   string          `json:"message"`
		Data      []RawSettlement `json:"data"`
		NextToken string          `json:"nextToken"`
	}
	path := fmt.Sprintf(pathRevenue, c.cfg.VendorID)
	if err := c.getJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	return &SettlementsPage{Settlements: envelope.Data, NextToken: envelope.NextToken}, nil
}
