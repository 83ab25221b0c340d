// Package storefront 智能店铺平台 API 客户端
//
// 鉴权：client 凭证换短期 token，token 过期前复用。
// 商品订单接口按变更时间范围查询、页码翻页，单页 300 条封顶
package storefront

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"seller_ops_v1_202609/pkg/timewindow"
)

const defaultBaseURL = "https://api.storefront.example"

const pageSize = 300

// ==================== 错误 ====================

// FetchError 非 2xx / 非 429 的抓取失败
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("storefront API 错误 [%d]: %s", e.StatusCode, e.Body)
}

// ==================== 配置与客户端 ====================

// Config 按账号一份
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	ProxyURL     string

	Timeout    time.Duration
	MaxRetries int
}

// Client 智能店铺客户端
type Client struct {
	cfg  Config
	http *resty.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
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
			return err == nil && resp.StatusCode() == http.StatusTooManyRequests
		})

	if cfg.ProxyURL != "" {
		r.SetProxy(cfg.ProxyURL)
	}

	return &Client{cfg: cfg, http: r}
}

// clientSignature 凭证签名：HMAC-SHA256(client_id + "_" + 毫秒时间戳)，base64
func clientSignature(clientID, clientSecret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	fmt.Fprintf(mac, "%s_%d", clientID, ts)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ensureToken 获取或复用访问 token
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	ts := time.Now().UnixMilli()
	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":         c.cfg.ClientID,
			"timestamp":         strconv.FormatInt(ts, 10),
			"client_secret_sign": clientSignature(c.cfg.ClientID, c.cfg.ClientSecret, ts),
			"grant_type":        "client_credentials",
			"type":              "SELF",
		}).
		SetResult(&result).
		Post("/external/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("storefront token 请求失败: %w", err)
	}
	if resp.IsError() {
		return "", &FetchError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	c.token = result.AccessToken
	// 提前一分钟过期，避免边界上用到失效 token
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// ==================== 分页抓取 ====================

// ProductOrdersPage 翻页结果，More 为真时用 page+1 继续
type ProductOrdersPage struct {
	Orders []RawProductOrder
	Page   int
	More   bool
}

// ProductOrdersPage 抓取一页商品订单（按下单时间范围）
func (c *Client) ProductOrdersPage(ctx context.Context, w timewindow.Window, page int) (*ProductOrdersPage, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}

	var envelope struct {
		Data struct {
			Contents   []RawProductOrder `json:"contents"`
			Page       int               `json:"page"`
			TotalPages int               `json:"totalPages"`
		} `json:"data"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"from":     w.From.Format(time.RFC3339),
			"to":       w.To.Format(time.RFC3339),
			"rangeType": "PAYED_DATETIME",
			"pageSize": strconv.Itoa(pageSize),
			"page":     strconv.Itoa(page),
		}).
		SetResult(&envelope).
		Get("/external/v1/pay-order/seller/product-orders")
	if err != nil {
		return nil, fmt.Errorf("storefront 请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, &FetchError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &ProductOrdersPage{
		Orders: envelope.Data.Contents,
		Page:   envelope.Data.Page,
		More:   envelope.Data.Page < envelope.Data.TotalPages,
	}, nil
}
