package service

import (
	"sync"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/pkg/openmarket"
	"seller_ops_v1_202609/pkg/storefront"
)

// ==================== 默认客户端工厂 ====================

// restyClientProvider 按账号缓存 HTTP 客户端
// storefront 客户端缓存尤其重要：token 缓存在客户端实例里，
// 每次新建会导致每页都去换 token
type restyClientProvider struct {
	mu         sync.Mutex
	openMarket map[int64]*openmarket.Client
	storefront map[int64]*storefront.Client
}

// NewClientProvider 创建默认客户端工厂
func NewClientProvider() ClientProvider {
	return &restyClientProvider{
		openMarket: make(map[int64]*openmarket.Client),
		storefront: make(map[int64]*storefront.Client),
	}
}

func (p *restyClientProvider) OpenMarket(account *model.MarketAccount) OpenMarketAPI {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.openMarket[account.ID]; ok {
		return c
	}
	c := openmarket.NewClient(openmarket.Config{
		VendorID:  account.VendorID,
		AccessKey: account.AccessKey,
		SecretKey: account.SecretKey,
		ProxyURL:  account.ProxyURL,
	})
	p.openMarket[account.ID] = c
	return c
}

func (p *restyClientProvider) Storefront(account *model.MarketAccount) StorefrontAPI {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.storefront[account.ID]; ok {
		return c
	}
	c := storefront.NewClient(storefront.Config{
		ClientID:     account.AccessKey,
		ClientSecret: account.SecretKey,
		ProxyURL:     account.ProxyURL,
	})
	p.storefront[account.ID] = c
	return c
}
