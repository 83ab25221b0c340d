package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	applog "seller_ops_v1_202609/pkg/logger"
	"seller_ops_v1_202609/pkg/openmarket"
	"seller_ops_v1_202609/pkg/storefront"
	"seller_ops_v1_202609/pkg/timewindow"
)

// ==================== 桩客户端 ====================

type stubOpenMarketAPI struct {
	orders      []openmarket.RawOrder
	shipments   []openmarket.RawRocketShipment
	settlements []openmarket.RawSettlement
}

func (s *stubOpenMarketAPI) OrdersPage(ctx context.Context, w timewindow.Window, status, token string) (*openmarket.OrdersPage, error) {
	return &openmarket.OrdersPage{Orders: s.orders}, nil
}

func (s *stubOpenMarketAPI) RocketPage(ctx context.Context, w timewindow.Window, token string) (*openmarket.RocketPage, error) {
	return &openmarket.RocketPage{Shipments: s.shipments}, nil
}

func (s *stubOpenMarketAPI) SettlementsPage(ctx context.Context, w timewindow.Window, token string) (*openmarket.SettlementsPage, error) {
	return &openmarket.SettlementsPage{Settlements: s.settlements}, nil
}

type stubStorefrontAPI struct {
	orders []storefront.RawProductOrder
}

func (s *stubStorefrontAPI) ProductOrdersPage(ctx context.Context, w timewindow.Window, page int) (*storefront.ProductOrdersPage, error) {
	return &storefront.ProductOrdersPage{Orders: s.orders, More: false}, nil
}

type stubProvider struct {
	om *stubOpenMarketAPI
	sf *stubStorefrontAPI
}

func (p *stubProvider) OpenMarket(account *model.MarketAccount) OpenMarketAPI { return p.om }
func (p *stubProvider) Storefront(account *model.MarketAccount) StorefrontAPI { return p.sf }

// ==================== 测试辅助 ====================

func setupSyncTest(t *testing.T, provider ClientProvider) (*gorm.DB, *OrderSyncService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.MarketAccount{}, &model.Order{}, &model.OrderItem{},
		&model.Settlement{}, &model.Product{}, &model.ProductMapping{},
		&model.ApiSyncLog{},
	)
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewOrderItemRepository(db)
	log := applog.NewNop()

	resolver := NewResolverService(
		repository.NewProductMappingRepository(db),
		repository.NewProductRepository(db),
		log,
	)
	svc := NewOrderSyncService(
		repository.NewMarketAccountRepository(db),
		repository.NewSettlementRepository(db),
		orderRepo,
		repository.NewApiSyncLogRepository(db),
		resolver,
		NewOrderReconciler(orderRepo, itemRepo, log),
		provider,
		log,
	)
	return db, svc
}

func seedAccount(db *gorm.DB, marketplace string) {
	db.Create(&model.MarketAccount{
		ID: 1, Marketplace: marketplace, Name: "主账号",
		AccessKey: "ak", SecretKey: "sk", Status: model.AccountStatusActive,
	})
}

// ==================== 单元测试 ====================

func TestSyncRocketRange_WidenThenFilter(t *testing.T) {
	day := time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST)

	// 放宽窗口会带回当日 23:50 和次日 00:05 两条，后者必须被过滤
	om := &stubOpenMarketAPI{shipments: []openmarket.RawRocketShipment{
		{ShipmentBoxID: 101, OrderID: 9001, Status: "IN_TRANSIT", CreatedAt: "2026-01-30T23:50:00"},
		{ShipmentBoxID: 102, OrderID: 9002, Status: "IN_TRANSIT", CreatedAt: "2026-01-31T00:05:00"},
	}}
	db, svc := setupSyncTest(t, &stubProvider{om: om})
	seedAccount(db, model.MarketplaceOpenMarket)

	res, err := svc.SyncRocketRange(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1（次日记录应被窗口过滤）", res.Inserted)
	}

	var orders []model.Order
	db.Where("channel = ?", model.ChannelRocket).Find(&orders)
	if len(orders) != 1 || orders[0].ShipmentBoxID != "101" {
		t.Errorf("应只落当日箱 101, got %+v", orders)
	}
}

func TestSyncOrderCell_ResolvesItemsInline(t *testing.T) {
	om := &stubOpenMarketAPI{orders: []openmarket.RawOrder{{
		OrderID: 9001, ShipmentBoxID: 501, Status: "ACCEPT",
		OrderedAt: "2026-01-30T10:00:00",
		Orderer:   openmarket.RawPerson{Name: "김철수"},
		OrderItems: []openmarket.RawOrderItem{
			{VendorItemID: 87654321, SellerProductName: "진공쌀통", ShippingCount: 2},
		},
	}}}
	db, svc := setupSyncTest(t, &stubProvider{om: om})
	seedAccount(db, model.MarketplaceOpenMarket)

	// 映射指向商品 7，同步后订单行应已解析
	db.Create(&model.Product{ID: 7, SKU: "P-7", Name: "真空米桶", IsActive: true})
	db.Create(&model.ProductMapping{
		Marketplace: model.MarketplaceOpenMarket, ExternalOptionID: "87654321",
		ProductID: 7, IsActive: true,
	})

	account := &model.MarketAccount{ID: 1, Name: "主账号"}
	day := timewindow.Day(time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST))
	res, err := svc.SyncOrderCell(context.Background(), account, day, "ACCEPT")
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	if res.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", res.Inserted)
	}

	var item model.OrderItem
	db.First(&item)
	if item.ProductID == nil || *item.ProductID != 7 {
		t.Errorf("订单行应在同步时解析为商品 7, got %v", item.ProductID)
	}
}

func TestSyncOrderCell_UnmatchedItemStaysNull(t *testing.T) {
	om := &stubOpenMarketAPI{orders: []openmarket.RawOrder{{
		OrderID: 9001, ShipmentBoxID: 501, Status: "ACCEPT",
		OrderedAt: "2026-01-30T10:00:00",
		OrderItems: []openmarket.RawOrderItem{
			{VendorItemID: 12345678, SellerProductName: "미등록 상품", ShippingCount: 1},
		},
	}}}
	db, svc := setupSyncTest(t, &stubProvider{om: om})
	seedAccount(db, model.MarketplaceOpenMarket)

	account := &model.MarketAccount{ID: 1, Name: "主账号"}
	day := timewindow.Day(time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST))
	if _, err := svc.SyncOrderCell(context.Background(), account, day, "ACCEPT"); err != nil {
		t.Fatalf("同步失败: %v", err)
	}

	// 未命中落 NULL，订单本身照常入库
	var item model.OrderItem
	db.First(&item)
	if item.ProductID != nil {
		t.Errorf("未命中订单行 product_id 应为 NULL, got %v", *item.ProductID)
	}
}

func TestSyncSettlementRange_ImmutableSkipOnReplay(t *testing.T) {
	om := &stubOpenMarketAPI{settlements: []openmarket.RawSettlement{{
		OrderID: 9001, VendorItemID: 87654321, SaleType: "SALE",
		SaleDate: "2026-01-30", SellerProductName: "진공쌀통", Quantity: 2,
	}}}
	db, svc := setupSyncTest(t, &stubProvider{om: om})
	seedAccount(db, model.MarketplaceOpenMarket)

	day := time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST)
	first, err := svc.SyncSettlementRange(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("首轮同步失败: %v", err)
	}
	if first.Inserted != 1 {
		t.Fatalf("首轮 inserted = %d, want 1", first.Inserted)
	}

	second, err := svc.SyncSettlementRange(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("重放失败: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 1 {
		t.Errorf("重放 inserted=%d skipped=%d, want 0/1（结算不可变）", second.Inserted, second.Skipped)
	}

	var count int64
	db.Model(&model.Settlement{}).Count(&count)
	if count != 1 {
		t.Errorf("结算行数 = %d, want 1", count)
	}
}

func TestSyncStorefrontRange_RowLevelKey(t *testing.T) {
	// 一单两品：两条 productOrder，各自独立成行
	sf := &stubStorefrontAPI{orders: []storefront.RawProductOrder{
		{ProductOrderID: "PO-1", OrderID: "ORD-1", Status: "PAYED",
			PaymentDate: "2026-01-30T10:00:00+09:00", ProductName: "쌀통", Quantity: 1},
		{ProductOrderID: "PO-2", OrderID: "ORD-1", Status: "PAYED",
			PaymentDate: "2026-01-30T11:00:00+09:00", ProductName: "필터", Quantity: 2},
	}}
	db, svc := setupSyncTest(t, &stubProvider{sf: sf})
	seedAccount(db, model.MarketplaceStorefront)

	day := time.Date(2026, 1, 30, 0, 0, 0, 0, timewindow.KST)
	res, err := svc.SyncStorefrontRange(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}
	if res.Inserted != 2 {
		t.Errorf("inserted = %d, want 2（productOrderId 为行级自然键）", res.Inserted)
	}
}

func TestScanMisroutedOrders(t *testing.T) {
	db, svc := setupSyncTest(t, &stubProvider{})

	now := time.Now()
	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelOpenMarket,
		MarketplaceOrderID: "9001", ShipmentBoxID: "9001", // 同值：疑似仓配
		OrdererName:        "김철수", OrderedAt: &now,
	})
	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelOpenMarket,
		MarketplaceOrderID: "9002", ShipmentBoxID: "B-77",
		OrdererName:        "이영희", OrderedAt: &now,
	})

	report, err := svc.ScanMisroutedOrders(context.Background(), now.Add(-time.Hour), 100)
	if err != nil {
		t.Fatalf("巡检失败: %v", err)
	}
	if report.Scanned != 2 || report.Suspected != 1 {
		t.Errorf("scanned=%d suspected=%d, want 2/1", report.Scanned, report.Suspected)
	}
	if len(report.OrderIDs) != 1 || report.OrderIDs[0] != "9001" {
		t.Errorf("疑似名单 = %v, want [9001]", report.OrderIDs)
	}
}
