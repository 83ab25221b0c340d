package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seller_ops_v1_202609/internal/model"
)

// ==================== 测试辅助 ====================

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")

	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.OrderItem{}))
	return db
}

// ==================== 单元测试 ====================

func TestOrderRepo_BatchNaturalKeyLookup(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	for _, id := range []string{"1001", "1002", "1003"} {
		db.Create(&model.Order{
			AccountID: 1, Channel: model.ChannelOpenMarket,
			MarketplaceOrderID: id, ShipmentBoxID: "B-" + id,
		})
	}
	// 其他渠道同号订单不应被捞出
	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelStorefront,
		MarketplaceOrderID: "1001",
	})

	orders, err := repo.ListByOrderIDs(ctx, model.ChannelOpenMarket, []string{"1001", "1003", "9999"})
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	// 空键列表不发查询
	orders, err = repo.ListByOrderIDs(ctx, model.ChannelOpenMarket, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepo_ListByBoxIDs(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)

	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelRocket,
		MarketplaceOrderID: "2001", ShipmentBoxID: "BOX-1",
	})
	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelRocket,
		MarketplaceOrderID: "2001", ShipmentBoxID: "BOX-2",
	})

	orders, err := repo.ListByBoxIDs(context.Background(), model.ChannelRocket, []string{"BOX-1", "BOX-2"})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderRepo_ReplaceForOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderItemRepository(db)
	ctx := context.Background()

	db.Create(&model.Order{ID: 1, AccountID: 1, Channel: model.ChannelOpenMarket, MarketplaceOrderID: "1001"})
	require.NoError(t, repo.CreateBatch(ctx, []model.OrderItem{
		{OrderID: 1, ExternalOptionID: "A", Quantity: 1},
		{OrderID: 1, ExternalOptionID: "B", Quantity: 2},
	}))

	require.NoError(t, repo.ReplaceForOrder(ctx, 1, []model.OrderItem{
		{ExternalOptionID: "C", Quantity: 5},
	}))

	items, err := repo.GetByOrderID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1, "行集合应整体替换")
	assert.Equal(t, "C", items[0].ExternalOptionID)
	assert.Equal(t, int64(1), items[0].OrderID)
}

func TestOrderRepo_UnmatchedStats(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderItemRepository(db)

	productID := int64(7)
	db.Create(&model.OrderItem{OrderID: 1, ExternalOptionID: "A", Quantity: 2, ProductID: &productID})
	db.Create(&model.OrderItem{OrderID: 1, ExternalOptionID: "B", Quantity: 3})
	db.Create(&model.OrderItem{OrderID: 2, ExternalOptionID: "C", Quantity: 4})

	agg, err := repo.UnmatchedStats(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), agg.UnmatchedRows)
	assert.Equal(t, int64(7), agg.UnmatchedQty, "未匹配数量必须聚合可见")
}

func TestOrderRepo_ListUnresolvedFilterByChannel(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderItemRepository(db)
	ctx := context.Background()

	open := model.Order{AccountID: 1, Channel: model.ChannelOpenMarket, MarketplaceOrderID: "3001"}
	store := model.Order{AccountID: 2, Channel: model.ChannelStorefront, MarketplaceOrderID: "P-3002"}
	db.Create(&open)
	db.Create(&store)

	db.Create(&model.OrderItem{OrderID: open.ID, ExternalOptionID: "A", Quantity: 1})
	db.Create(&model.OrderItem{OrderID: store.ID, ExternalOptionID: "B", Quantity: 1})

	// 指定渠道时只取该渠道订单的行
	items, err := repo.ListUnresolved(ctx, []string{model.ChannelStorefront}, 100)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].ExternalOptionID)

	// 不指定渠道取全量
	items, err = repo.ListUnresolved(ctx, nil, 100)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestOrderRepo_ListFilterByDateAndKeyword(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)

	day1 := time.Date(2026, 1, 29, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelOpenMarket,
		MarketplaceOrderID: "1001", OrdererName: "김철수", OrderedAt: &day1,
	})
	db.Create(&model.Order{
		AccountID: 1, Channel: model.ChannelOpenMarket,
		MarketplaceOrderID: "1002", OrdererName: "이영희", OrderedAt: &day2,
	})

	orders, total, err := repo.List(context.Background(), OrderFilter{
		Channel: model.ChannelOpenMarket, StartDate: &day2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "1002", orders[0].MarketplaceOrderID)

	_, total, err = repo.List(context.Background(), OrderFilter{Keyword: "김철수"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
