package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	applog "seller_ops_v1_202609/pkg/logger"
)

// ==================== 测试辅助 ====================

func setupReconcileTest(t *testing.T) (*gorm.DB, *OrderReconciler) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	rc := NewOrderReconciler(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		applog.NewNop(),
	)
	return db, rc
}

func makeOrder(orderID, boxID, status string) OrderWithItems {
	return OrderWithItems{
		Order: model.Order{
			AccountID:          1,
			Channel:            model.ChannelOpenMarket,
			MarketplaceOrderID: orderID,
			ShipmentBoxID:      boxID,
			Status:             status,
			OrdererName:        "김철수",
		},
		Items: []model.OrderItem{
			{ExternalOptionID: "87654321", ProductName: "진공쌀통", Quantity: 2, SalePrice: 30000},
		},
	}
}

// ==================== 单元测试 ====================

func TestReconcile_InsertThenIdempotent(t *testing.T) {
	db, rc := setupReconcileTest(t)
	ctx := context.Background()

	batch := []OrderWithItems{
		makeOrder("1001", "B1", model.OrderStatusAccept),
		makeOrder("1002", "B2", model.OrderStatusAccept),
		makeOrder("1003", "B3", model.OrderStatusInstruct),
	}

	first := rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID, batch)
	if first.Inserted != 3 || first.Updated != 0 {
		t.Fatalf("首轮 inserted=%d updated=%d, want 3/0", first.Inserted, first.Updated)
	}

	// 同批重放：零新增、全跳过
	second := rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID, batch)
	if second.Inserted != 0 || second.Updated != 0 || second.Skipped != 3 {
		t.Errorf("重放 inserted=%d updated=%d skipped=%d, want 0/0/3",
			second.Inserted, second.Updated, second.Skipped)
	}

	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 3 {
		t.Errorf("订单行数 = %d, want 3", count)
	}
}

func TestReconcile_StatusChangeUpdatesInPlace(t *testing.T) {
	db, rc := setupReconcileTest(t)
	ctx := context.Background()

	rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID,
		[]OrderWithItems{makeOrder("1001", "B1", model.OrderStatusAccept)})

	var before model.Order
	db.Where("marketplace_order_id = ?", "1001").First(&before)

	res := rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID,
		[]OrderWithItems{makeOrder("1001", "B1", model.OrderStatusDeparture)})
	if res.Updated != 1 || res.Inserted != 0 {
		t.Fatalf("inserted=%d updated=%d, want 0/1", res.Inserted, res.Updated)
	}

	var after model.Order
	db.Where("marketplace_order_id = ?", "1001").First(&after)
	if after.ID != before.ID {
		t.Errorf("状态变更必须原地更新，id %d → %d", before.ID, after.ID)
	}
	if after.Status != model.OrderStatusDeparture {
		t.Errorf("status = %s, want %s", after.Status, model.OrderStatusDeparture)
	}

	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 1 {
		t.Errorf("订单行数 = %d, want 1", count)
	}
}

func TestReconcile_InBatchDuplicateCollapses(t *testing.T) {
	db, rc := setupReconcileTest(t)
	ctx := context.Background()

	// 同一自然键在一批里出现两次（放宽窗口抓重），后者状态更新
	batch := []OrderWithItems{
		makeOrder("1001", "B1", model.OrderStatusAccept),
		makeOrder("1001", "B1", model.OrderStatusDeparture),
	}
	res := rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID, batch)
	if res.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1（批内去重后只落一行）", res.Inserted)
	}

	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 1 {
		t.Errorf("订单行数 = %d, want 1", count)
	}

	var order model.Order
	db.Where("marketplace_order_id = ?", "1001").First(&order)
	if order.Status != model.OrderStatusDeparture {
		t.Errorf("status = %s, want %s（批内后出现者赢）", order.Status, model.OrderStatusDeparture)
	}
}

func TestReconcile_BoxKeyMode(t *testing.T) {
	db, rc := setupReconcileTest(t)
	ctx := context.Background()

	// 仓配渠道：同一订单拆两箱，箱键模式下是两行
	a := makeOrder("2001", "BOX-1", "IN_TRANSIT")
	a.Order.Channel = model.ChannelRocket
	b := makeOrder("2001", "BOX-2", "IN_TRANSIT")
	b.Order.Channel = model.ChannelRocket

	res := rc.Reconcile(ctx, model.ChannelRocket, KeyByBoxID, []OrderWithItems{a, b})
	if res.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2（箱键模式按 shipment_box_id 去重）", res.Inserted)
	}

	var count int64
	db.Model(&model.Order{}).Where("channel = ?", model.ChannelRocket).Count(&count)
	if count != 2 {
		t.Errorf("订单行数 = %d, want 2", count)
	}
}

func TestReconcile_ItemsReplacedOnUpdate(t *testing.T) {
	db, rc := setupReconcileTest(t)
	ctx := context.Background()

	rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID,
		[]OrderWithItems{makeOrder("1001", "B1", model.OrderStatusAccept)})

	// 重抓时行集合变了：整体替换，不残留旧行
	updated := makeOrder("1001", "B1", model.OrderStatusDeparture)
	updated.Items = []model.OrderItem{
		{ExternalOptionID: "87654321", ProductName: "진공쌀통", Quantity: 1},
		{ExternalOptionID: "11112222", ProductName: "쌀통 필터", Quantity: 3},
	}
	rc.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID, []OrderWithItems{updated})

	var order model.Order
	db.Where("marketplace_order_id = ?", "1001").First(&order)

	var items []model.OrderItem
	db.Where("order_id = ?", order.ID).Find(&items)
	if len(items) != 2 {
		t.Errorf("订单行数 = %d, want 2（行集合整体替换）", len(items))
	}
}

func TestReconcile_EmptyBatch(t *testing.T) {
	_, rc := setupReconcileTest(t)

	res := rc.Reconcile(context.Background(), model.ChannelOpenMarket, KeyByOrderID, nil)
	if res.Inserted != 0 || res.Updated != 0 || res.Skipped != 0 || len(res.Errors) != 0 {
		t.Errorf("空批应全零: %+v", res)
	}
}
