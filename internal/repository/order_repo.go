package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	Channel   string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Keyword   string
	Page      int
	PageSize  int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, id int64, status string) error

	// 批量自然键查询：一次 IN 查询取回候选，避免逐条 N+1
	ListByOrderIDs(ctx context.Context, channel string, orderIDs []string) ([]model.Order, error)
	ListByBoxIDs(ctx context.Context, channel string, boxIDs []string) ([]model.Order, error)

	// 渠道错分巡检：取一段时间内的候选订单
	ListForMisrouteCheck(ctx context.Context, channel string, since time.Time, limit int) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Channel != "" {
		db = db.Where("channel = ?", filter.Channel)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		db = db.Where("ordered_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("ordered_at <= ?", filter.EndDate)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("marketplace_order_id LIKE ? OR orderer_name LIKE ? OR receiver_name LIKE ?",
			keyword, keyword, keyword)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("Items").
		Order("ordered_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) ListByOrderIDs(ctx context.Context, channel string, orderIDs []string) ([]model.Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Where("marketplace_order_id IN ?", orderIDs).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListByBoxIDs(ctx context.Context, channel string, boxIDs []string) ([]model.Order, error) {
	if len(boxIDs) == 0 {
		return nil, nil
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Where("shipment_box_id IN ?", boxIDs).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListForMisrouteCheck(ctx context.Context, channel string, since time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Where("ordered_at >= ?", since).
		Order("ordered_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ==================== OrderItemRepository 订单行仓库 ====================

// UnmatchedAggregate 未匹配聚合：对账报表用，未匹配数量必须可见
type UnmatchedAggregate struct {
	UnmatchedRows int64
	UnmatchedQty  int64
}

// OrderItemRepository 订单行仓库接口
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []model.OrderItem) error
	GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	// ReplaceForOrder 整体替换订单行集合（删旧 + 插新，不做 diff）
	ReplaceForOrder(ctx context.Context, orderID int64, items []model.OrderItem) error
	UpdateProductID(ctx context.Context, itemID int64, productID int64) error
	ListUnresolved(ctx context.Context, channels []string, limit int) ([]model.OrderItem, error)
	UnmatchedStats(ctx context.Context, since time.Time) (*UnmatchedAggregate, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository 创建订单行仓库
func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *orderItemRepository) ReplaceForOrder(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.CreateBatch(ctx, items)
}

func (r *orderItemRepository) UpdateProductID(ctx context.Context, itemID int64, productID int64) error {
	return r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Update("product_id", productID).Error
}

// ListUnresolved 未解析订单行，可按所属订单的渠道过滤
// 补解析按 marketplace 选映射规则，必须只扫对应渠道的行，防止跨平台串库
func (r *orderItemRepository) ListUnresolved(ctx context.Context, channels []string, limit int) ([]model.OrderItem, error) {
	var items []model.OrderItem
	query := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id IS NULL")
	if len(channels) > 0 {
		query = query.Where("orders.channel IN ?", channels)
	}
	err := query.
		Order("order_items.id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *orderItemRepository) UnmatchedStats(ctx context.Context, since time.Time) (*UnmatchedAggregate, error) {
	var result struct {
		RowCount int64
		TotalQty int64
	}
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id IS NULL").
		Where("created_at >= ?", since).
		Select("COUNT(*) as row_count, COALESCE(SUM(quantity), 0) as total_qty").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &UnmatchedAggregate{UnmatchedRows: result.RowCount, UnmatchedQty: result.TotalQty}, nil
}
