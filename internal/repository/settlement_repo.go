package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// ==================== SettlementRepository 结算仓库 ====================

// SettlementStats 结算聚合
type SettlementStats struct {
	TotalQty       int64
	TotalAmount    decimal.Decimal
	UnmatchedRows  int64
	UnmatchedQty   int64
}

// SettlementRepository 结算仓库接口
type SettlementRepository interface {
	Create(ctx context.Context, s *model.Settlement) error
	Update(ctx context.Context, s *model.Settlement) error
	// ListByOrderIDs 批量自然键候选查询
	ListByOrderIDs(ctx context.Context, orderIDs []string) ([]model.Settlement, error)
	List(ctx context.Context, from, to time.Time, page, pageSize int) ([]model.Settlement, int64, error)
	Stats(ctx context.Context, from, to time.Time) (*SettlementStats, error)
	UpdateProductID(ctx context.Context, id int64, productID int64) error
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository 创建结算仓库
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(ctx context.Context, s *model.Settlement) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *settlementRepository) Update(ctx context.Context, s *model.Settlement) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *settlementRepository) ListByOrderIDs(ctx context.Context, orderIDs []string) ([]model.Settlement, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var settlements []model.Settlement
	err := r.db.WithContext(ctx).
		Where("marketplace_order_id IN ?", orderIDs).
		Find(&settlements).Error
	return settlements, err
}

func (r *settlementRepository) List(ctx context.Context, from, to time.Time, page, pageSize int) ([]model.Settlement, int64, error) {
	var settlements []model.Settlement
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("sale_date >= ? AND sale_date < ?", from, to)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	err := db.
		Order("sale_date DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&settlements).Error

	return settlements, total, err
}

func (r *settlementRepository) Stats(ctx context.Context, from, to time.Time) (*SettlementStats, error) {
	stats := &SettlementStats{}

	var totals struct {
		Qty    int64
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Select("COALESCE(SUM(quantity), 0) as qty, COALESCE(SUM(settlement_amount), 0) as amount").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalQty = totals.Qty
	stats.TotalAmount = totals.Amount

	// 未匹配数量单列：不允许从合计里静默消失
	var unmatched struct {
		RowCount int64
		TotalQty int64
	}
	err = r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Where("product_id IS NULL").
		Select("COUNT(*) as row_count, COALESCE(SUM(quantity), 0) as total_qty").
		Scan(&unmatched).Error
	if err != nil {
		return nil, err
	}
	stats.UnmatchedRows = unmatched.RowCount
	stats.UnmatchedQty = unmatched.TotalQty

	return stats, nil
}

func (r *settlementRepository) UpdateProductID(ctx context.Context, id int64, productID int64) error {
	return r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("id = ?", id).
		Update("product_id", productID).Error
}
