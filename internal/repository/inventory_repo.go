package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// ==================== InventoryRepository 库存仓库 ====================

// InventoryRepository 库存仓库接口
// 每次写入同时落一条类型化流水，流水只追加不修改
type InventoryRepository interface {
	Get(ctx context.Context, productID int64, location string) (*model.Inventory, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.Inventory, error)
	List(ctx context.Context, location string, page, pageSize int) ([]model.Inventory, int64, error)
	// Apply 写入快照并记录流水，快照不存在时创建
	Apply(ctx context.Context, inv *model.Inventory, reason, note, operator string) error
	ListLogs(ctx context.Context, productID int64, limit int) ([]model.InventoryLog, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Get(ctx context.Context, productID int64, location string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location = ?", productID, location).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepository) ListByProduct(ctx context.Context, productID int64) ([]model.Inventory, error) {
	var list []model.Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&list).Error
	return list, err
}

func (r *inventoryRepository) List(ctx context.Context, location string, page, pageSize int) ([]model.Inventory, int64, error) {
	var list []model.Inventory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Inventory{})
	if location != "" {
		db = db.Where("location = ?", location)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	err := db.Order("product_id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&list).Error
	return list, total, err
}

func (r *inventoryRepository) Apply(ctx context.Context, inv *model.Inventory, reason, note, operator string) error {
	inv.ComputeTotal()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before int
		var existing model.Inventory
		err := tx.Where("product_id = ? AND location = ?", inv.ProductID, inv.Location).
			First(&existing).Error
		switch {
		case err == nil:
			before = existing.TotalQty
			inv.ID = existing.ID
			inv.CreatedAt = existing.CreatedAt
			if err := tx.Save(inv).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(inv).Error; err != nil {
				return err
			}
		default:
			return err
		}

		log := &model.InventoryLog{
			ProductID: inv.ProductID,
			Location:  inv.Location,
			Reason:    reason,
			Note:      note,
			QtyBefore: before,
			QtyAfter:  inv.TotalQty,
			QtyDelta:  inv.TotalQty - before,
			Operator:  operator,
		}
		return tx.Create(log).Error
	})
}

func (r *inventoryRepository) ListLogs(ctx context.Context, productID int64, limit int) ([]model.InventoryLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []model.InventoryLog
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
