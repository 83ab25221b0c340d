package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
)

// ==================== InventoryService 库存服务 ====================

// InventoryService 库存快照维护
// 所有写入经 Apply 落流水，谁在什么时候改了多少必须可查
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
	log           *zap.SugaredLogger
}

// NewInventoryService 创建库存服务
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	log *zap.SugaredLogger,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		log:           log,
	}
}

// SetInventory 手工设置库存（托盘分解或散数）
func (s *InventoryService) SetInventory(ctx context.Context, inv *model.Inventory, note, operator string) error {
	if inv.Location != model.InventoryLocationWarehouse && inv.Location != model.InventoryLocationMarketplace {
		return fmt.Errorf("未知库存位置: %s", inv.Location)
	}
	if _, err := s.productRepo.GetByID(ctx, inv.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("商品 %d 不存在", inv.ProductID)
		}
		return err
	}
	return s.inventoryRepo.Apply(ctx, inv, model.InventoryReasonManual, note, operator)
}

// AdjustInventory 盘点调整：在现有基础上增减散数
func (s *InventoryService) AdjustInventory(ctx context.Context, productID int64, location string, delta int, note, operator string) error {
	inv, err := s.inventoryRepo.Get(ctx, productID, location)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = &model.Inventory{ProductID: productID, Location: location}
	} else if err != nil {
		return err
	}

	inv.LooseQty += delta
	if inv.ComputeTotal() < 0 {
		return fmt.Errorf("调整后库存为负: 商品 %d 位置 %s", productID, location)
	}
	return s.inventoryRepo.Apply(ctx, inv, model.InventoryReasonAdjust, note, operator)
}

// GetByProduct 查商品在各位置的快照
func (s *InventoryService) GetByProduct(ctx context.Context, productID int64) ([]model.Inventory, error) {
	return s.inventoryRepo.ListByProduct(ctx, productID)
}

// List 按位置分页
func (s *InventoryService) List(ctx context.Context, location string, page, pageSize int) ([]model.Inventory, int64, error) {
	return s.inventoryRepo.List(ctx, location, page, pageSize)
}

// Logs 商品的库存流水
func (s *InventoryService) Logs(ctx context.Context, productID int64, limit int) ([]model.InventoryLog, error) {
	return s.inventoryRepo.ListLogs(ctx, productID, limit)
}
