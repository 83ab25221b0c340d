package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
)

// ==================== PurchaseService 采购服务 ====================

// PurchaseService 工厂采购与入库收货
type PurchaseService struct {
	factoryRepo   repository.FactoryRepository
	purchaseRepo  repository.PurchaseOrderRepository
	inboundRepo   repository.InboundShipmentRepository
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
	log           *zap.SugaredLogger
}

// NewPurchaseService 创建采购服务
func NewPurchaseService(
	factoryRepo repository.FactoryRepository,
	purchaseRepo repository.PurchaseOrderRepository,
	inboundRepo repository.InboundShipmentRepository,
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	log *zap.SugaredLogger,
) *PurchaseService {
	return &PurchaseService{
		factoryRepo:   factoryRepo,
		purchaseRepo:  purchaseRepo,
		inboundRepo:   inboundRepo,
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		log:           log,
	}
}

// ==================== 工厂 ====================

func (s *PurchaseService) CreateFactory(ctx context.Context, factory *model.Factory) error {
	if factory.Name == "" {
		return errors.New("工厂名称不能为空")
	}
	return s.factoryRepo.Create(ctx, factory)
}

func (s *PurchaseService) ListFactories(ctx context.Context) ([]model.Factory, error) {
	return s.factoryRepo.List(ctx)
}

func (s *PurchaseService) UpdateFactory(ctx context.Context, factory *model.Factory) error {
	if _, err := s.factoryRepo.GetByID(ctx, factory.ID); err != nil {
		return err
	}
	return s.factoryRepo.Update(ctx, factory)
}

func (s *PurchaseService) DeleteFactory(ctx context.Context, id int64) error {
	return s.factoryRepo.Delete(ctx, id)
}

// ==================== 采购单 ====================

// CreatePurchaseOrder 下采购单，工厂与商品必须存在
func (s *PurchaseService) CreatePurchaseOrder(ctx context.Context, po *model.PurchaseOrder) error {
	if po.Quantity <= 0 {
		return errors.New("采购数量必须大于 0")
	}
	if _, err := s.factoryRepo.GetByID(ctx, po.FactoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("工厂 %d 不存在", po.FactoryID)
		}
		return err
	}
	if _, err := s.productRepo.GetByID(ctx, po.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("商品 %d 不存在", po.ProductID)
		}
		return err
	}

	if po.Status == "" {
		po.Status = model.PurchaseStatusOrdered
	}
	if po.OrderedAt == nil {
		now := time.Now()
		po.OrderedAt = &now
	}
	return s.purchaseRepo.Create(ctx, po)
}

func (s *PurchaseService) GetPurchaseOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *PurchaseService) ListPurchaseOrders(ctx context.Context, status string, page, pageSize int) ([]model.PurchaseOrder, int64, error) {
	return s.purchaseRepo.List(ctx, status, page, pageSize)
}

// UpdatePurchaseStatus 采购单状态流转
// received 状态只能经 ReceiveInbound 到达，防止绕过库存入账
func (s *PurchaseService) UpdatePurchaseStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case model.PurchaseStatusOrdered, model.PurchaseStatusInTransit, model.PurchaseStatusCanceled:
	case model.PurchaseStatusReceived:
		return errors.New("收货入库请走入库接口")
	default:
		return fmt.Errorf("未知采购状态: %s", status)
	}
	if _, err := s.purchaseRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.purchaseRepo.UpdateStatus(ctx, id, status)
}

// ==================== 入库收货 ====================

// ReceiveInbound 采购单收货入库
// 落入库单、采购单置 received、仓库库存加收货数并记流水
func (s *PurchaseService) ReceiveInbound(ctx context.Context, poID int64, receivedQty int, receiver, note string) (*model.InboundShipment, error) {
	if receivedQty <= 0 {
		return nil, errors.New("收货数量必须大于 0")
	}

	po, err := s.purchaseRepo.GetByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("采购单 %d 不存在", poID)
		}
		return nil, err
	}
	if !po.CanReceive() {
		return nil, fmt.Errorf("采购单 %d 当前状态 %s 不可收货", poID, po.Status)
	}

	now := time.Now()
	inbound := &model.InboundShipment{
		PurchaseOrderID: poID,
		ReceivedQty:     receivedQty,
		ReceivedAt:      &now,
		Receiver:        receiver,
		Note:            note,
	}
	if err := s.inboundRepo.Create(ctx, inbound); err != nil {
		return nil, fmt.Errorf("写入入库单失败: %w", err)
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, poID, model.PurchaseStatusReceived); err != nil {
		return nil, fmt.Errorf("更新采购单状态失败: %w", err)
	}

	inv, err := s.inventoryRepo.Get(ctx, po.ProductID, model.InventoryLocationWarehouse)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = &model.Inventory{ProductID: po.ProductID, Location: model.InventoryLocationWarehouse}
	} else if err != nil {
		return nil, err
	}
	inv.LooseQty += receivedQty

	logNote := fmt.Sprintf("采购单 %d 收货", poID)
	if note != "" {
		logNote = logNote + ": " + note
	}
	if err := s.inventoryRepo.Apply(ctx, inv, model.InventoryReasonInbound, logNote, receiver); err != nil {
		// 库存入账失败浮出，入库单已落，人工对账处理
		s.log.Errorw("入库库存入账失败", "po_id", poID, "err", err)
		return inbound, fmt.Errorf("入库单已创建但库存入账失败: %w", err)
	}

	return inbound, nil
}

func (s *PurchaseService) ListInbounds(ctx context.Context, poID int64) ([]model.InboundShipment, error) {
	return s.inboundRepo.ListByPurchaseOrder(ctx, poID)
}
