package repository

import (
	"context"

	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// ==================== FactoryRepository 工厂仓库 ====================

// FactoryRepository 工厂仓库接口
type FactoryRepository interface {
	Create(ctx context.Context, factory *model.Factory) error
	GetByID(ctx context.Context, id int64) (*model.Factory, error)
	List(ctx context.Context) ([]model.Factory, error)
	Update(ctx context.Context, factory *model.Factory) error
	Delete(ctx context.Context, id int64) error
}

type factoryRepository struct {
	db *gorm.DB
}

// NewFactoryRepository 创建工厂仓库
func NewFactoryRepository(db *gorm.DB) FactoryRepository {
	return &factoryRepository{db: db}
}

func (r *factoryRepository) Create(ctx context.Context, factory *model.Factory) error {
	return r.db.WithContext(ctx).Create(factory).Error
}

func (r *factoryRepository) GetByID(ctx context.Context, id int64) (*model.Factory, error) {
	var factory model.Factory
	if err := r.db.WithContext(ctx).First(&factory, id).Error; err != nil {
		return nil, err
	}
	return &factory, nil
}

func (r *factoryRepository) List(ctx context.Context) ([]model.Factory, error) {
	var factories []model.Factory
	err := r.db.WithContext(ctx).Order("id ASC").Find(&factories).Error
	return factories, err
}

func (r *factoryRepository) Update(ctx context.Context, factory *model.Factory) error {
	return r.db.WithContext(ctx).Save(factory).Error
}

func (r *factoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Factory{}, id).Error
}

// ==================== PurchaseOrderRepository 采购单仓库 ====================

// PurchaseOrderRepository 采购单仓库接口
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	List(ctx context.Context, status string, page, pageSize int) ([]model.PurchaseOrder, int64, error)
	Update(ctx context.Context, po *model.PurchaseOrder) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository 创建采购单仓库
func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Factory").
		Preload("Product").
		First(&po, id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, status string, page, pageSize int) ([]model.PurchaseOrder, int64, error) {
	var pos []model.PurchaseOrder
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	err := db.
		Preload("Factory").
		Preload("Product").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&pos).Error

	return pos, total, err
}

func (r *purchaseOrderRepository) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ==================== InboundShipmentRepository 入库单仓库 ====================

// InboundShipmentRepository 入库单仓库接口
type InboundShipmentRepository interface {
	Create(ctx context.Context, inbound *model.InboundShipment) error
	ListByPurchaseOrder(ctx context.Context, poID int64) ([]model.InboundShipment, error)
}

type inboundShipmentRepository struct {
	db *gorm.DB
}

// NewInboundShipmentRepository 创建入库单仓库
func NewInboundShipmentRepository(db *gorm.DB) InboundShipmentRepository {
	return &inboundShipmentRepository{db: db}
}

func (r *inboundShipmentRepository) Create(ctx context.Context, inbound *model.InboundShipment) error {
	return r.db.WithContext(ctx).Create(inbound).Error
}

func (r *inboundShipmentRepository) ListByPurchaseOrder(ctx context.Context, poID int64) ([]model.InboundShipment, error) {
	var list []model.InboundShipment
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", poID).
		Order("id DESC").
		Find(&list).Error
	return list, err
}
