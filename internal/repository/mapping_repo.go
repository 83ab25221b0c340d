package repository

import (
	"context"

	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// ==================== 过滤条件 ====================

// MappingFilter 映射过滤条件
type MappingFilter struct {
	Marketplace string
	ProductID   int64
	Keyword     string
	ActiveOnly  bool
	Page        int
	PageSize    int
}

// ==================== ProductMappingRepository 映射仓库 ====================

// ProductMappingRepository 商品映射仓库接口
// 解析引擎只读 active 映射，写入只走 CRUD 端点
type ProductMappingRepository interface {
	Create(ctx context.Context, mapping *model.ProductMapping) error
	GetByID(ctx context.Context, id int64) (*model.ProductMapping, error)
	List(ctx context.Context, filter MappingFilter) ([]model.ProductMapping, int64, error)
	Update(ctx context.Context, mapping *model.ProductMapping) error
	// Deactivate 软删除：active 置假，规则保留可追溯
	Deactivate(ctx context.Context, id int64) error

	// 解析引擎用的精确查找，全部只看 active
	FindActiveByOptionID(ctx context.Context, marketplace, externalOptionID string) (*model.ProductMapping, error)
	FindActiveByNameAndOption(ctx context.Context, marketplace, productName, optionName string) (*model.ProductMapping, error)
	FindActiveByName(ctx context.Context, marketplace, productName string) (*model.ProductMapping, error)
}

type productMappingRepository struct {
	db *gorm.DB
}

// NewProductMappingRepository 创建映射仓库
func NewProductMappingRepository(db *gorm.DB) ProductMappingRepository {
	return &productMappingRepository{db: db}
}

func (r *productMappingRepository) Create(ctx context.Context, mapping *model.ProductMapping) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

func (r *productMappingRepository) GetByID(ctx context.Context, id int64) (*model.ProductMapping, error) {
	var mapping model.ProductMapping
	if err := r.db.WithContext(ctx).Preload("Product").First(&mapping, id).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *productMappingRepository) List(ctx context.Context, filter MappingFilter) ([]model.ProductMapping, int64, error) {
	var mappings []model.ProductMapping
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ProductMapping{})

	if filter.Marketplace != "" {
		db = db.Where("marketplace = ?", filter.Marketplace)
	}
	if filter.ProductID > 0 {
		db = db.Where("product_id = ?", filter.ProductID)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("external_product_name LIKE ? OR external_option_id LIKE ?", keyword, keyword)
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
	err := db.
		Preload("Product").
		Order("id DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&mappings).Error

	return mappings, total, err
}

func (r *productMappingRepository) Update(ctx context.Context, mapping *model.ProductMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}

func (r *productMappingRepository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.ProductMapping{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *productMappingRepository) FindActiveByOptionID(ctx context.Context, marketplace, externalOptionID string) (*model.ProductMapping, error) {
	if externalOptionID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var mapping model.ProductMapping
	err := r.db.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Where("external_option_id = ?", externalOptionID).
		Where("is_active = ?", true).
		Order("id ASC").
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *productMappingRepository) FindActiveByNameAndOption(ctx context.Context, marketplace, productName, optionName string) (*model.ProductMapping, error) {
	if productName == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var mapping model.ProductMapping
	err := r.db.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Where("external_product_name = ?", productName).
		Where("external_option_name = ?", optionName).
		Where("is_active = ?", true).
		Order("id ASC").
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *productMappingRepository) FindActiveByName(ctx context.Context, marketplace, productName string) (*model.ProductMapping, error) {
	if productName == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var mapping model.ProductMapping
	err := r.db.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Where("external_product_name = ?", productName).
		Where("is_active = ?", true).
		Order("id ASC").
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}
