package repository

import (
	"context"

	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/model"
)

// MarketAccountRepository 平台账号仓库接口
type MarketAccountRepository interface {
	Create(ctx context.Context, account *model.MarketAccount) error
	GetByID(ctx context.Context, id int64) (*model.MarketAccount, error)
	ListActive(ctx context.Context, marketplace string) ([]model.MarketAccount, error)
	Count(ctx context.Context) (int64, error)
}

type marketAccountRepository struct {
	db *gorm.DB
}

// NewMarketAccountRepository 创建平台账号仓库
func NewMarketAccountRepository(db *gorm.DB) MarketAccountRepository {
	return &marketAccountRepository{db: db}
}

func (r *marketAccountRepository) Create(ctx context.Context, account *model.MarketAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *marketAccountRepository) GetByID(ctx context.Context, id int64) (*model.MarketAccount, error) {
	var account model.MarketAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *marketAccountRepository) ListActive(ctx context.Context, marketplace string) ([]model.MarketAccount, error) {
	var accounts []model.MarketAccount
	db := r.db.WithContext(ctx).Where("status = ?", model.AccountStatusActive)
	if marketplace != "" {
		db = db.Where("marketplace = ?", marketplace)
	}
	err := db.Order("id ASC").Find(&accounts).Error
	return accounts, err
}

func (r *marketAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MarketAccount{}).Count(&count).Error
	return count, err
}
