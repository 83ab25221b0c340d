package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seller_ops_v1_202609/internal/model"
)

// ==================== 测试辅助 ====================

func setupMappingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")

	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.ProductMapping{}))
	return db
}

// ==================== 单元测试 ====================

func TestMappingRepo_FindActiveByOptionID(t *testing.T) {
	db := setupMappingTestDB(t)
	repo := NewProductMappingRepository(db)
	ctx := context.Background()

	db.Create(&model.ProductMapping{
		Marketplace: model.MarketplaceOpenMarket,
		ExternalOptionID: "87654321", ProductID: 1, IsActive: true,
	})

	mapping, err := repo.FindActiveByOptionID(ctx, model.MarketplaceOpenMarket, "87654321")
	require.NoError(t, err)
	assert.Equal(t, int64(1), mapping.ProductID)

	// 空 option id 直接未命中，不发查询
	_, err = repo.FindActiveByOptionID(ctx, model.MarketplaceOpenMarket, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMappingRepo_DuplicateRulesLowestIDWins(t *testing.T) {
	db := setupMappingTestDB(t)
	repo := NewProductMappingRepository(db)

	// 违反约定的重复规则：取 id 最小者，结果稳定不摆动
	db.Create(&model.ProductMapping{
		ID: 1, Marketplace: model.MarketplaceOpenMarket,
		ExternalOptionID: "87654321", ProductID: 10, IsActive: true,
	})
	db.Create(&model.ProductMapping{
		ID: 2, Marketplace: model.MarketplaceOpenMarket,
		ExternalOptionID: "87654321", ProductID: 20, IsActive: true,
	})

	mapping, err := repo.FindActiveByOptionID(context.Background(), model.MarketplaceOpenMarket, "87654321")
	require.NoError(t, err)
	assert.Equal(t, int64(10), mapping.ProductID)
}

func TestMappingRepo_DeactivateKeepsRow(t *testing.T) {
	db := setupMappingTestDB(t)
	repo := NewProductMappingRepository(db)
	ctx := context.Background()

	db.Create(&model.ProductMapping{
		ID: 1, Marketplace: model.MarketplaceOpenMarket,
		ExternalOptionID: "87654321", ProductID: 1, IsActive: true,
	})

	require.NoError(t, repo.Deactivate(ctx, 1))

	// 解析查不到了
	_, err := repo.FindActiveByOptionID(ctx, model.MarketplaceOpenMarket, "87654321")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 但行还在，可追溯
	var count int64
	db.Model(&model.ProductMapping{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMappingRepo_ListFilters(t *testing.T) {
	db := setupMappingTestDB(t)
	repo := NewProductMappingRepository(db)
	ctx := context.Background()

	db.Create(&model.ProductMapping{
		Marketplace: model.MarketplaceOpenMarket,
		ExternalProductName: "진공쌀통 10kg", ProductID: 1, IsActive: true,
	})
	db.Create(&model.ProductMapping{
		Marketplace: model.MarketplaceStorefront,
		ExternalProductName: "진공쌀통 20kg", ProductID: 1, IsActive: false,
	})

	list, total, err := repo.List(ctx, MappingFilter{Marketplace: model.MarketplaceOpenMarket})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	list, total, err = repo.List(ctx, MappingFilter{Keyword: "쌀통"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = repo.List(ctx, MappingFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestMappingRepo_InactiveRowPersistsAsInactive(t *testing.T) {
	db := setupMappingTestDB(t)
	ctx := context.Background()

	// 停用状态必须原样落库：列默认值 + 零值跳过会把 false 写成 true
	db.Create(&model.ProductMapping{
		ID: 1, Marketplace: model.MarketplaceOpenMarket,
		ExternalOptionID: "87654321", ProductID: 1, IsActive: false,
	})

	var got model.ProductMapping
	require.NoError(t, db.First(&got, 1).Error)
	assert.False(t, got.IsActive, "IsActive=false 的新行不应被写成启用")

	_, err := NewProductMappingRepository(db).
		FindActiveByOptionID(ctx, model.MarketplaceOpenMarket, "87654321")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
