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

// ==================== MappingService 商品映射服务 ====================

// MappingService 商品映射的维护入口
// 解析引擎只读映射，所有写入集中在这里
type MappingService struct {
	mappingRepo repository.ProductMappingRepository
	productRepo repository.ProductRepository
	itemRepo    repository.OrderItemRepository
	resolver    *ResolverService
	log         *zap.SugaredLogger
}

// NewMappingService 创建映射服务
func NewMappingService(
	mappingRepo repository.ProductMappingRepository,
	productRepo repository.ProductRepository,
	itemRepo repository.OrderItemRepository,
	resolver *ResolverService,
	log *zap.SugaredLogger,
) *MappingService {
	return &MappingService{
		mappingRepo: mappingRepo,
		productRepo: productRepo,
		itemRepo:    itemRepo,
		resolver:    resolver,
		log:         log,
	}
}

// CreateMapping 新建映射，目标商品必须存在
func (s *MappingService) CreateMapping(ctx context.Context, mapping *model.ProductMapping) error {
	if mapping.Marketplace == "" {
		return errors.New("marketplace 不能为空")
	}
	if mapping.ExternalOptionID == "" && mapping.ExternalProductName == "" {
		return errors.New("external_option_id 和 external_product_name 至少填一个")
	}

	if _, err := s.productRepo.GetByID(ctx, mapping.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("目标商品 %d 不存在", mapping.ProductID)
		}
		return err
	}

	mapping.IsActive = true
	return s.mappingRepo.Create(ctx, mapping)
}

// GetMapping 查单条
func (s *MappingService) GetMapping(ctx context.Context, id int64) (*model.ProductMapping, error) {
	return s.mappingRepo.GetByID(ctx, id)
}

// ListMappings 按条件分页
func (s *MappingService) ListMappings(ctx context.Context, filter repository.MappingFilter) ([]model.ProductMapping, int64, error) {
	return s.mappingRepo.List(ctx, filter)
}

// UpdateMapping 更新映射字段
func (s *MappingService) UpdateMapping(ctx context.Context, id int64, update *model.ProductMapping) (*model.ProductMapping, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.ProductID > 0 && update.ProductID != mapping.ProductID {
		if _, err := s.productRepo.GetByID(ctx, update.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("目标商品 %d 不存在", update.ProductID)
			}
			return nil, err
		}
		mapping.ProductID = update.ProductID
		mapping.Product = nil
	}
	if update.ExternalProductID != "" {
		mapping.ExternalProductID = update.ExternalProductID
	}
	if update.ExternalProductName != "" {
		mapping.ExternalProductName = update.ExternalProductName
	}
	if update.ExternalOptionID != "" {
		mapping.ExternalOptionID = update.ExternalOptionID
	}
	if update.ExternalOptionName != "" {
		mapping.ExternalOptionName = update.ExternalOptionName
	}

	if err := s.mappingRepo.Update(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// DeactivateMapping 停用映射（软删除，规则保留可追溯）
func (s *MappingService) DeactivateMapping(ctx context.Context, id int64) error {
	if _, err := s.mappingRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.mappingRepo.Deactivate(ctx, id)
}

// Find 用当前规则试解析一条外部商品（调试/录入辅助端点）
func (s *MappingService) Find(ctx context.Context, q ResolveQuery) (*ResolveResult, error) {
	return s.resolver.Resolve(ctx, q)
}

// ==================== 未匹配补解析 ====================

// ResolveUnmatchedResult 补解析结果
type ResolveUnmatchedResult struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
}

// marketplaceChannels 补解析时该 marketplace 下的订单渠道
// 仓配订单也走开放平台的映射规则
func marketplaceChannels(marketplace string) []string {
	if marketplace == model.MarketplaceStorefront {
		return []string{model.ChannelStorefront}
	}
	return []string{model.ChannelOpenMarket, model.ChannelRocket}
}

// ResolveUnmatched 对历史未匹配订单行重跑解析
// 新增映射后调用，把之前落不上的行补上，不用等下次同步覆盖
// 只扫 marketplace 对应渠道的订单行，智能店铺的行不会拿开放平台规则乱配
func (s *MappingService) ResolveUnmatched(ctx context.Context, marketplace string, limit int) (*ResolveUnmatchedResult, error) {
	if limit <= 0 {
		limit = 500
	}
	items, err := s.itemRepo.ListUnresolved(ctx, marketplaceChannels(marketplace), limit)
	if err != nil {
		return nil, fmt.Errorf("查询未匹配订单行失败: %w", err)
	}

	result := &ResolveUnmatchedResult{Scanned: len(items)}
	for i := range items {
		item := &items[i]
		res, err := s.resolver.Resolve(ctx, ResolveQuery{
			Marketplace:      marketplace,
			ExternalOptionID: item.ExternalOptionID,
			ProductName:      item.ProductName,
			OptionName:       item.OptionName,
		})
		if err != nil {
			s.log.Warnw("补解析查询失败", "item_id", item.ID, "err", err)
			continue
		}
		if !res.Matched {
			continue
		}
		if err := s.itemRepo.UpdateProductID(ctx, item.ID, res.ProductID); err != nil {
			s.log.Warnw("补解析写回失败", "item_id", item.ID, "err", err)
			continue
		}
		result.Resolved++
	}

	s.log.Infow("未匹配补解析完成", "scanned", result.Scanned, "resolved", result.Resolved)
	return result, nil
}
