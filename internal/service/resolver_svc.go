package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/repository"
)

// ==================== 解析策略 ====================

// ResolveStrategy 命中策略标签
type ResolveStrategy string

const (
	StrategyOptionID   ResolveStrategy = "option_id"   // 外部 option id 精确映射
	StrategyNameOption ResolveStrategy = "name_option" // (商品名, 选项名) 复合精确映射
	StrategyName       ResolveStrategy = "name"        // 商品名精确映射（忽略选项）
	StrategySKU        ResolveStrategy = "sku"         // option id == 内部 SKU
	StrategySKUPrefix  ResolveStrategy = "sku_prefix"  // 前 9 位前缀相等的模糊兜底
)

// 前缀兜底位数：平台变体 ID 的前 9 位是稳定的基础 SKU，
// 尾部数字按颜色/包装规格变化
const skuPrefixLen = 9

// ==================== 查询与结果 ====================

// ResolveQuery 解析输入
type ResolveQuery struct {
	Marketplace      string
	ExternalOptionID string
	ProductName      string
	OptionName       string
}

// ResolveResult 解析结果
// Matched 为假即 Unmatched：合法的终态，不是错误，
// 记录保留供人工补映射，数量进未匹配聚合
type ResolveResult struct {
	Matched   bool
	ProductID int64
	Strategy  ResolveStrategy
	Reason    string // 未命中时的诊断：尝试过的策略链
}

// ==================== ResolverService 商品解析引擎 ====================

// resolveStep 单个策略：纯查找，未命中返回 (0, false)
type resolveStep struct {
	strategy ResolveStrategy
	fn       func(ctx context.Context, q ResolveQuery) (int64, bool, error)
}

// ResolverService 商品解析引擎
// 策略链严格按序，先精确后模糊，首个命中即返回：
// 模糊启发不允许压过人工维护的精确映射
type ResolverService struct {
	mappingRepo repository.ProductMappingRepository
	productRepo repository.ProductRepository
	log         *zap.SugaredLogger

	steps []resolveStep
}

// NewResolverService 创建解析引擎
func NewResolverService(
	mappingRepo repository.ProductMappingRepository,
	productRepo repository.ProductRepository,
	log *zap.SugaredLogger,
) *ResolverService {
	s := &ResolverService{
		mappingRepo: mappingRepo,
		productRepo: productRepo,
		log:         log,
	}
	s.steps = []resolveStep{
		{StrategyOptionID, s.byOptionID},
		{StrategyNameOption, s.byNameAndOption},
		{StrategyName, s.byName},
		{StrategySKU, s.bySKU},
		{StrategySKUPrefix, s.bySKUPrefix},
	}
	return s
}

// Resolve 按策略链解析单个原始订单行
func (s *ResolverService) Resolve(ctx context.Context, q ResolveQuery) (*ResolveResult, error) {
	var tried []string

	for _, step := range s.steps {
		productID, ok, err := step.fn(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("解析策略 %s 查询失败: %w", step.strategy, err)
		}
		if ok {
			return &ResolveResult{
				Matched:   true,
				ProductID: productID,
				Strategy:  step.strategy,
			}, nil
		}
		tried = append(tried, string(step.strategy))
	}

	return &ResolveResult{
		Matched: false,
		Reason:  "未命中: " + strings.Join(tried, "/"),
	}, nil
}

// ==================== 各策略实现 ====================

func (s *ResolverService) byOptionID(ctx context.Context, q ResolveQuery) (int64, bool, error) {
	m, err := s.mappingRepo.FindActiveByOptionID(ctx, q.Marketplace, q.ExternalOptionID)
	if err != nil {
		return 0, false, ignoreNotFound(err)
	}
	return m.ProductID, true, nil
}

func (s *ResolverService) byNameAndOption(ctx context.Context, q ResolveQuery) (int64, bool, error) {
	m, err := s.mappingRepo.FindActiveByNameAndOption(ctx, q.Marketplace, q.ProductName, q.OptionName)
	if err != nil {
		return 0, false, ignoreNotFound(err)
	}
	return m.ProductID, true, nil
}

func (s *ResolverService) byName(ctx context.Context, q ResolveQuery) (int64, bool, error) {
	m, err := s.mappingRepo.FindActiveByName(ctx, q.Marketplace, q.ProductName)
	if err != nil {
		return 0, false, ignoreNotFound(err)
	}
	return m.ProductID, true, nil
}

func (s *ResolverService) bySKU(ctx context.Context, q ResolveQuery) (int64, bool, error) {
	if q.ExternalOptionID == "" {
		return 0, false, nil
	}
	p, err := s.productRepo.GetBySKU(ctx, q.ExternalOptionID)
	if err != nil {
		return 0, false, ignoreNotFound(err)
	}
	return p.ID, true, nil
}

func (s *ResolverService) bySKUPrefix(ctx context.Context, q ResolveQuery) (int64, bool, error) {
	if len(q.ExternalOptionID) < skuPrefixLen {
		return 0, false, nil
	}
	prefix := q.ExternalOptionID[:skuPrefixLen]
	p, err := s.productRepo.GetBySKUPrefix(ctx, prefix)
	if err != nil {
		return 0, false, ignoreNotFound(err)
	}
	// 前缀命中但完整 SKU 不同属正常（变体尾号），记一笔方便排查
	if p.SKU != q.ExternalOptionID {
		s.log.Debugw("前缀兜底命中", "option_id", q.ExternalOptionID, "sku", p.SKU)
	}
	return p.ID, true, nil
}

// ignoreNotFound 未命中不是错误
func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
