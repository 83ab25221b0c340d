package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
)

// ==================== OrderService 订单查询服务 ====================

// 人工可改的状态集合
// 同步会整行覆盖快照字段，人工修改只开放 status 一个口子
var mutableStatuses = map[string]bool{
	model.OrderStatusAccept:        true,
	model.OrderStatusInstruct:      true,
	model.OrderStatusDeparture:     true,
	model.OrderStatusDelivering:    true,
	model.OrderStatusFinalDelivery: true,
	model.OrderStatusNoneTracking:  true,

	model.StorefrontStatusPayed: true,
	// StorefrontStatusDelivering 与 OrderStatusDelivering 同值，上面已收录
	model.StorefrontStatusDelivered:      true,
	model.StorefrontStatusPurchaseDecide: true,
	model.StorefrontStatusCanceled:       true,
}

// OrderService 门户侧订单查询与状态维护
type OrderService struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	log       *zap.SugaredLogger
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	log *zap.SugaredLogger,
) *OrderService {
	return &OrderService{orderRepo: orderRepo, itemRepo: itemRepo, log: log}
}

// List 按条件分页
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// GetDetail 订单详情（含行）
func (s *OrderService) GetDetail(ctx context.Context, id int64) (*model.Order, error) {
	return s.orderRepo.GetByIDWithItems(ctx, id)
}

// UpdateStatus 人工修改订单状态
// 只改 status 列，快照字段留给同步覆盖
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !mutableStatuses[status] {
		return fmt.Errorf("不支持的订单状态: %s", status)
	}
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.orderRepo.UpdateStatus(ctx, id, status)
}

// ==================== 未匹配可见性 ====================

// UnmatchedReport 未匹配报表
// 对账的核心输出：未匹配数量必须单列，不允许从合计里消失
type UnmatchedReport struct {
	Since         time.Time         `json:"since"`
	UnmatchedRows int64             `json:"unmatched_rows"`
	UnmatchedQty  int64             `json:"unmatched_qty"`
	Samples       []model.OrderItem `json:"samples"`
}

// UnmatchedReport 统计一段时间内未解析的订单行并附样本
func (s *OrderService) UnmatchedReport(ctx context.Context, since time.Time, sampleLimit int) (*UnmatchedReport, error) {
	if sampleLimit <= 0 || sampleLimit > 200 {
		sampleLimit = 50
	}

	agg, err := s.itemRepo.UnmatchedStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("未匹配统计失败: %w", err)
	}
	samples, err := s.itemRepo.ListUnresolved(ctx, nil, sampleLimit)
	if err != nil {
		return nil, fmt.Errorf("未匹配样本查询失败: %w", err)
	}

	return &UnmatchedReport{
		Since:         since,
		UnmatchedRows: agg.UnmatchedRows,
		UnmatchedQty:  agg.UnmatchedQty,
		Samples:       samples,
	}, nil
}
