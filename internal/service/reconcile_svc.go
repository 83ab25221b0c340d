package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
)

// ==================== 批次结果 ====================

// ReconcileResult 单批次落库结果
type ReconcileResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   []string
}

// Merge 累加另一批次的结果
func (r *ReconcileResult) Merge(other *ReconcileResult) {
	if other == nil {
		return
	}
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}

// ErrorSummary 审计表用的错误摘要
func (r *ReconcileResult) ErrorSummary() string {
	return strings.Join(r.Errors, "; ")
}

// ==================== 自然键模式 ====================

// NaturalKeyMode 订单自然键的取法
type NaturalKeyMode int

const (
	// KeyByOrderID 以 marketplace_order_id 为自然键（自发货、智能店铺）
	KeyByOrderID NaturalKeyMode = iota
	// KeyByBoxID 以 shipment_box_id 为自然键（仓配出货箱）
	KeyByBoxID
)

// OrderWithItems 一条待落库订单及其行
type OrderWithItems struct {
	Order model.Order
	Items []model.OrderItem
}

func (o *OrderWithItems) key(mode NaturalKeyMode) string {
	if mode == KeyByBoxID {
		return o.Order.ShipmentBoxID
	}
	return o.Order.MarketplaceOrderID
}

// ==================== OrderReconciler 去重与 upsert 引擎 ====================

// OrderReconciler 把一批原始订单按自然键落库
//
// 约定语义（刻意为之，不是疏忽）：
//   - 先批内去重（同键后到者覆盖先到者，update wins），再一次 IN 查询取已存在行
//   - 已存在且状态未变 → skipped，重复运行零净增（幂等）
//   - 已存在且状态变化 → 只动可变字段 + 原始报文整体覆盖，行集合删旧插新
//   - 新订单先插主行再插行批，行批失败不回滚主行（至少一次语义）
//   - 单条出错只记录不中断，整批绝不因一条坏记录失败
type OrderReconciler struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	log       *zap.SugaredLogger
}

// NewOrderReconciler 创建 upsert 引擎
func NewOrderReconciler(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	log *zap.SugaredLogger,
) *OrderReconciler {
	return &OrderReconciler{orderRepo: orderRepo, itemRepo: itemRepo, log: log}
}

// Reconcile 落库一个批次
func (rc *OrderReconciler) Reconcile(ctx context.Context, channel string, mode NaturalKeyMode, batch []OrderWithItems) *ReconcileResult {
	result := &ReconcileResult{}
	if len(batch) == 0 {
		return result
	}

	// 批内去重：重叠窗口会让同一订单在一页里出现两次
	deduped := dedupeBatch(batch, mode)

	// 批量取已存在行，避免逐条查询在预算内塌掉
	keys := make([]string, 0, len(deduped))
	for i := range deduped {
		keys = append(keys, deduped[i].key(mode))
	}
	existing, err := rc.lookupExisting(ctx, channel, mode, keys)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("批量查询已有订单失败: %v", err))
		return result
	}

	now := time.Now()
	for i := range deduped {
		rec := &deduped[i]
		if err := rc.upsertOne(ctx, rec, existing[rec.key(mode)], now, result); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("订单 %s: %v", rec.Order.MarketplaceOrderID, err))
		}
	}

	return result
}

// dedupeBatch 批内按自然键去重，后到者覆盖
func dedupeBatch(batch []OrderWithItems, mode NaturalKeyMode) []OrderWithItems {
	index := make(map[string]int, len(batch))
	deduped := make([]OrderWithItems, 0, len(batch))
	for i := range batch {
		k := batch[i].key(mode)
		if pos, ok := index[k]; ok {
			deduped[pos] = batch[i]
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, batch[i])
	}
	return deduped
}

func (rc *OrderReconciler) lookupExisting(ctx context.Context, channel string, mode NaturalKeyMode, keys []string) (map[string]*model.Order, error) {
	var rows []model.Order
	var err error
	if mode == KeyByBoxID {
		rows, err = rc.orderRepo.ListByBoxIDs(ctx, channel, keys)
	} else {
		rows, err = rc.orderRepo.ListByOrderIDs(ctx, channel, keys)
	}
	if err != nil {
		return nil, err
	}

	existing := make(map[string]*model.Order, len(rows))
	for i := range rows {
		k := rows[i].MarketplaceOrderID
		if mode == KeyByBoxID {
			k = rows[i].ShipmentBoxID
		}
		existing[k] = &rows[i]
	}
	return existing, nil
}

// upsertOne 单条 upsert，错误由调用方收集
func (rc *OrderReconciler) upsertOne(ctx context.Context, rec *OrderWithItems, found *model.Order, now time.Time, result *ReconcileResult) error {
	rec.Order.SyncedAt = &now

	if found == nil {
		if err := rc.orderRepo.Create(ctx, &rec.Order); err != nil {
			return err
		}
		// 行批失败不回滚主行：下轮重抓会补齐行集合
		if err := rc.itemRepo.ReplaceForOrder(ctx, rec.Order.ID, rec.Items); err != nil {
			result.Inserted++
			return fmt.Errorf("订单行写入失败: %w", err)
		}
		result.Inserted++
		return nil
	}

	if found.Status == rec.Order.Status {
		result.Skipped++
		return nil
	}

	// 只有状态迁移时才写：状态在平台侧单调前进，last-writer-wins 可接受
	rec.Order.ID = found.ID
	rec.Order.CreatedAt = found.CreatedAt
	if err := rc.orderRepo.Update(ctx, &rec.Order); err != nil {
		return err
	}
	if err := rc.itemRepo.ReplaceForOrder(ctx, found.ID, rec.Items); err != nil {
		result.Updated++
		return fmt.Errorf("订单行替换失败: %w", err)
	}
	result.Updated++
	return nil
}
