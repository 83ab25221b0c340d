package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	"seller_ops_v1_202609/pkg/openmarket"
	"seller_ops_v1_202609/pkg/storefront"
	"seller_ops_v1_202609/pkg/timewindow"
)

// 单窗口翻页兜底上限，防止坏 token 造成死循环
const maxPagesPerWindow = 50

// ==================== 客户端接口 ====================

// OpenMarketAPI 开放平台抓取原语
type OpenMarketAPI interface {
	OrdersPage(ctx context.Context, w timewindow.Window, status, nextToken string) (*openmarket.OrdersPage, error)
	RocketPage(ctx context.Context, w timewindow.Window, nextToken string) (*openmarket.RocketPage, error)
	SettlementsPage(ctx context.Context, w timewindow.Window, nextToken string) (*openmarket.SettlementsPage, error)
}

// StorefrontAPI 智能店铺抓取原语
type StorefrontAPI interface {
	ProductOrdersPage(ctx context.Context, w timewindow.Window, page int) (*storefront.ProductOrdersPage, error)
}

// ClientProvider 按账号提供客户端
// 进程级依赖，启动时显式注入，不走环境单例
type ClientProvider interface {
	OpenMarket(account *model.MarketAccount) OpenMarketAPI
	Storefront(account *model.MarketAccount) StorefrontAPI
}

// ==================== OrderSyncService 订单同步服务 ====================

// OrderSyncService 按渠道抓取原始记录并落库
type OrderSyncService struct {
	accountRepo    repository.MarketAccountRepository
	settlementRepo repository.SettlementRepository
	orderRepo      repository.OrderRepository
	syncLogRepo    repository.ApiSyncLogRepository

	resolver   *ResolverService
	reconciler *OrderReconciler
	clients    ClientProvider
	log        *zap.SugaredLogger
}

// NewOrderSyncService 创建订单同步服务
func NewOrderSyncService(
	accountRepo repository.MarketAccountRepository,
	settlementRepo repository.SettlementRepository,
	orderRepo repository.OrderRepository,
	syncLogRepo repository.ApiSyncLogRepository,
	resolver *ResolverService,
	reconciler *OrderReconciler,
	clients ClientProvider,
	log *zap.SugaredLogger,
) *OrderSyncService {
	return &OrderSyncService{
		accountRepo:    accountRepo,
		settlementRepo: settlementRepo,
		orderRepo:      orderRepo,
		syncLogRepo:    syncLogRepo,
		resolver:       resolver,
		reconciler:     reconciler,
		clients:        clients,
		log:            log,
	}
}

// ==================== 自发货订单（日 × 状态单元） ====================

// SyncOrderCell 同步单账号、单日、单状态
// 调度器以此为最小执行单元
func (s *OrderSyncService) SyncOrderCell(ctx context.Context, account *model.MarketAccount, w timewindow.Window, status string) (*ReconcileResult, error) {
	api := s.clients.OpenMarket(account)
	result := &ReconcileResult{}

	token := ""
	for page := 0; page < maxPagesPerWindow; page++ {
		pageData, err := api.OrdersPage(ctx, w, status, token)
		if err != nil {
			// 抓取失败整窗浮出，由调度器决定跳过还是中止
			return result, fmt.Errorf("抓取订单页失败: %w", err)
		}

		batch := make([]OrderWithItems, 0, len(pageData.Orders))
		for i := range pageData.Orders {
			batch = append(batch, s.convertOrder(ctx, account, &pageData.Orders[i]))
		}
		result.Merge(s.reconciler.Reconcile(ctx, model.ChannelOpenMarket, KeyByOrderID, batch))

		if pageData.NextToken == "" {
			break
		}
		token = pageData.NextToken
	}

	return result, nil
}

// convertOrder 原始订单 → 内部模型，行内同步解析商品
func (s *OrderSyncService) convertOrder(ctx context.Context, account *model.MarketAccount, raw *openmarket.RawOrder) OrderWithItems {
	order := model.Order{
		AccountID:          account.ID,
		Channel:            model.ChannelOpenMarket,
		MarketplaceOrderID: strconv.FormatInt(raw.OrderID, 10),
		ShipmentBoxID:      strconv.FormatInt(raw.ShipmentBoxID, 10),
		Status:             raw.Status,
		OrdererName:        raw.Orderer.Name,
		OrdererPhone:       raw.Orderer.Phone,
		ReceiverName:       raw.Receiver.Name,
		ReceiverPhone:      raw.Receiver.Phone,
		ReceiverAddress: datatypes.JSONMap{
			"addr1":     raw.Receiver.Addr1,
			"addr2":     raw.Receiver.Addr2,
			"post_code": raw.Receiver.PostCode,
		},
	}
	if t, err := raw.OrderedTime(); err == nil {
		order.OrderedAt = &t
	}
	if t, ok := raw.PaidTime(); ok {
		order.PaidAt = &t
	}
	if rawData, err := json.Marshal(raw); err == nil {
		order.RawData = datatypes.JSON(rawData)
	}

	items := make([]model.OrderItem, 0, len(raw.OrderItems))
	for _, it := range raw.OrderItems {
		items = append(items, s.convertOrderItem(ctx, model.MarketplaceOpenMarket, strconv.FormatInt(it.VendorItemID, 10), it))
	}

	return OrderWithItems{Order: order, Items: items}
}

func (s *OrderSyncService) convertOrderItem(ctx context.Context, marketplace, optionID string, it openmarket.RawOrderItem) model.OrderItem {
	item := model.OrderItem{
		ExternalOptionID: optionID,
		ProductName:      it.SellerProductName,
		OptionName:       it.SellerProductItemName,
		ExternalSKU:      it.ExternalVendorSkuCode,
		Quantity:         it.ShippingCount,
		UnitPrice:        it.OrderPrice,
		SalePrice:        it.SalesPrice,
		DiscountPrice:    it.DiscountPrice,
	}

	res, err := s.resolver.Resolve(ctx, ResolveQuery{
		Marketplace:      marketplace,
		ExternalOptionID: item.ExternalOptionID,
		ProductName:      item.ProductName,
		OptionName:       item.OptionName,
	})
	if err != nil {
		s.log.Warnw("商品解析查询失败", "option_id", item.ExternalOptionID, "err", err)
		return item
	}
	if res.Matched {
		item.ProductID = &res.ProductID
	}
	return item
}

// ==================== 仓配出货（范围同步） ====================

// SyncRocketRange 按半开区间 [from, to) 同步仓配出货箱
// 该端点 from==to 返回空：逐日放宽一天抓取，再按记录自身时间过滤回当日
func (s *OrderSyncService) SyncRocketRange(ctx context.Context, from, to time.Time) (*ReconcileResult, error) {
	accounts, err := s.accountRepo.ListActive(ctx, model.MarketplaceOpenMarket)
	if err != nil {
		return nil, fmt.Errorf("获取账号失败: %w", err)
	}

	started := time.Now()
	result := &ReconcileResult{}

	for i := range accounts {
		account := &accounts[i]
		api := s.clients.OpenMarket(account)

		for _, day := range timewindow.SplitRange(from, to) {
			widened := day.Widen(24 * time.Hour)

			token := ""
			for page := 0; page < maxPagesPerWindow; page++ {
				pageData, err := api.RocketPage(ctx, widened, token)
				if err != nil {
					result.Errors = append(result.Errors,
						fmt.Sprintf("账号 %s 日 %s 抓取失败: %v", account.Name, day.From.Format("2006-01-02"), err))
					break
				}

				batch := make([]OrderWithItems, 0, len(pageData.Shipments))
				for j := range pageData.Shipments {
					raw := &pageData.Shipments[j]
					created, err := raw.CreatedTime()
					if err != nil || !day.Contains(created) {
						// 放宽窗口带进来的次日记录在此过滤，零泄漏
						continue
					}
					batch = append(batch, s.convertRocketShipment(ctx, account, raw, created))
				}
				result.Merge(s.reconciler.Reconcile(ctx, model.ChannelRocket, KeyByBoxID, batch))

				if pageData.NextToken == "" {
					break
				}
				token = pageData.NextToken
			}
		}
	}

	s.writeSyncLog(ctx, model.ChannelRocket, model.SyncTypeRocket, from, to, result, started)
	return result, nil
}

func (s *OrderSyncService) convertRocketShipment(ctx context.Context, account *model.MarketAccount, raw *openmarket.RawRocketShipment, created time.Time) OrderWithItems {
	order := model.Order{
		AccountID:          account.ID,
		Channel:            model.ChannelRocket,
		MarketplaceOrderID: strconv.FormatInt(raw.OrderID, 10),
		ShipmentBoxID:      strconv.FormatInt(raw.ShipmentBoxID, 10),
		Status:             raw.Status,
		OrdererName:        raw.OrdererName,
		ReceiverName:       raw.ReceiverName,
		OrderedAt:          &created,
	}
	if rawData, err := json.Marshal(raw); err == nil {
		order.RawData = datatypes.JSON(rawData)
	}

	items := make([]model.OrderItem, 0, len(raw.Items))
	for _, it := range raw.Items {
		items = append(items, s.convertOrderItem(ctx, model.MarketplaceOpenMarket, strconv.FormatInt(it.VendorItemID, 10), it))
	}
	return OrderWithItems{Order: order, Items: items}
}

// ==================== 智能店铺订单（范围同步） ====================

// SyncStorefrontRange 按半开区间 [from, to) 同步智能店铺商品订单
func (s *OrderSyncService) SyncStorefrontRange(ctx context.Context, from, to time.Time) (*ReconcileResult, error) {
	accounts, err := s.accountRepo.ListActive(ctx, model.MarketplaceStorefront)
	if err != nil {
		return nil, fmt.Errorf("获取账号失败: %w", err)
	}

	started := time.Now()
	result := &ReconcileResult{}

	for i := range accounts {
		account := &accounts[i]
		api := s.clients.Storefront(account)

		for _, day := range timewindow.SplitRange(from, to) {
			for page := 1; page <= maxPagesPerWindow; page++ {
				pageData, err := api.ProductOrdersPage(ctx, day, page)
				if err != nil {
					result.Errors = append(result.Errors,
						fmt.Sprintf("账号 %s 日 %s 抓取失败: %v", account.Name, day.From.Format("2006-01-02"), err))
					break
				}

				batch := make([]OrderWithItems, 0, len(pageData.Orders))
				for j := range pageData.Orders {
					raw := &pageData.Orders[j]
					paid, err := raw.PaymentTime()
					if err != nil || !day.Contains(paid) {
						continue
					}
					batch = append(batch, s.convertProductOrder(ctx, account, raw, paid))
				}
				result.Merge(s.reconciler.Reconcile(ctx, model.ChannelStorefront, KeyByOrderID, batch))

				if !pageData.More {
					break
				}
			}
		}
	}

	s.writeSyncLog(ctx, model.ChannelStorefront, model.SyncTypeStorefront, from, to, result, started)
	return result, nil
}

// convertProductOrder 智能店铺一条 productOrder 对应一行订单（行级标识即自然键）
func (s *OrderSyncService) convertProductOrder(ctx context.Context, account *model.MarketAccount, raw *storefront.RawProductOrder, paid time.Time) OrderWithItems {
	order := model.Order{
		AccountID:          account.ID,
		Channel:            model.ChannelStorefront,
		MarketplaceOrderID: raw.ProductOrderID,
		Status:             raw.Status,
		OrdererName:        raw.OrdererName,
		OrdererPhone:       raw.OrdererTel,
		ReceiverName:       raw.ReceiverName,
		ReceiverPhone:      raw.ReceiverTel,
		ReceiverAddress: datatypes.JSONMap{
			"addr1":     raw.BaseAddress,
			"addr2":     raw.DetailAddress,
			"post_code": raw.ZipCode,
		},
		OrderedAt: &paid,
		PaidAt:    &paid,
	}
	if rawData, err := json.Marshal(raw); err == nil {
		order.RawData = datatypes.JSON(rawData)
	}

	item := model.OrderItem{
		ExternalOptionID: raw.OptionManageCode,
		ProductName:      raw.ProductName,
		OptionName:       raw.ProductOption,
		ExternalSKU:      raw.SellerCustomCode,
		Quantity:         raw.Quantity,
		UnitPrice:        raw.UnitPrice,
		SalePrice:        raw.TotalPaymentAmount,
		DiscountPrice:    raw.ProductDiscount,
	}
	res, err := s.resolver.Resolve(ctx, ResolveQuery{
		Marketplace:      model.MarketplaceStorefront,
		ExternalOptionID: item.ExternalOptionID,
		ProductName:      item.ProductName,
		OptionName:       item.OptionName,
	})
	if err == nil && res.Matched {
		item.ProductID = &res.ProductID
	}

	return OrderWithItems{Order: order, Items: []model.OrderItem{item}}
}

// ==================== 结算（范围同步） ====================

// SyncSettlementRange 按半开区间 [from, to) 同步结算记录
// 同为 from==to 返回空的端点，逐日放宽再过滤
func (s *OrderSyncService) SyncSettlementRange(ctx context.Context, from, to time.Time) (*ReconcileResult, error) {
	accounts, err := s.accountRepo.ListActive(ctx, model.MarketplaceOpenMarket)
	if err != nil {
		return nil, fmt.Errorf("获取账号失败: %w", err)
	}

	started := time.Now()
	result := &ReconcileResult{}

	for i := range accounts {
		account := &accounts[i]
		api := s.clients.OpenMarket(account)

		for _, day := range timewindow.SplitRange(from, to) {
			widened := day.Widen(24 * time.Hour)

			token := ""
			for page := 0; page < maxPagesPerWindow; page++ {
				pageData, err := api.SettlementsPage(ctx, widened, token)
				if err != nil {
					result.Errors = append(result.Errors,
						fmt.Sprintf("账号 %s 日 %s 结算抓取失败: %v", account.Name, day.From.Format("2006-01-02"), err))
					break
				}

				s.upsertSettlements(ctx, account, day, pageData.Settlements, result)

				if pageData.NextToken == "" {
					break
				}
				token = pageData.NextToken
			}
		}
	}

	s.writeSyncLog(ctx, model.ChannelOpenMarket, model.SyncTypeSettlement, from, to, result, started)
	return result, nil
}

// upsertSettlements 结算批落库，自然键 (订单, 选项, 类型, 日期)
func (s *OrderSyncService) upsertSettlements(ctx context.Context, account *model.MarketAccount, day timewindow.Window, raws []openmarket.RawSettlement, result *ReconcileResult) {
	type keyed struct {
		raw  openmarket.RawSettlement
		sale time.Time
	}

	settlementKey := func(orderID, optionID, saleType string, sale time.Time) string {
		return orderID + ":" + optionID + ":" + saleType + ":" + sale.Format("2006-01-02")
	}

	// 批内去重 + 窗口过滤
	index := make(map[string]keyed)
	var orderIDs []string
	for _, raw := range raws {
		sale, err := raw.SaleTime()
		if err != nil || !day.Contains(sale) {
			continue
		}
		orderID := strconv.FormatInt(raw.OrderID, 10)
		k := settlementKey(orderID, strconv.FormatInt(raw.VendorItemID, 10), raw.SaleType, sale)
		if _, ok := index[k]; !ok {
			orderIDs = append(orderIDs, orderID)
		}
		index[k] = keyed{raw: raw, sale: sale}
	}
	if len(index) == 0 {
		return
	}

	existingRows, err := s.settlementRepo.ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("批量查询已有结算失败: %v", err))
		return
	}
	existing := make(map[string]*model.Settlement, len(existingRows))
	for i := range existingRows {
		row := &existingRows[i]
		existing[settlementKey(row.MarketplaceOrderID, row.ExternalOptionID, row.SaleType, row.SaleDate)] = row
	}

	now := time.Now()
	for k, entry := range index {
		if _, ok := existing[k]; ok {
			// 结算记录不可变，已存在即跳过
			result.Skipped++
			continue
		}

		raw := entry.raw
		settlement := model.Settlement{
			AccountID:          account.ID,
			MarketplaceOrderID: strconv.FormatInt(raw.OrderID, 10),
			ExternalOptionID:   strconv.FormatInt(raw.VendorItemID, 10),
			SaleType:           raw.SaleType,
			SaleDate:           entry.sale,
			ProductName:        raw.SellerProductName,
			OptionName:         raw.VendorItemName,
			Quantity:           raw.Quantity,
			SettlementAmount:   raw.SettlementAmount,
			ServiceFee:         raw.ServiceFee,
			SyncedAt:           &now,
		}
		if rawData, err := json.Marshal(raw); err == nil {
			settlement.RawData = datatypes.JSON(rawData)
		}

		res, err := s.resolver.Resolve(ctx, ResolveQuery{
			Marketplace:      model.MarketplaceOpenMarket,
			ExternalOptionID: settlement.ExternalOptionID,
			ProductName:      settlement.ProductName,
			OptionName:       settlement.OptionName,
		})
		if err == nil && res.Matched {
			settlement.ProductID = &res.ProductID
		}

		if err := s.settlementRepo.Create(ctx, &settlement); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("结算 %s 写入失败: %v", settlement.MarketplaceOrderID, err))
			continue
		}
		result.Inserted++
	}
}

// ==================== 渠道错分巡检 ====================

// MisrouteReport 错分巡检结果
type MisrouteReport struct {
	Scanned   int      `json:"scanned"`
	Suspected int      `json:"suspected"`
	OrderIDs  []string `json:"order_ids"`
}

// ScanMisroutedOrders 自发货表里找疑似仓配记录
// 只检测并上报，不自作主张搬数据：上游意图无法从数据反推
func (s *OrderSyncService) ScanMisroutedOrders(ctx context.Context, since time.Time, limit int) (*MisrouteReport, error) {
	if limit <= 0 {
		limit = 1000
	}
	orders, err := s.orderRepo.ListForMisrouteCheck(ctx, model.ChannelOpenMarket, since, limit)
	if err != nil {
		return nil, fmt.Errorf("巡检查询失败: %w", err)
	}

	report := &MisrouteReport{Scanned: len(orders)}
	for i := range orders {
		if orders[i].SuspectMisrouted() {
			report.Suspected++
			report.OrderIDs = append(report.OrderIDs, orders[i].MarketplaceOrderID)
		}
	}

	if report.Suspected > 0 {
		s.log.Warnw("发现疑似渠道错分订单", "count", report.Suspected)
	}
	return report, nil
}

// ==================== 审计 ====================

// writeSyncLog 每次运行 × 渠道落一行审计
func (s *OrderSyncService) writeSyncLog(ctx context.Context, channel, syncType string, from, to time.Time, result *ReconcileResult, started time.Time) {
	entry := &model.ApiSyncLog{
		RunID:         uuid.NewString(),
		Channel:       channel,
		SyncType:      syncType,
		WindowFrom:    &from,
		WindowTo:      &to,
		InsertedCount: result.Inserted,
		UpdatedCount:  result.Updated,
		SkippedCount:  result.Skipped,
		ErrorCount:    len(result.Errors),
		ErrorSummary:  result.ErrorSummary(),
		DurationMs:    time.Since(started).Milliseconds(),
	}
	if err := s.syncLogRepo.Create(ctx, entry); err != nil {
		// 审计失败只记日志，不影响同步结果
		s.log.Errorw("写入同步审计失败", "err", err)
	}
}
