package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"seller_ops_v1_202609/internal/controller"
	"seller_ops_v1_202609/internal/middleware"
)

// Controllers 路由需要的全部控制器
type Controllers struct {
	Sync       *controller.SyncController
	Order      *controller.OrderController
	Mapping    *controller.MappingController
	Product    *controller.ProductController
	Inventory  *controller.InventoryController
	Purchase   *controller.PurchaseController
	Settlement *controller.SettlementController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers, log *zap.SugaredLogger) {
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.OperatorContext())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// sync 同步触发
		sync := api.Group("/sync")
		{
			// GET /api/sync/chunk?date=2026-01-30&status=ACCEPT
			sync.GET("/chunk",
				middleware.SyncRateLimit(middleware.SyncTypeChunk, 0),
				ctls.Sync.SyncChunk)
			// GET /api/sync/cron（手动触发滚动窗口，与定时任务同一入口）
			sync.GET("/cron",
				middleware.SyncRateLimit(middleware.SyncTypeCron, 0),
				ctls.Sync.SyncCron)
			// POST /api/sync/rocket {"from":"2026-01-29","to":"2026-01-31"}
			sync.POST("/rocket",
				middleware.SyncRateLimit(middleware.SyncTypeRocket, 0),
				ctls.Sync.SyncRocket)
			// POST /api/sync/revenue {"from":..,"to":..}
			sync.POST("/revenue",
				middleware.SyncRateLimit(middleware.SyncTypeRevenue, 0),
				ctls.Sync.SyncRevenue)
			// POST /api/sync/storefront {"from":..,"to":..}
			sync.POST("/storefront",
				middleware.SyncRateLimit(middleware.SyncTypeStorefront, 0),
				ctls.Sync.SyncStorefront)
			// GET /api/sync/status 各类型冷却状态
			sync.GET("/status", ctls.Sync.SyncStatus)
			// DELETE /api/sync/locks/:type 清除全局冷却（误触后解锁）
			sync.DELETE("/locks/:type", ctls.Sync.ResetSyncLock)
			// POST /api/sync/reconcile-channels?days=7
			sync.POST("/reconcile-channels", ctls.Sync.ReconcileChannels)
		}

		// orders 订单查询
		orders := api.Group("/orders")
		{
			orders.GET("", ctls.Order.List)
			// 固定路径在参数路径之前注册
			orders.GET("/unmatched", ctls.Order.Unmatched)
			orders.GET("/:id", ctls.Order.GetByID)
			orders.PATCH("/:id/status", ctls.Order.UpdateStatus)
		}

		// mappings 商品映射维护
		mappings := api.Group("/mappings")
		{
			mappings.GET("", ctls.Mapping.List)
			mappings.POST("", ctls.Mapping.Create)
			mappings.POST("/find", ctls.Mapping.Find)
			mappings.POST("/resolve-unmatched", ctls.Mapping.ResolveUnmatched)
			mappings.GET("/:id", ctls.Mapping.GetByID)
			mappings.PUT("/:id", ctls.Mapping.Update)
			mappings.DELETE("/:id", ctls.Mapping.Deactivate)
		}

		// products 商品主数据
		products := api.Group("/products")
		{
			products.GET("", ctls.Product.List)
			products.POST("", ctls.Product.Create)
			products.GET("/:id", ctls.Product.GetByID)
			products.PUT("/:id", ctls.Product.Update)
			products.DELETE("/:id", ctls.Product.Delete)
		}

		// inventory 库存
		inventory := api.Group("/inventory")
		{
			inventory.GET("", ctls.Inventory.List)
			inventory.PUT("", ctls.Inventory.Set)
			inventory.POST("/adjust", ctls.Inventory.Adjust)
			inventory.GET("/products/:id", ctls.Inventory.GetByProduct)
			inventory.GET("/products/:id/logs", ctls.Inventory.Logs)
		}

		// factories / purchases 采购链路
		factories := api.Group("/factories")
		{
			factories.GET("", ctls.Purchase.ListFactories)
			factories.POST("", ctls.Purchase.CreateFactory)
			factories.PUT("/:id", ctls.Purchase.UpdateFactory)
			factories.DELETE("/:id", ctls.Purchase.DeleteFactory)
		}
		purchases := api.Group("/purchases")
		{
			purchases.GET("", ctls.Purchase.ListPurchases)
			purchases.POST("", ctls.Purchase.CreatePurchase)
			purchases.GET("/:id", ctls.Purchase.GetPurchase)
			purchases.PATCH("/:id/status", ctls.Purchase.UpdatePurchaseStatus)
			purchases.POST("/:id/receive", ctls.Purchase.ReceiveInbound)
			purchases.GET("/:id/inbounds", ctls.Purchase.ListInbounds)
		}

		// settlements 结算查询
		settlements := api.Group("/settlements")
		{
			settlements.GET("", ctls.Settlement.List)
			settlements.GET("/stats", ctls.Settlement.Stats)
		}
	}
}
