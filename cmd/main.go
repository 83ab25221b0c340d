package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"seller_ops_v1_202609/internal/config"
	"seller_ops_v1_202609/internal/controller"
	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	"seller_ops_v1_202609/internal/router"
	"seller_ops_v1_202609/internal/service"
	"seller_ops_v1_202609/internal/task"
	"seller_ops_v1_202609/pkg/database"
	applog "seller_ops_v1_202609/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zlog, err := applog.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()

	// 3. 初始化数据库
	db, err := initDatabase(cfg)
	if err != nil {
		zlog.Fatalw("初始化数据库失败", "err", err)
	}

	// 4. 初始化依赖
	deps := initDependencies(db, cfg, zlog)

	// 5. 播种账号（表空时从环境变量写入）
	seedAccounts(db, cfg, deps.Repos.Account, zlog)

	// 6. 启动定时任务
	if err := deps.SyncTask.Start(); err != nil {
		zlog.Fatalw("启动定时任务失败", "err", err)
	}
	defer deps.SyncTask.Stop()

	// 7. 初始化路由并启动
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r, deps.Controllers, zlog)

	startServer(r, cfg.App.Port, zlog)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	SyncTask    *task.SyncTask
}

// Repositories 仓库集合
type Repositories struct {
	Account    repository.MarketAccountRepository
	Order      repository.OrderRepository
	OrderItem  repository.OrderItemRepository
	Product    repository.ProductRepository
	Mapping    repository.ProductMappingRepository
	Settlement repository.SettlementRepository
	Inventory  repository.InventoryRepository
	SyncLog    repository.ApiSyncLogRepository
	Factory    repository.FactoryRepository
	Purchase   repository.PurchaseOrderRepository
	Inbound    repository.InboundShipmentRepository
}

// Services 服务集合
type Services struct {
	Resolver   *service.ResolverService
	Reconciler *service.OrderReconciler
	OrderSync  *service.OrderSyncService
	Scheduler  *service.BudgetScheduler
	Order      *service.OrderService
	Mapping    *service.MappingService
	Inventory  *service.InventoryService
	Purchase   *service.PurchaseService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.InitDB(
		database.Options{
			DSN:    cfg.Database.DSN(),
			LogSQL: cfg.Database.LogSQL,
		},
		// Account
		&model.MarketAccount{},
		// Order
		&model.Order{}, &model.OrderItem{},
		// Product
		&model.Product{}, &model.ProductMapping{},
		// Settlement
		&model.Settlement{},
		// Inventory
		&model.Inventory{}, &model.InventoryLog{},
		// Purchase
		&model.Factory{}, &model.PurchaseOrder{}, &model.InboundShipment{},
		// Audit
		&model.ApiSyncLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config, zlog *zap.SugaredLogger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Account:    repository.NewMarketAccountRepository(db),
		Order:      repository.NewOrderRepository(db),
		OrderItem:  repository.NewOrderItemRepository(db),
		Product:    repository.NewProductRepository(db),
		Mapping:    repository.NewProductMappingRepository(db),
		Settlement: repository.NewSettlementRepository(db),
		Inventory:  repository.NewInventoryRepository(db),
		SyncLog:    repository.NewApiSyncLogRepository(db),
		Factory:    repository.NewFactoryRepository(db),
		Purchase:   repository.NewPurchaseOrderRepository(db),
		Inbound:    repository.NewInboundShipmentRepository(db),
	}

	// -------- 业务服务 --------
	services := &Services{}
	services.Resolver = service.NewResolverService(repos.Mapping, repos.Product, zlog)
	services.Reconciler = service.NewOrderReconciler(repos.Order, repos.OrderItem, zlog)
	services.OrderSync = service.NewOrderSyncService(
		repos.Account, repos.Settlement, repos.Order, repos.SyncLog,
		services.Resolver, services.Reconciler,
		service.NewClientProvider(), zlog,
	)
	services.Scheduler = service.NewBudgetScheduler(
		repos.Account, repos.SyncLog,
		func(ctx context.Context, cell service.SyncCell) (*service.ReconcileResult, error) {
			account, err := repos.Account.GetByID(ctx, cell.AccountID)
			if err != nil {
				return nil, err
			}
			return services.OrderSync.SyncOrderCell(ctx, account, cell.Day, cell.Status)
		},
		zlog,
	)
	services.Order = service.NewOrderService(repos.Order, repos.OrderItem, zlog)
	services.Mapping = service.NewMappingService(repos.Mapping, repos.Product, repos.OrderItem, services.Resolver, zlog)
	services.Inventory = service.NewInventoryService(repos.Inventory, repos.Product, zlog)
	services.Purchase = service.NewPurchaseService(
		repos.Factory, repos.Purchase, repos.Inbound, repos.Inventory, repos.Product, zlog,
	)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Sync:       controller.NewSyncController(services.Scheduler, services.OrderSync, cfg.Sync),
		Order:      controller.NewOrderController(services.Order),
		Mapping:    controller.NewMappingController(services.Mapping),
		Product:    controller.NewProductController(repos.Product),
		Inventory:  controller.NewInventoryController(services.Inventory),
		Purchase:   controller.NewPurchaseController(services.Purchase),
		Settlement: controller.NewSettlementController(repos.Settlement),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		SyncTask:    task.NewSyncTask(services.Scheduler, services.OrderSync, cfg.Sync, zlog),
	}
}

// ==================== 账号播种 ====================

// seedAccounts 账号表为空时从环境变量写入初始账号
// 密钥不进代码库，靠部署环境注入
func seedAccounts(db *gorm.DB, cfg *config.Config, accountRepo repository.MarketAccountRepository, zlog *zap.SugaredLogger) {
	ctx := context.Background()

	count, err := accountRepo.Count(ctx)
	if err != nil || count > 0 {
		return
	}

	if cfg.Accounts.OpenMarketAccessKey != "" {
		account := &model.MarketAccount{
			Marketplace: model.MarketplaceOpenMarket,
			Name:        "openmarket-main",
			VendorID:    cfg.Accounts.OpenMarketVendorID,
			AccessKey:   cfg.Accounts.OpenMarketAccessKey,
			SecretKey:   cfg.Accounts.OpenMarketSecretKey,
			ProxyURL:    cfg.Accounts.ProxyURL,
			Status:      model.AccountStatusActive,
		}
		if err := accountRepo.Create(ctx, account); err != nil {
			zlog.Warnw("播种开放平台账号失败", "err", err)
		} else {
			zlog.Infow("已播种开放平台账号", "name", account.Name)
		}
	}

	if cfg.Accounts.StorefrontClientID != "" {
		account := &model.MarketAccount{
			Marketplace: model.MarketplaceStorefront,
			Name:        "storefront-main",
			AccessKey:   cfg.Accounts.StorefrontClientID,
			SecretKey:   cfg.Accounts.StorefrontClientSecret,
			ProxyURL:    cfg.Accounts.ProxyURL,
			Status:      model.AccountStatusActive,
		}
		if err := accountRepo.Create(ctx, account); err != nil {
			zlog.Warnw("播种智能店铺账号失败", "err", err)
		} else {
			zlog.Infow("已播种智能店铺账号", "name", account.Name)
		}
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(r *gin.Engine, port string, zlog *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		zlog.Infow("服务启动", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatalw("服务启动失败", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatalw("服务强制关闭", "err", err)
	}

	zlog.Info("服务已退出")
}
