package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"seller_ops_v1_202609/internal/config"
	"seller_ops_v1_202609/internal/service"
	"seller_ops_v1_202609/pkg/timewindow"
)

// ==================== SyncTask 定时同步任务 ====================

// SyncTask 滚动窗口的周期同步
// 订单走预算调度器逐单元执行，仓配/结算/店铺订单低频整段跑
type SyncTask struct {
	scheduler *service.BudgetScheduler
	syncSvc   *service.OrderSyncService
	cfg       config.SyncConfig
	log       *zap.SugaredLogger

	cron *cron.Cron
}

// NewSyncTask 创建定时同步任务
func NewSyncTask(
	scheduler *service.BudgetScheduler,
	syncSvc *service.OrderSyncService,
	cfg config.SyncConfig,
	log *zap.SugaredLogger,
) *SyncTask {
	return &SyncTask{
		scheduler: scheduler,
		syncSvc:   syncSvc,
		cfg:       cfg,
		log:       log,
		cron:      cron.New(cron.WithSeconds()), // 支持秒级控制
	}
}

// Start 注册并启动定时任务
func (t *SyncTask) Start() error {
	// 订单滚动同步（默认每 10 分钟）
	if _, err := t.cron.AddFunc(t.cfg.CronSpec, t.runOrderSync); err != nil {
		return err
	}

	// 仓配出货：每小时第 20 分
	if _, err := t.cron.AddFunc("0 20 * * * *", t.runRocketSync); err != nil {
		return err
	}

	// 智能店铺订单：每小时第 40 分
	if _, err := t.cron.AddFunc("0 40 * * * *", t.runStorefrontSync); err != nil {
		return err
	}

	// 结算：每天凌晨 4 点补前一天
	if _, err := t.cron.AddFunc("0 0 4 * * *", t.runSettlementSync); err != nil {
		return err
	}

	t.cron.Start()
	t.log.Infow("定时同步任务已启动", "order_spec", t.cfg.CronSpec)
	return nil
}

// Stop 停止调度并等在途任务结束
func (t *SyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("定时同步任务已停止")
}

// ==================== 各 job 实现 ====================

func (t *SyncTask) runOrderSync() {
	// 预算外再留一点硬超时兜底
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.CronBudget+30*time.Second)
	defer cancel()

	summary, err := t.scheduler.RunRolling(ctx, t.cfg.RollingDays, t.cfg.CronBudget)
	if err != nil {
		t.log.Errorw("订单滚动同步失败", "err", err)
		return
	}
	t.log.Infow("订单滚动同步完成",
		"run_id", summary.RunID,
		"completed", len(summary.Completed),
		"skipped", len(summary.SkippedCells),
		"elapsed_ms", summary.Elapsed.Milliseconds(),
	)
}

func (t *SyncTask) runRocketSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	from, to := t.rollingRange()
	result, err := t.syncSvc.SyncRocketRange(ctx, from, to)
	if err != nil {
		t.log.Errorw("仓配同步失败", "err", err)
		return
	}
	t.log.Infow("仓配同步完成",
		"inserted", result.Inserted, "updated", result.Updated,
		"skipped", result.Skipped, "errors", len(result.Errors))
}

func (t *SyncTask) runStorefrontSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	from, to := t.rollingRange()
	result, err := t.syncSvc.SyncStorefrontRange(ctx, from, to)
	if err != nil {
		t.log.Errorw("智能店铺同步失败", "err", err)
		return
	}
	t.log.Infow("智能店铺同步完成",
		"inserted", result.Inserted, "updated", result.Updated,
		"skipped", result.Skipped, "errors", len(result.Errors))
}

func (t *SyncTask) runSettlementSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// 结算有确认滞后，回看 3 天
	days := timewindow.RollingDays(time.Now(), 3)
	from := days[0].From
	to := days[len(days)-1].To

	result, err := t.syncSvc.SyncSettlementRange(ctx, from, to)
	if err != nil {
		t.log.Errorw("结算同步失败", "err", err)
		return
	}
	t.log.Infow("结算同步完成",
		"inserted", result.Inserted, "skipped", result.Skipped, "errors", len(result.Errors))
}

// rollingRange 滚动窗口的起止时刻
// 天数下限为 1，配置层也有同样的钳制，这里兜底防止空窗口越界
func (t *SyncTask) rollingRange() (time.Time, time.Time) {
	n := t.cfg.RollingDays
	if n < 1 {
		n = 1
	}
	days := timewindow.RollingDays(time.Now(), n)
	return days[0].From, days[len(days)-1].To
}
