package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/config"
	"seller_ops_v1_202609/internal/middleware"
	"seller_ops_v1_202609/internal/service"
	"seller_ops_v1_202609/pkg/timewindow"
)

// SyncController 同步控制器
type SyncController struct {
	scheduler *service.BudgetScheduler
	syncSvc   *service.OrderSyncService
	cfg       config.SyncConfig
}

// NewSyncController 创建同步控制器
func NewSyncController(scheduler *service.BudgetScheduler, syncSvc *service.OrderSyncService, cfg config.SyncConfig) *SyncController {
	return &SyncController{scheduler: scheduler, syncSvc: syncSvc, cfg: cfg}
}

// ==================== Handler 实现 ====================

// SyncChunk 手动同步指定日
// GET /api/sync/chunk?date=2026-01-30&status=ACCEPT
func (c *SyncController) SyncChunk(ctx *gin.Context) {
	date, ok := parseDate(ctx, ctx.Query("date"))
	if !ok {
		return
	}
	status := ctx.Query("status")

	summary, err := c.scheduler.RunDay(ctx.Request.Context(), date, status, c.cfg.ChunkBudget)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "指定日同步完成",
		"data":    summaryPayload(summary),
	})
}

// SyncCron 手动触发滚动窗口同步（与 cron 同一入口）
// GET /api/sync/cron
func (c *SyncController) SyncCron(ctx *gin.Context) {
	summary, err := c.scheduler.RunRolling(ctx.Request.Context(), c.cfg.RollingDays, c.cfg.CronBudget)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "滚动窗口同步完成",
		"data":    summaryPayload(summary),
	})
}

// SyncRocket 手动同步仓配出货
// POST /api/sync/rocket {"from":"2026-01-29","to":"2026-01-31"}
func (c *SyncController) SyncRocket(ctx *gin.Context) {
	from, to, ok := parseRangeBody(ctx)
	if !ok {
		return
	}

	result, err := c.syncSvc.SyncRocketRange(ctx.Request.Context(), from, to)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "仓配同步完成",
		"data":    resultPayload(result),
	})
}

// SyncRevenue 手动同步结算
// POST /api/sync/revenue {"from":"2026-01-29","to":"2026-01-31"}
func (c *SyncController) SyncRevenue(ctx *gin.Context) {
	from, to, ok := parseRangeBody(ctx)
	if !ok {
		return
	}

	result, err := c.syncSvc.SyncSettlementRange(ctx.Request.Context(), from, to)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "结算同步完成",
		"data":    resultPayload(result),
	})
}

// SyncStorefront 手动同步智能店铺订单
// POST /api/sync/storefront {"from":"2026-01-29","to":"2026-01-31"}
func (c *SyncController) SyncStorefront(ctx *gin.Context) {
	from, to, ok := parseRangeBody(ctx)
	if !ok {
		return
	}

	result, err := c.syncSvc.SyncStorefrontRange(ctx.Request.Context(), from, to)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "智能店铺同步完成",
		"data":    resultPayload(result),
	})
}

// ReconcileChannels 渠道错分巡检
// POST /api/sync/reconcile-channels?days=7
func (c *SyncController) ReconcileChannels(ctx *gin.Context) {
	days := intQuery(ctx, "days", 7)
	since := time.Now().In(timewindow.KST).AddDate(0, 0, -days)

	report, err := c.syncSvc.ScanMisroutedOrders(ctx.Request.Context(), since, 2000)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "渠道巡检完成",
		"data":    report,
	})
}

// ==================== 冷却管理 ====================

var syncTypes = []middleware.SyncType{
	middleware.SyncTypeChunk,
	middleware.SyncTypeCron,
	middleware.SyncTypeRocket,
	middleware.SyncTypeRevenue,
	middleware.SyncTypeStorefront,
}

// SyncStatus 各同步类型的全局冷却状态
// GET /api/sync/status
func (c *SyncController) SyncStatus(ctx *gin.Context) {
	limiter := middleware.GetLimiter()

	status := make([]gin.H, 0, len(syncTypes))
	for _, st := range syncTypes {
		// 只读检查，不消耗冷却
		res := limiter.CheckOnly(middleware.GlobalSyncKey(st), middleware.GetInterval(st))
		status = append(status, gin.H{
			"sync_type":   st,
			"allowed":     res.Allowed,
			"retry_after": int(res.RetryAfter.Seconds()),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": status})
}

// ResetSyncLock 清除某同步类型的全局冷却
// DELETE /api/sync/locks/:type（误触限流后解锁用）
func (c *SyncController) ResetSyncLock(ctx *gin.Context) {
	st := middleware.SyncType(ctx.Param("type"))
	if _, ok := middleware.DefaultIntervals[st]; !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "未知的同步类型: " + string(st)})
		return
	}

	middleware.GetLimiter().Reset(middleware.GlobalSyncKey(st))
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "冷却已清除", "data": gin.H{"sync_type": st}})
}

// ==================== 序列化辅助 ====================

func summaryPayload(s *service.RunSummary) gin.H {
	totals := s.Totals()
	skipped := make([]string, 0, len(s.SkippedCells))
	for _, cell := range s.SkippedCells {
		skipped = append(skipped, cell.String())
	}
	return gin.H{
		"run_id":        s.RunID,
		"completed":     len(s.Completed),
		"truncated":     s.Truncated(),
		"skipped_cells": skipped,
		"inserted":      totals.Inserted,
		"updated":       totals.Updated,
		"skipped":       totals.Skipped,
		"errors":        totals.Errors,
		"elapsed_ms":    s.Elapsed.Milliseconds(),
	}
}

func resultPayload(r *service.ReconcileResult) gin.H {
	return gin.H{
		"inserted": r.Inserted,
		"updated":  r.Updated,
		"skipped":  r.Skipped,
		"errors":   r.Errors,
	}
}
