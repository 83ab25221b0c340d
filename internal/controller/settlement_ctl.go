package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/repository"
)

// SettlementController 结算控制器
type SettlementController struct {
	repo repository.SettlementRepository
}

// NewSettlementController 创建结算控制器
func NewSettlementController(repo repository.SettlementRepository) *SettlementController {
	return &SettlementController{repo: repo}
}

// List 结算列表
// GET /api/settlements?from=2026-01-01&to=2026-01-31
func (c *SettlementController) List(ctx *gin.Context) {
	from, to, ok := parseRange(ctx)
	if !ok {
		return
	}

	list, total, err := c.repo.List(ctx.Request.Context(), from, to,
		intQuery(ctx, "page", 1), intQuery(ctx, "page_size", 50))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": list},
	})
}

// Stats 结算聚合（含未匹配单列）
// GET /api/settlements/stats?from=2026-01-01&to=2026-01-31
func (c *SettlementController) Stats(ctx *gin.Context) {
	from, to, ok := parseRange(ctx)
	if !ok {
		return
	}

	stats, err := c.repo.Stats(ctx.Request.Context(), from, to)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{
		"total_qty":      stats.TotalQty,
		"total_amount":   stats.TotalAmount,
		"unmatched_rows": stats.UnmatchedRows,
		"unmatched_qty":  stats.UnmatchedQty,
	}})
}
