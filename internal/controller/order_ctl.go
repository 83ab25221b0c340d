package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/repository"
	"seller_ops_v1_202609/internal/service"
	"seller_ops_v1_202609/pkg/timewindow"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// ==================== 订单列表与详情 ====================

// List 订单列表
// GET /api/orders?channel=openmarket&status=ACCEPT&keyword=김
func (c *OrderController) List(ctx *gin.Context) {
	filter := repository.OrderFilter{
		Channel:  ctx.Query("channel"),
		Status:   ctx.Query("status"),
		Keyword:  ctx.Query("keyword"),
		Page:     intQuery(ctx, "page", 1),
		PageSize: intQuery(ctx, "page_size", 20),
	}
	if s := ctx.Query("start_date"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, timewindow.KST); err == nil {
			filter.StartDate = &t
		}
	}
	if s := ctx.Query("end_date"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, timewindow.KST); err == nil {
			end := t.Add(24 * time.Hour)
			filter.EndDate = &end
		}
	}

	orders, total, err := c.svc.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": orders},
	})
}

// GetByID 订单详情
// GET /api/orders/:id
func (c *OrderController) GetByID(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	order, err := c.svc.GetDetail(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "订单不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": order})
}

// UpdateStatus 人工修改订单状态
// PATCH /api/orders/:id/status
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	if err := c.svc.UpdateStatus(ctx.Request.Context(), id, req.Status); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "状态已更新"})
}

// ==================== 未匹配报表 ====================

// Unmatched 未匹配订单行报表
// GET /api/orders/unmatched?days=30&samples=50
func (c *OrderController) Unmatched(ctx *gin.Context) {
	days := intQuery(ctx, "days", 30)
	since := time.Now().In(timewindow.KST).AddDate(0, 0, -days)

	report, err := c.svc.UnmatchedReport(ctx.Request.Context(), since, intQuery(ctx, "samples", 50))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": report})
}
