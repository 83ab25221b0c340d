package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/middleware"
	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/service"
)

// PurchaseController 采购控制器
type PurchaseController struct {
	svc *service.PurchaseService
}

// NewPurchaseController 创建采购控制器
func NewPurchaseController(svc *service.PurchaseService) *PurchaseController {
	return &PurchaseController{svc: svc}
}

// ==================== 工厂 ====================

// ListFactories GET /api/factories
func (c *PurchaseController) ListFactories(ctx *gin.Context) {
	factories, err := c.svc.ListFactories(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": factories})
}

// CreateFactory POST /api/factories
func (c *PurchaseController) CreateFactory(ctx *gin.Context) {
	var factory model.Factory
	if err := ctx.ShouldBindJSON(&factory); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	if err := c.svc.CreateFactory(ctx.Request.Context(), &factory); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": factory})
}

// UpdateFactory PUT /api/factories/:id
func (c *PurchaseController) UpdateFactory(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var factory model.Factory
	if err := ctx.ShouldBindJSON(&factory); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	factory.ID = id

	if err := c.svc.UpdateFactory(ctx.Request.Context(), &factory); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "工厂不存在"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": factory})
}

// DeleteFactory DELETE /api/factories/:id
func (c *PurchaseController) DeleteFactory(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	if err := c.svc.DeleteFactory(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "工厂已删除"})
}

// ==================== 采购单 ====================

// ListPurchases GET /api/purchases?status=ordered
func (c *PurchaseController) ListPurchases(ctx *gin.Context) {
	list, total, err := c.svc.ListPurchaseOrders(ctx.Request.Context(),
		ctx.Query("status"),
		intQuery(ctx, "page", 1),
		intQuery(ctx, "page_size", 20),
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": list},
	})
}

// CreatePurchase POST /api/purchases
func (c *PurchaseController) CreatePurchase(ctx *gin.Context) {
	var po model.PurchaseOrder
	if err := ctx.ShouldBindJSON(&po); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	if err := c.svc.CreatePurchaseOrder(ctx.Request.Context(), &po); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": po})
}

// GetPurchase GET /api/purchases/:id
func (c *PurchaseController) GetPurchase(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	po, err := c.svc.GetPurchaseOrder(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "采购单不存在"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": po})
}

// UpdatePurchaseStatus PATCH /api/purchases/:id/status
func (c *PurchaseController) UpdatePurchaseStatus(ctx *gin.Context) {
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

	if err := c.svc.UpdatePurchaseStatus(ctx.Request.Context(), id, req.Status); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "状态已更新"})
}

// ==================== 入库收货 ====================

// ReceiveInbound POST /api/purchases/:id/receive
func (c *PurchaseController) ReceiveInbound(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req struct {
		ReceivedQty int    `json:"received_qty" binding:"required"`
		Note        string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	inbound, err := c.svc.ReceiveInbound(ctx.Request.Context(),
		id, req.ReceivedQty, middleware.Operator(ctx), req.Note)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": inbound})
}

// ListInbounds GET /api/purchases/:id/inbounds
func (c *PurchaseController) ListInbounds(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	list, err := c.svc.ListInbounds(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": list})
}
