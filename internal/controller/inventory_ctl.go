package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/middleware"
	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/service"
)

// InventoryController 库存控制器
type InventoryController struct {
	svc *service.InventoryService
}

// NewInventoryController 创建库存控制器
func NewInventoryController(svc *service.InventoryService) *InventoryController {
	return &InventoryController{svc: svc}
}

// List 库存快照列表
// GET /api/inventory?location=warehouse
func (c *InventoryController) List(ctx *gin.Context) {
	list, total, err := c.svc.List(ctx.Request.Context(),
		ctx.Query("location"),
		intQuery(ctx, "page", 1),
		intQuery(ctx, "page_size", 50),
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

// GetByProduct 单商品各位置快照
// GET /api/inventory/products/:id
func (c *InventoryController) GetByProduct(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	list, err := c.svc.GetByProduct(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": list})
}

// Set 手工设置库存
// PUT /api/inventory
func (c *InventoryController) Set(ctx *gin.Context) {
	var req struct {
		ProductID    int64  `json:"product_id" binding:"required"`
		Location     string `json:"location" binding:"required"`
		PalletCount  int    `json:"pallet_count"`
		PerPalletQty int    `json:"per_pallet_qty"`
		LooseQty     int    `json:"loose_qty"`
		Note         string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	inv := &model.Inventory{
		ProductID:    req.ProductID,
		Location:     req.Location,
		PalletCount:  req.PalletCount,
		PerPalletQty: req.PerPalletQty,
		LooseQty:     req.LooseQty,
	}
	if err := c.svc.SetInventory(ctx.Request.Context(), inv, req.Note, middleware.Operator(ctx)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": inv})
}

// Adjust 盘点调整
// POST /api/inventory/adjust
func (c *InventoryController) Adjust(ctx *gin.Context) {
	var req struct {
		ProductID int64  `json:"product_id" binding:"required"`
		Location  string `json:"location" binding:"required"`
		Delta     int    `json:"delta" binding:"required"`
		Note      string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	err := c.svc.AdjustInventory(ctx.Request.Context(),
		req.ProductID, req.Location, req.Delta, req.Note, middleware.Operator(ctx))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "库存已调整"})
}

// Logs 商品库存流水
// GET /api/inventory/products/:id/logs
func (c *InventoryController) Logs(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	logs, err := c.svc.Logs(ctx.Request.Context(), id, intQuery(ctx, "limit", 100))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": logs})
}
