package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
	"seller_ops_v1_202609/internal/service"
)

// MappingController 商品映射控制器
type MappingController struct {
	svc *service.MappingService
}

// NewMappingController 创建映射控制器
func NewMappingController(svc *service.MappingService) *MappingController {
	return &MappingController{svc: svc}
}

// ==================== CRUD ====================

// mappingRequest 映射写入请求
type mappingRequest struct {
	Marketplace         string `json:"marketplace"`
	ExternalProductID   string `json:"external_product_id"`
	ExternalProductName string `json:"external_product_name"`
	ExternalOptionID    string `json:"external_option_id"`
	ExternalOptionName  string `json:"external_option_name"`
	ProductID           int64  `json:"product_id"`
}

// Create 新建映射
// POST /api/mappings
func (c *MappingController) Create(ctx *gin.Context) {
	var req mappingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	mapping := &model.ProductMapping{
		Marketplace:         req.Marketplace,
		ExternalProductID:   req.ExternalProductID,
		ExternalProductName: req.ExternalProductName,
		ExternalOptionID:    req.ExternalOptionID,
		ExternalOptionName:  req.ExternalOptionName,
		ProductID:           req.ProductID,
	}
	if err := c.svc.CreateMapping(ctx.Request.Context(), mapping); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": mapping})
}

// List 映射列表
// GET /api/mappings?marketplace=openmarket&keyword=쌀통
func (c *MappingController) List(ctx *gin.Context) {
	filter := repository.MappingFilter{
		Marketplace: ctx.Query("marketplace"),
		Keyword:     ctx.Query("keyword"),
		ActiveOnly:  ctx.Query("active") == "true",
		Page:        intQuery(ctx, "page", 1),
		PageSize:    intQuery(ctx, "page_size", 20),
	}
	if id := ctx.Query("product_id"); id != "" {
		filter.ProductID = int64(intQuery(ctx, "product_id", 0))
	}

	mappings, total, err := c.svc.ListMappings(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": mappings},
	})
}

// GetByID 映射详情
// GET /api/mappings/:id
func (c *MappingController) GetByID(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	mapping, err := c.svc.GetMapping(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "映射不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": mapping})
}

// Update 更新映射
// PUT /api/mappings/:id
func (c *MappingController) Update(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req mappingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	mapping, err := c.svc.UpdateMapping(ctx.Request.Context(), id, &model.ProductMapping{
		ExternalProductID:   req.ExternalProductID,
		ExternalProductName: req.ExternalProductName,
		ExternalOptionID:    req.ExternalOptionID,
		ExternalOptionName:  req.ExternalOptionName,
		ProductID:           req.ProductID,
	})
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": mapping})
}

// Deactivate 停用映射
// DELETE /api/mappings/:id
func (c *MappingController) Deactivate(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.svc.DeactivateMapping(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "映射不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "映射已停用"})
}

// ==================== 解析辅助 ====================

// Find 用当前规则试解析（录入前调试用）
// POST /api/mappings/find
func (c *MappingController) Find(ctx *gin.Context) {
	var req struct {
		Marketplace      string `json:"marketplace" binding:"required"`
		ExternalOptionID string `json:"external_option_id"`
		ProductName      string `json:"product_name"`
		OptionName       string `json:"option_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	res, err := c.svc.Find(ctx.Request.Context(), service.ResolveQuery{
		Marketplace:      req.Marketplace,
		ExternalOptionID: req.ExternalOptionID,
		ProductName:      req.ProductName,
		OptionName:       req.OptionName,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": res})
}

// ResolveUnmatched 对历史未匹配订单行重跑解析
// POST /api/mappings/resolve-unmatched?marketplace=openmarket&limit=500
func (c *MappingController) ResolveUnmatched(ctx *gin.Context) {
	marketplace := ctx.Query("marketplace")
	if marketplace == "" {
		marketplace = model.MarketplaceOpenMarket
	}

	result, err := c.svc.ResolveUnmatched(ctx.Request.Context(), marketplace, intQuery(ctx, "limit", 500))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": result})
}
