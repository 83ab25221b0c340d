package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/internal/model"
	"seller_ops_v1_202609/internal/repository"
)

// ProductController 商品控制器
// 商品是纯主数据 CRUD，直接走仓库层
type ProductController struct {
	repo repository.ProductRepository
}

// NewProductController 创建商品控制器
func NewProductController(repo repository.ProductRepository) *ProductController {
	return &ProductController{repo: repo}
}

// List 商品列表
// GET /api/products?keyword=쌀통&category=주방
func (c *ProductController) List(ctx *gin.Context) {
	filter := repository.ProductFilter{
		Keyword:  ctx.Query("keyword"),
		Category: ctx.Query("category"),
		Page:     intQuery(ctx, "page", 1),
		PageSize: intQuery(ctx, "page_size", 20),
	}
	if s := ctx.Query("active"); s != "" {
		active := s == "true"
		filter.Active = &active
	}

	products, total, err := c.repo.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"total": total, "list": products},
	})
}

// GetByID 商品详情
// GET /api/products/:id
func (c *ProductController) GetByID(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	product, err := c.repo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": product})
}

// Create 新建商品
// POST /api/products
func (c *ProductController) Create(ctx *gin.Context) {
	var product model.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}
	if product.SKU == "" || product.Name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "sku 和 name 不能为空"})
		return
	}

	product.IsActive = true
	if err := c.repo.Create(ctx.Request.Context(), &product); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": product})
}

// Update 更新商品
// PUT /api/products/:id
func (c *ProductController) Update(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	product, err := c.repo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
		return
	}

	var update model.Product
	if err := ctx.ShouldBindJSON(&update); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	// SKU 是自然键不可改，其余字段覆盖
	if update.Name != "" {
		product.Name = update.Name
	}
	if update.Category != "" {
		product.Category = update.Category
	}
	if update.Barcode != "" {
		product.Barcode = update.Barcode
	}
	if update.CBM > 0 {
		product.CBM = update.CBM
	}
	if update.UnitsPerPallet > 0 {
		product.UnitsPerPallet = update.UnitsPerPallet
	}

	if err := c.repo.Update(ctx.Request.Context(), product); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": product})
}

// Delete 删除商品（软删除）
// DELETE /api/products/:id
func (c *ProductController) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.repo.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "商品已删除"})
}
