package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202609/pkg/timewindow"
)

// ==================== 工具函数 ====================

// parseID 解析路径里的数字 ID，失败时已写响应
func parseID(ctx *gin.Context, key string) int64 {
	id, err := strconv.ParseInt(ctx.Param(key), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的 ID"})
		return 0
	}
	return id
}

// parseDate 解析 yyyy-MM-dd（KST），失败时已写响应
func parseDate(ctx *gin.Context, s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", s, timewindow.KST)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "日期格式应为 yyyy-MM-dd"})
		return time.Time{}, false
	}
	return t, true
}

// parseRange 解析 from/to 查询参数，to 缺省为 from 当日
// 返回的 to 为右开端点（次日零点）
func parseRange(ctx *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseDate(ctx, ctx.Query("from"))
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	to := from
	if s := ctx.Query("to"); s != "" {
		if to, ok = parseDate(ctx, s); !ok {
			return time.Time{}, time.Time{}, false
		}
	}
	if to.Before(from) {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "to 不能早于 from"})
		return time.Time{}, time.Time{}, false
	}

	return from, to.Add(24 * time.Hour), true
}

// rangeRequest 范围同步的请求体
type rangeRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to"`
}

// parseRangeBody 解析请求体里的 from/to 日期，to 缺省为 from 当日
// 与 parseRange 同一约定：返回的 to 为右开端点（次日零点）
func parseRangeBody(ctx *gin.Context) (time.Time, time.Time, bool) {
	var req rangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "请求体需包含 from（yyyy-MM-dd）"})
		return time.Time{}, time.Time{}, false
	}

	from, ok := parseDate(ctx, req.From)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	to := from
	if req.To != "" {
		if to, ok = parseDate(ctx, req.To); !ok {
			return time.Time{}, time.Time{}, false
		}
	}
	if to.Before(from) {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "to 不能早于 from"})
		return time.Time{}, time.Time{}, false
	}

	return from, to.Add(24 * time.Hour), true
}

// intQuery 解析数字查询参数，缺省或非法用默认值
func intQuery(ctx *gin.Context, key string, def int) int {
	s := ctx.Query(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
