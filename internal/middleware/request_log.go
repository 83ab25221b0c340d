package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ==================== 请求日志中间件 ====================

// RequestLog 结构化请求日志
func RequestLog(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Infow("http 请求",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// ==================== 操作人透传 ====================

const operatorHeader = "X-Operator"

// OperatorKey gin 上下文里的操作人键
const OperatorKey = "operator"

// Operator 从请求头取操作人名（内网门户由前端带上登录名）
// 库存流水等需要记录操作人的写操作从这里取
func Operator(c *gin.Context) string {
	if v, ok := c.Get(OperatorKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// OperatorContext 操作人上下文中间件
func OperatorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if op := c.GetHeader(operatorHeader); op != "" {
			c.Set(OperatorKey, op)
		}
		c.Next()
	}
}
