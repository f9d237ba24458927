package api

import (
	"crypto/subtle"

	"OIerFinder/internal/config"
	"OIerFinder/internal/utils/reqctx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxTrusted      = "trusted"
)

// RequestID 为每个请求分配ID（沿用上游传入的 X-Request-ID），写入响应头和 context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(reqctx.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Admin 校验可信调用方密钥，密钥未配置时所有请求都不可信
func Admin(cfg config.AdminConfig) gin.HandlerFunc {
	header := cfg.Header
	if header == "" {
		header = "X-Admin-Secret"
	}
	secret := []byte(cfg.Secret)
	return func(c *gin.Context) {
		given := c.GetHeader(header)
		trusted := len(secret) > 0 && given != "" &&
			subtle.ConstantTimeCompare([]byte(given), secret) == 1
		c.Set(ctxTrusted, trusted)
		c.Next()
	}
}

// IsTrusted 当前请求是否来自可信调用方
func IsTrusted(c *gin.Context) bool {
	return c.GetBool(ctxTrusted)
}
