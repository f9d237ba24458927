package api

import (
	"OIerFinder/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError 统一错误响应：{error, details?, stack?}，细节只返回给可信调用方
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := apperr.HTTPStatus(err)
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString(ctxRequestID),
		"path":       c.FullPath(),
		"kind":       apperr.KindOf(err).String(),
	})
	if apperr.IsClient(err) {
		entry.Info("请求被拒绝")
	} else {
		entry.Error("请求处理失败")
	}

	body := gin.H{"error": apperr.Message(err)}
	if IsTrusted(c) {
		body["details"] = err.Error()
		if !apperr.IsClient(err) {
			body["stack"] = apperr.Stack(err)
		}
	}
	c.JSON(status, body)
}
