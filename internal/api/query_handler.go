package api

import (
	"net/http"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/metrics"
	"OIerFinder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// QueryHandler 选手查询接口
type QueryHandler struct {
	queryService *service.QueryService
	logger       *logrus.Logger
}

// NewQueryHandler 创建 QueryHandler
func NewQueryHandler(svc *service.QueryService, logger *logrus.Logger) *QueryHandler {
	return &QueryHandler{queryService: svc, logger: logger}
}

// QueryOIer 按记录过滤器 + 选手过滤器查询选手
// POST /query-oier {"record_filters":[...],"oier_filters":{...},"limit":100}
func (h *QueryHandler) QueryOIer(c *gin.Context) {
	var req service.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveQuery(apperr.KindValidation.String())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	trusted := IsTrusted(c)
	result, err := h.queryService.Query(c.Request.Context(), req, trusted)
	if err != nil {
		metrics.ObserveQuery(apperr.KindOf(err).String())
		respondError(c, h.logger, err)
		return
	}
	metrics.ObserveQuery("ok")

	resp := gin.H{"data": result.Rows}
	if trusted {
		resp["usage"] = result.Usage
	}
	c.JSON(http.StatusOK, resp)
}
