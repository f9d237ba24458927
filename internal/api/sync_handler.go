package api

import (
	"net/http"

	"OIerFinder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 基数统计重算接口
type SyncHandler struct {
	statsSync *service.StatsSyncService
	logger    *logrus.Logger
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(statsSync *service.StatsSyncService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{statsSync: statsSync, logger: logger}
}

// SyncStatsHandler 立即重算基数统计，仅可信调用方可用
// @Summary 重算基数统计
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /sync/stats [post]
func (h *SyncHandler) SyncStatsHandler(c *gin.Context) {
	if !IsTrusted(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	table, err := h.statsSync.Run(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "基数统计已更新",
		"min_year": table.MinYear,
		"max_year": table.MaxYear,
		"buckets":  table.Buckets(),
	})
}
