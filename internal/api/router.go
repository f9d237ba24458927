package api

import (
	"net/http"

	"OIerFinder/internal/config"
	"OIerFinder/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册全部业务路由
func RegisterRoutes(r *gin.Engine, admin config.AdminConfig, query *QueryHandler, luogu *LuoguHandler, sync *SyncHandler) {
	r.Use(RequestID(), Admin(admin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/query-oier", query.QueryOIer)

	if sync != nil {
		r.POST("/sync/stats", sync.SyncStatsHandler)
	}

	if luogu != nil {
		lg := r.Group("/luogu")
		{
			lg.GET("/prizes", luogu.GetPrizes)
			lg.GET("/to_query", luogu.ToQuery)
		}
	}
}
