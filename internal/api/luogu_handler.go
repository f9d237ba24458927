package api

import (
	"net/http"
	"strconv"

	"OIerFinder/internal/luogu"
	"OIerFinder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LuoguHandler 洛谷奖项接口
type LuoguHandler struct {
	luoguService *service.LuoguService
	logger       *logrus.Logger
}

// NewLuoguHandler 创建 LuoguHandler
func NewLuoguHandler(svc *service.LuoguService, logger *logrus.Logger) *LuoguHandler {
	return &LuoguHandler{luoguService: svc, logger: logger}
}

func boolQuery(c *gin.Context, key string) bool {
	v := c.Query(key)
	return v == "true" || v == "1"
}

// uid 解析 uid 参数，失败时已写入 400 响应
func (h *LuoguHandler) uid(c *gin.Context) (int64, bool) {
	raw := c.Query("uid")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'uid' query parameter"})
		return 0, false
	}
	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || uid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'uid' query parameter"})
		return 0, false
	}
	return uid, true
}

// GetPrizes 洛谷奖项列表
// GET /luogu/prizes?uid=1&sync=1&noi_only=1
func (h *LuoguHandler) GetPrizes(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	prizes, err := h.luoguService.Prizes(c.Request.Context(), uid, boolQuery(c, "sync"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if boolQuery(c, "noi_only") {
		prizes = luogu.NOIOnly(prizes)
	}
	luogu.SortForDisplay(prizes)
	c.JSON(http.StatusOK, prizes)
}

// ToQuery 洛谷奖项转查询请求体
// GET /luogu/to_query?uid=1&sync=1
func (h *LuoguHandler) ToQuery(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	payload, err := h.luoguService.ToQuery(c.Request.Context(), uid, boolQuery(c, "sync"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}
