package luogu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/config"
	"OIerFinder/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Client 洛谷线下奖项接口
type Client struct {
	http    *http.Client
	baseURL string
	logger  *logrus.Logger
}

// NewClient 创建 Client
func NewClient(cfg *config.LuoguConfig, logger *logrus.Logger) *Client {
	return &Client{
		http:    httpclient.NewHTTPClient(cfg, logger),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

type prizeListResponse struct {
	Prizes []struct {
		Prize *remotePrize `json:"prize"`
	} `json:"prizes"`
}

type remotePrize struct {
	Contest string   `json:"contest"`
	Prize   string   `json:"prize"`
	Year    *int     `json:"year"`
	Score   *float64 `json:"score"`
	Rank    *int     `json:"rank"`
	Event   *string  `json:"event"`
}

// FetchPrizes 拉取某个洛谷用户公开的线下奖项
func (c *Client) FetchPrizes(ctx context.Context, uid int64) ([]Prize, error) {
	url := fmt.Sprintf("%s/offlinePrize/getList/%d", c.baseURL, uid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Upstream("构造洛谷请求失败", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream("请求洛谷失败", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("读取洛谷响应失败", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("请求洛谷失败", fmt.Errorf("status %d", resp.StatusCode))
	}

	var data prizeListResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, apperr.Upstream("解析洛谷响应失败", err)
	}
	if data.Prizes == nil {
		return nil, apperr.Upstream("解析洛谷响应失败", fmt.Errorf("missing prizes array"))
	}

	prizes := make([]Prize, 0, len(data.Prizes))
	for _, item := range data.Prizes {
		if item.Prize == nil {
			continue
		}
		raw, _ := json.Marshal(item.Prize)
		_, noi := ContestMapping[item.Prize.Contest]
		prizes = append(prizes, Prize{
			LuoguUID:    uid,
			ContestName: item.Prize.Contest,
			PrizeLevel:  item.Prize.Prize,
			Year:        item.Prize.Year,
			Score:       item.Prize.Score,
			Rank:        item.Prize.Rank,
			Event:       item.Prize.Event,
			IsNOISeries: noi,
			Raw:         raw,
		})
	}
	c.logger.WithFields(logrus.Fields{"luogu_uid": uid, "prizes": len(prizes)}).Debug("洛谷奖项拉取完成")
	return prizes, nil
}
