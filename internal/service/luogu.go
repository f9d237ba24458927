package service

import (
	"context"
	"strconv"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/luogu"
	"OIerFinder/internal/metrics"
	"OIerFinder/internal/model"
	"OIerFinder/internal/repository"
	"OIerFinder/internal/utils/reqctx"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// PrizeFetcher 远端奖项来源
type PrizeFetcher interface {
	FetchPrizes(ctx context.Context, uid int64) ([]luogu.Prize, error)
}

// LuoguService 洛谷奖项同步：读库、按需拉取远端并增量合并
type LuoguService struct {
	fetcher PrizeFetcher
	repo    repository.LuoguPrizeRepository // 为 nil 时不落库，只返回远端数据
	group   singleflight.Group
	logger  *logrus.Logger
}

// NewLuoguService 创建 LuoguService
func NewLuoguService(fetcher PrizeFetcher, repo repository.LuoguPrizeRepository, logger *logrus.Logger) *LuoguService {
	return &LuoguService{fetcher: fetcher, repo: repo, logger: logger}
}

// Prizes 返回某个洛谷用户的奖项。sync=true 时先拉取远端并合并入库，
// 同一 uid 的并发同步只执行一次
func (s *LuoguService) Prizes(ctx context.Context, uid int64, sync bool) ([]luogu.Prize, error) {
	if !sync {
		return s.stored(ctx, uid)
	}
	v, err, shared := s.group.Do(strconv.FormatInt(uid, 10), func() (any, error) {
		return s.sync(ctx, uid)
	})
	if err != nil {
		metrics.ObserveLuoguSync("error")
		return nil, err
	}
	metrics.ObserveLuoguSync("ok")
	prizes := v.([]luogu.Prize)
	if shared {
		prizes = append([]luogu.Prize(nil), prizes...)
	}
	return prizes, nil
}

// ToQuery 奖项转为 /query-oier 请求体
func (s *LuoguService) ToQuery(ctx context.Context, uid int64, sync bool) (luogu.QueryPayload, error) {
	prizes, err := s.Prizes(ctx, uid, sync)
	if err != nil {
		return luogu.QueryPayload{}, err
	}
	return luogu.ToQuery(prizes), nil
}

func (s *LuoguService) stored(ctx context.Context, uid int64) ([]luogu.Prize, error) {
	if s.repo == nil {
		return []luogu.Prize{}, nil
	}
	rows, err := s.repo.ListByUID(ctx, uid)
	if err != nil {
		return nil, apperr.Backend("查询洛谷奖项失败", err)
	}
	prizes := make([]luogu.Prize, len(rows))
	for i, m := range rows {
		prizes[i] = luogu.FromModel(m)
	}
	return prizes, nil
}

func (s *LuoguService) sync(ctx context.Context, uid int64) ([]luogu.Prize, error) {
	log := s.logger.WithFields(logrus.Fields{"request_id": reqctx.RequestID(ctx), "luogu_uid": uid})

	remote, err := s.fetcher.FetchPrizes(ctx, uid)
	if err != nil {
		return nil, err
	}
	stored, err := s.stored(ctx, uid)
	if err != nil {
		return nil, err
	}
	final := luogu.Merge(remote, stored)
	if s.repo == nil {
		return final, nil
	}

	inserts, updates, insertAt := luogu.Diff(final, stored)
	insertModels := toModels(inserts)
	if err := s.repo.ApplyIncremental(ctx, insertModels, toModels(updates)); err != nil {
		return nil, apperr.Backend("保存洛谷奖项失败", err)
	}
	// 回填自增ID
	for i, m := range insertModels {
		final[insertAt[i]].ID = m.ID
	}
	log.WithFields(logrus.Fields{"inserted": len(inserts), "updated": len(updates)}).Info("洛谷奖项增量同步完成")
	return final, nil
}

func toModels(prizes []luogu.Prize) []*model.LuoguPrize {
	out := make([]*model.LuoguPrize, len(prizes))
	for i, p := range prizes {
		out[i] = p.ToModel()
	}
	return out
}
