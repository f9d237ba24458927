package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/interfaces"
	"OIerFinder/internal/metrics"
	"OIerFinder/internal/stats"
	"OIerFinder/internal/utils/reqctx"

	"github.com/sirupsen/logrus"
)

// StatsSyncService 从 Record ⋈ Contest 重算基数统计，写回统计文件并替换估算器正在使用的表
type StatsSyncService struct {
	backend   interfaces.Backend
	estimator *stats.Estimator
	path      string // 为空时只替换内存中的表
	mu        sync.Mutex
	logger    *logrus.Logger
}

// NewStatsSyncService 创建统计同步服务
func NewStatsSyncService(backend interfaces.Backend, estimator *stats.Estimator, path string, logger *logrus.Logger) *StatsSyncService {
	return &StatsSyncService{
		backend:   backend,
		estimator: estimator,
		path:      path,
		logger:    logger,
	}
}

// Run 重算一次。同一时间只有一次重算在执行，后到的调用排队等待
func (s *StatsSyncService) Run(ctx context.Context) (*stats.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.WithField("request_id", reqctx.RequestID(ctx))
	start := time.Now()
	table, err := stats.Compute(ctx, s.backend)
	if err != nil {
		metrics.ObserveStatsSync("error", 0)
		return nil, apperr.Backend("重算基数统计失败", err)
	}
	// 空表会让所有年份都落在统计范围外，保留旧表
	if len(table.Stats) == 0 {
		metrics.ObserveStatsSync("empty", 0)
		log.Warn("StatsSync: 统计结果为空，保留当前统计表")
		return nil, apperr.Backend("重算基数统计失败", errors.New("no records with province and level"))
	}
	if s.path != "" {
		if err := table.Save(s.path); err != nil {
			metrics.ObserveStatsSync("error", 0)
			return nil, apperr.Backend("写入统计文件失败", err)
		}
	}
	s.estimator.Swap(table)
	metrics.ObserveStatsSync("ok", table.Buckets())

	log.WithFields(logrus.Fields{
		"buckets":  table.Buckets(),
		"min_year": table.MinYear,
		"max_year": table.MaxYear,
		"cost":     time.Since(start).String(),
	}).Info("StatsSync: 基数统计已更新")
	return table, nil
}

// Start 按固定间隔后台重算，ctx 取消后退出；单次失败只记日志
func (s *StatsSyncService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					s.logger.WithError(err).Warn("StatsSync: 定时重算失败")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
