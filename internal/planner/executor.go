package planner

import (
	"context"
	"strings"

	"OIerFinder/internal/interfaces"
	"OIerFinder/internal/metrics"
	"OIerFinder/internal/query"
	"OIerFinder/internal/utils/reqctx"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Executor 执行语句并把每次调用记入轨迹，规划器与最终查询共用
type Executor struct {
	backend     interfaces.Backend
	concurrency int
	logger      *logrus.Logger
}

// NewExecutor 创建 Executor，concurrency 为一批分块查询的并发上限
func NewExecutor(backend interfaces.Backend, concurrency int, logger *logrus.Logger) *Executor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Executor{backend: backend, concurrency: concurrency, logger: logger}
}

// Exec 执行单条语句
func (e *Executor) Exec(ctx context.Context, usage *Usage, name string, stmt query.Statement) (*interfaces.QueryResult, error) {
	res, err := e.backend.Query(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": reqctx.RequestID(ctx),
			"step":       name,
		}).Error("后端查询失败")
		return nil, err
	}
	usage.Add(name, res.Meta)
	metrics.ObserveBackendCall(stepKind(name), res.Meta.Duration, res.Meta.RowsRead)
	return res, nil
}

// FanOut 一批互不依赖的语句并发执行，等待全部完成后按分块顺序记入轨迹。
// 任一分块失败则整批失败
func (e *Executor) FanOut(ctx context.Context, usage *Usage, stmts []query.Statement, name func(int) string) ([]*interfaces.QueryResult, error) {
	results := make([]*interfaces.QueryResult, len(stmts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, stmt := range stmts {
		g.Go(func() error {
			res, err := e.backend.Query(gctx, stmt.SQL, stmt.Params)
			if err != nil {
				e.logger.WithError(err).WithFields(logrus.Fields{
					"request_id": reqctx.RequestID(ctx),
					"step":       name(i),
				}).Error("分块查询失败")
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, res := range results {
		usage.Add(name(i), res.Meta)
		metrics.ObserveBackendCall(stepKind(name(i)), res.Meta.Duration, res.Meta.RowsRead)
	}
	return results, nil
}

// stepKind 去掉步骤名里的序号，作为指标标签
func stepKind(name string) string {
	parts := strings.Split(name, "_")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || strings.Trim(part, "0123456789") == "" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "_")
}
