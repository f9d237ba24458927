package service

import (
	"context"
	"math"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/config"
	"OIerFinder/internal/filter"
	"OIerFinder/internal/interfaces"
	"OIerFinder/internal/planner"
	"OIerFinder/internal/query"
	"OIerFinder/internal/stats"
	"OIerFinder/internal/utils/reqctx"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// QueryRequest /query-oier 请求体。record_filters 允许传单个对象
type QueryRequest struct {
	RecordFilters any            `json:"record_filters"`
	OIerFilters   map[string]any `json:"oier_filters"`
	Limit         any            `json:"limit"`
}

// QueryResult 查询结果
type QueryResult struct {
	Rows     []map[string]any
	Usage    *planner.Usage
	State    planner.State
	Strength int
}

// QueryService 选手查询：校验 → 去冗余 → 强度门槛 → 按选择性排序 → 规划 → 解析
type QueryService struct {
	scorer    *filter.Scorer
	estimator *stats.Estimator
	planner   *planner.Planner
	resolver  *Resolver
	cfg       config.QueryConfig
	logger    *logrus.Logger
}

// NewQueryService 创建 QueryService，weights 为强度评分表
func NewQueryService(backend interfaces.Backend, table *stats.Table, dialect query.Dialect, weights filter.Weights, cfg config.QueryConfig, logger *logrus.Logger) *QueryService {
	cfg.ApplyDefaults()
	builder := query.NewBuilder(dialect)
	estimator := stats.NewEstimator(table)
	opts := planner.Options{
		MaxParams:             cfg.MaxParams,
		VerificationThreshold: cfg.VerificationThreshold,
		MaxConcurrency:        cfg.MaxConcurrency,
	}
	return &QueryService{
		scorer:    filter.NewScorer(weights),
		estimator: estimator,
		planner:   planner.New(backend, builder, estimator, opts, logger),
		resolver:  NewResolver(planner.NewExecutor(backend, cfg.MaxConcurrency, logger), builder, cfg.MaxParams),
		cfg:       cfg,
		logger:    logger,
	}
}

// Estimator 查询使用的基数估算器，统计重算后通过它替换统计表
func (s *QueryService) Estimator() *stats.Estimator {
	return s.estimator
}

// Query 执行一次查询。trusted 为可信调用方，跳过过滤器数量上限与强度门槛
func (s *QueryService) Query(ctx context.Context, req QueryRequest, trusted bool) (*QueryResult, error) {
	log := s.logger.WithField("request_id", reqctx.RequestID(ctx))

	raws, err := recordFilterList(req.RecordFilters)
	if err != nil {
		return nil, err
	}
	if !trusted && len(raws) > s.cfg.MaxRecordFilters {
		return nil, apperr.Validation("too many record filters: got %d, at most %d are allowed", len(raws), s.cfg.MaxRecordFilters)
	}
	// 统计表可能被后台重算替换，年份范围按请求取
	normalizer := filter.NewNormalizer(s.estimator.Table().Bounds())
	records, err := normalizer.RecordList(raws)
	if err != nil {
		return nil, err
	}
	person, err := normalizer.OIer(req.OIerFilters)
	if err != nil {
		return nil, err
	}
	limit := NormalizeLimit(req.Limit, s.cfg.DefaultLimit, s.cfg.MaxLimit)

	// 先去冗余再评分，重复的弱过滤器不能叠加分数
	records = filter.Reduce(records)
	if len(records) == 0 && person.IsEmpty() {
		return nil, apperr.TooBroad("Query is too broad. Please provide at least one filter.")
	}
	strength := s.scorer.Total(records, person)
	if !trusted && strength < s.cfg.MinStrength {
		return nil, apperr.TooBroad("Query is too broad and may cause high resource usage. "+
			"Please add more specific conditions (e.g., year, province, school, or a more selective contest type). "+
			"Your query strength score is %d, minimum required is %d.", strength, s.cfg.MinStrength)
	}

	records = planner.SortBySelectivity(records, s.estimator)
	log.WithFields(logrus.Fields{
		"filters":  len(records),
		"strength": strength,
		"limit":    limit,
		"trusted":  trusted,
	}).Info("开始规划查询")

	var personArg *filter.OIerFilter
	if !person.IsEmpty() {
		personArg = &person
	}
	plan, err := s.planner.Run(ctx, records, personArg)
	if err != nil {
		return nil, err
	}
	rows, err := s.resolver.Resolve(ctx, plan, person, limit)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"state":     plan.State,
		"rows":      len(rows),
		"rows_read": plan.Usage.TotalRowsRead,
		"steps":     len(plan.Usage.Steps),
	}).Info("查询完成")
	return &QueryResult{Rows: rows, Usage: plan.Usage, State: plan.State, Strength: strength}, nil
}

// recordFilterList record_filters 既可以是数组也可以是单个对象
func recordFilterList(v any) ([]map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{t}, nil
	case []map[string]any:
		return t, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for i, item := range t {
			if item == nil {
				continue
			}
			m, ok := item.(map[string]any)
			if !ok {
				return nil, apperr.Validation("record_filters[%d]: must be an object", i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, apperr.Validation("record_filters: must be an array of objects")
	}
}

// NormalizeLimit 非数字或非正数取默认值，向下取整后不超过 maxLimit
func NormalizeLimit(v any, def, maxLimit int) int {
	if v == nil {
		return def
	}
	if _, ok := v.(bool); ok {
		return def
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return def
	}
	n = math.Floor(n)
	if n < 1 {
		return def
	}
	return int(math.Min(n, float64(maxLimit)))
}
