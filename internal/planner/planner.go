package planner

import (
	"context"
	"fmt"
	"slices"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/filter"
	"OIerFinder/internal/interfaces"
	"OIerFinder/internal/metrics"
	"OIerFinder/internal/model"
	"OIerFinder/internal/query"
	"OIerFinder/internal/stats"
	"OIerFinder/internal/utils/reqctx"

	"github.com/sirupsen/logrus"
)

// State 规划器状态
type State string

const (
	StateUnstarted State = "UNSTARTED"
	StateNarrowing State = "NARROWING"
	StateVerifying State = "VERIFYING"
	StateDone      State = "DONE"
	StateEmpty     State = "EMPTY"
)

// Options 规划参数
type Options struct {
	MaxParams             int // 单条语句绑定参数上限
	VerificationThreshold int // 候选集小于该值后转为内存校验
	MaxConcurrency        int // 一批分块查询的并发上限
}

// Result 规划结果
type Result struct {
	// IDs 最终候选选手ID（升序）；nil 表示没有任何记录过滤器
	IDs   []int64
	State State
	// PersonApplied 选手条件是否已在种子查询中完成剪枝
	PersonApplied bool
	// Sizes 每个阶段结束后的候选集大小
	Sizes []int
	Usage *Usage
}

// Planner 多阶段候选集规划器。每次 Run 的状态都在局部变量里，实例可并发复用
type Planner struct {
	exec      *Executor
	builder   *query.Builder
	estimator *stats.Estimator
	opts      Options
	logger    *logrus.Logger
}

// New 创建 Planner
func New(backend interfaces.Backend, builder *query.Builder, estimator *stats.Estimator, opts Options, logger *logrus.Logger) *Planner {
	return &Planner{
		exec:      NewExecutor(backend, opts.MaxConcurrency, logger),
		builder:   builder,
		estimator: estimator,
		opts:      opts,
		logger:    logger,
	}
}

// SortBySelectivity 按估算命中人数升序稳定排序，估算相同保持输入顺序
func SortBySelectivity(filters []filter.RecordFilter, estimator *stats.Estimator) []filter.RecordFilter {
	type keyed struct {
		f   filter.RecordFilter
		sel int
	}
	ks := make([]keyed, len(filters))
	for i, f := range filters {
		ks[i] = keyed{f: f, sel: estimator.Selectivity(f)}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int { return a.sel - b.sel })
	out := make([]filter.RecordFilter, len(ks))
	for i, k := range ks {
		out[i] = k.f
	}
	return out
}

// run 单次执行的可变状态
type run struct {
	state      State
	candidates []int64
	records    map[int64][]model.RecordView
	res        *Result
	log        *logrus.Entry
}

func (r *run) transition(to State) {
	r.log.WithFields(logrus.Fields{"from": r.state, "to": to, "candidates": len(r.candidates)}).Debug("规划器状态切换")
	r.state = to
}

// Run 依次应用已按选择性排序的记录过滤器，返回最终候选集与调用轨迹
func (p *Planner) Run(ctx context.Context, filters []filter.RecordFilter, person *filter.OIerFilter) (*Result, error) {
	if err := p.checkComplexity(filters, person); err != nil {
		return nil, err
	}

	r := &run{
		state: StateUnstarted,
		res:   &Result{Usage: NewUsage()},
		log:   p.logger.WithField("request_id", reqctx.RequestID(ctx)),
	}

	if len(filters) == 0 {
		return p.finish(r, StateDone), nil
	}

	// 统计表证明最强过滤器无匹配，不访问后端
	if est := p.estimator.Estimate(filters[0]); est.ProvenEmpty() {
		r.log.WithField("stage", "estimate").Info("统计表证明无匹配，直接返回空结果")
		return p.finish(r, StateEmpty), nil
	}

	r.transition(StateNarrowing)
	if err := p.seed(ctx, r, filters[0], person); err != nil {
		return nil, err
	}
	if len(r.candidates) == 0 {
		return p.finish(r, StateEmpty), nil
	}

	for i := 1; i < len(filters); i++ {
		f := filters[i]
		if r.state == StateNarrowing && len(r.candidates) < p.opts.VerificationThreshold {
			if err := p.enterVerifying(ctx, r); err != nil {
				return nil, err
			}
		}

		if r.state == StateVerifying {
			p.verify(r, i, f)
		} else if err := p.narrow(ctx, r, i, f); err != nil {
			return nil, err
		}
		r.log.WithFields(logrus.Fields{"stage": r.state, "filter_index": i, "candidates": len(r.candidates)}).Debug("过滤器已应用")
		if len(r.candidates) == 0 {
			return p.finish(r, StateEmpty), nil
		}
	}
	return p.finish(r, StateDone), nil
}

func (p *Planner) finish(r *run, state State) *Result {
	r.transition(state)
	res := r.res
	res.State = state
	switch {
	case state == StateEmpty:
		res.IDs = []int64{}
	case r.candidates != nil:
		res.IDs = slices.Clone(r.candidates)
		slices.Sort(res.IDs)
	}
	metrics.ObservePlan(string(state))
	return res
}

// checkComplexity 任何过滤器自身参数位达到上限都无法分块执行，请求整体失败
func (p *Planner) checkComplexity(filters []filter.RecordFilter, person *filter.OIerFilter) error {
	for i, f := range filters {
		if n := query.FilterParamCount(f); n >= p.opts.MaxParams {
			return apperr.TooComplex("record filter at index %d is too complex: it needs %d bound parameters, the limit is %d", i, n, p.opts.MaxParams-1)
		}
	}
	if person != nil {
		if n := query.PersonWhere(*person).ParamCount(); n >= p.opts.MaxParams {
			return apperr.TooComplex("oier filter is too complex: it needs %d bound parameters, the limit is %d", n, p.opts.MaxParams-1)
		}
	}
	return nil
}

func (p *Planner) record(r *run) {
	r.res.Sizes = append(r.res.Sizes, len(r.candidates))
}

// seed 第一个过滤器：年份/学期/类型先解析为比赛ID，再在 Record 全表上取初始候选集
func (p *Planner) seed(ctx context.Context, r *run, f filter.RecordFilter, person *filter.OIerFilter) error {
	effective := f
	if stmt, ok := p.builder.ContestPrefilter(f); ok {
		res, err := p.exec.Exec(ctx, r.res.Usage, "initial_contest_prefilter", stmt)
		if err != nil {
			return err
		}
		contestIDs, err := columnInt64s(res.Rows, "id")
		if err != nil {
			return apperr.Backend("解析比赛预筛选结果失败", err)
		}
		if len(f.ContestIDs) > 0 {
			contestIDs = intersect(contestIDs, f.ContestIDs)
		}
		if len(contestIDs) == 0 {
			r.candidates = []int64{}
			p.record(r)
			return nil
		}
		resolved := f.Clone()
		resolved.ContestIDs = contestIDs
		resolved.Years, resolved.YearStart, resolved.YearEnd = nil, nil, nil
		resolved.FallSemester = nil
		resolved.ContestTypes = nil
		// 比赛ID过多时保留 JOIN Contest 的写法
		if query.FilterParamCount(resolved) < p.opts.MaxParams {
			effective = resolved
		} else {
			r.log.WithField("contests", len(contestIDs)).Debug("预筛选比赛过多，种子查询改用关联 Contest")
		}
	}

	var seedPerson *filter.OIerFilter
	if person != nil && !person.IsEmpty() {
		own := query.FilterParamCount(effective) + query.PersonWhere(*person).ParamCount()
		if own <= p.opts.MaxParams {
			seedPerson = person
			r.res.PersonApplied = true
		}
	}

	res, err := p.exec.Exec(ctx, r.res.Usage, "initial_record_query", p.builder.Subquery(effective, nil, seedPerson))
	if err != nil {
		return err
	}
	ids, err := columnInt64s(res.Rows, "oier_uid")
	if err != nil {
		return apperr.Backend("解析种子查询结果失败", err)
	}
	r.candidates = ids
	p.record(r)
	r.log.WithFields(logrus.Fields{"stage": StateNarrowing, "filter_index": 0, "candidates": len(ids)}).Debug("种子查询完成")
	return nil
}

// enterVerifying 拉取剩余候选人的全部记录，之后的过滤器都在内存里校验
func (p *Planner) enterVerifying(ctx context.Context, r *run) error {
	chunks := query.Chunk(r.candidates, p.opts.MaxParams)
	stmts := make([]query.Statement, len(chunks))
	for i, chunk := range chunks {
		stmts[i] = p.builder.VerificationFetch(chunk)
	}
	results, err := p.exec.FanOut(ctx, r.res.Usage, stmts, func(i int) string {
		return fmt.Sprintf("fetch_records_for_verification_chunk_%d", i)
	})
	if err != nil {
		return err
	}

	r.records = make(map[int64][]model.RecordView, len(r.candidates))
	for _, res := range results {
		for _, row := range res.Rows {
			rv, err := toRecordView(row)
			if err != nil {
				return apperr.Backend("解析校验记录失败", err)
			}
			r.records[rv.OIerUID] = append(r.records[rv.OIerUID], rv)
		}
	}
	r.transition(StateVerifying)
	return nil
}

// verify 内存校验：只要任意一条记录满足过滤器即保留
func (p *Planner) verify(r *run, index int, f filter.RecordFilter) {
	kept := make([]int64, 0, len(r.candidates))
	for _, uid := range r.candidates {
		if filter.MatchAny(r.records[uid], f) {
			kept = append(kept, uid)
		}
	}
	r.candidates = kept
	r.res.Usage.Add(fmt.Sprintf("in_memory_verification_%d", index), interfaces.Meta{})
	p.record(r)
}

// narrow 约束模式：候选ID按剩余参数位分块，并发查询后取并集
func (p *Planner) narrow(ctx context.Context, r *run, index int, f filter.RecordFilter) error {
	chunkSize := p.opts.MaxParams - query.FilterParamCount(f)
	chunks := query.Chunk(r.candidates, chunkSize)
	stmts := make([]query.Statement, len(chunks))
	for i, chunk := range chunks {
		stmts[i] = p.builder.Subquery(f, chunk, nil)
	}
	results, err := p.exec.FanOut(ctx, r.res.Usage, stmts, func(i int) string {
		return fmt.Sprintf("record_filter_%d_chunk_%d", index, i)
	})
	if err != nil {
		return err
	}

	// 结果只可能是候选集的子集，按候选集原顺序过滤
	hit := make(map[int64]struct{})
	for _, res := range results {
		ids, err := columnInt64s(res.Rows, "oier_uid")
		if err != nil {
			return apperr.Backend("解析过滤结果失败", err)
		}
		for _, id := range ids {
			hit[id] = struct{}{}
		}
	}
	kept := make([]int64, 0, len(hit))
	for _, uid := range r.candidates {
		if _, ok := hit[uid]; ok {
			kept = append(kept, uid)
		}
	}
	r.candidates = kept
	p.record(r)
	return nil
}

func intersect(a, b []int64) []int64 {
	set := make(map[int64]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]int64, 0, min(len(a), len(b)))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
