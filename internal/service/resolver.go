package service

import (
	"context"
	"fmt"
	"slices"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/filter"
	"OIerFinder/internal/planner"
	"OIerFinder/internal/query"

	"github.com/spf13/cast"
)

// Resolver 把规划器的候选集解析为最终的选手行
type Resolver struct {
	exec      *planner.Executor
	builder   *query.Builder
	maxParams int
}

// NewResolver 创建 Resolver
func NewResolver(exec *planner.Executor, builder *query.Builder, maxParams int) *Resolver {
	return &Resolver{exec: exec, builder: builder, maxParams: maxParams}
}

// Resolve 按候选集的三种形态返回结果：
//   - 空集：直接返回空结果
//   - 非空：按ID升序截断到 limit，再分块取选手行，种子阶段未用过的选手条件在这里补上
//   - nil（只有选手过滤器）：直接在 OIer 表上按ID升序扫描，后端截断
func (r *Resolver) Resolve(ctx context.Context, plan *planner.Result, person filter.OIerFilter, limit int) ([]map[string]any, error) {
	switch {
	case plan.IDs == nil:
		res, err := r.exec.Exec(ctx, plan.Usage, "final_oier_query_no_uids", r.builder.PersonScan(person, limit))
		if err != nil {
			return nil, err
		}
		return res.Rows, nil
	case len(plan.IDs) == 0:
		return []map[string]any{}, nil
	}

	ids := slices.Clone(plan.IDs)
	slices.Sort(ids)
	ids = ids[:min(limit, len(ids))]

	var pending *filter.OIerFilter
	if !plan.PersonApplied && !person.IsEmpty() {
		pending = &person
	}
	own := 0
	if pending != nil {
		own = query.PersonWhere(*pending).ParamCount()
	}
	if own >= r.maxParams {
		return nil, apperr.TooComplex("oier filter is too complex: it needs %d bound parameters, the limit is %d", own, r.maxParams-1)
	}

	chunks := query.Chunk(ids, r.maxParams-own)
	stmts := make([]query.Statement, len(chunks))
	for i, chunk := range chunks {
		stmts[i] = r.builder.PersonByIDs(pending, chunk)
	}
	results, err := r.exec.FanOut(ctx, plan.Usage, stmts, func(i int) string {
		return fmt.Sprintf("final_oier_query_chunk_%d", i)
	})
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(ids))
	for _, res := range results {
		rows = append(rows, res.Rows...)
	}
	// 分块结果之间无序
	slices.SortStableFunc(rows, func(a, b map[string]any) int {
		ua, ub := cast.ToInt64(a["uid"]), cast.ToInt64(b["uid"])
		switch {
		case ua < ub:
			return -1
		case ua > ub:
			return 1
		}
		return 0
	})
	return rows, nil
}
