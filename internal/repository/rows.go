package repository

import (
	"context"
	"database/sql"
	"time"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/interfaces"
)

// checkParams 语句绑定参数超过上限时直接拒绝，不发往数据库
func checkParams(params []any, maxParams int) error {
	if maxParams > 0 && len(params) > maxParams {
		return apperr.TooComplex("statement needs %d bound parameters, the backend allows at most %d", len(params), maxParams)
	}
	return nil
}

// scanRows 把结果集按列名读成 map，[]byte 统一转 string
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type rowsOpener func(ctx context.Context, query string, params []any) (*sql.Rows, error)

// runQuery 两种后端共用的执行流程：参数检查 → 执行 → 读取 → 统计耗时
func runQuery(ctx context.Context, open rowsOpener, maxParams int, query string, params []any) (*interfaces.QueryResult, error) {
	if err := checkParams(params, maxParams); err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := open(ctx, query, params)
	if err != nil {
		return nil, apperr.Backend("执行查询失败", err)
	}
	defer rows.Close()

	data, err := scanRows(rows)
	if err != nil {
		return nil, apperr.Backend("读取查询结果失败", err)
	}
	return &interfaces.QueryResult{
		Rows: data,
		Meta: interfaces.Meta{
			RowsRead: int64(len(data)),
			Duration: time.Since(start),
		},
	}, nil
}
