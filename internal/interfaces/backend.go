package interfaces

import (
	"context"
	"time"
)

// Meta 单次语句执行的资源消耗
type Meta struct {
	RowsRead    int64
	RowsWritten int64
	Duration    time.Duration
}

// QueryResult 语句执行结果，行以列名为键原样返回
type QueryResult struct {
	Rows []map[string]any
	Meta Meta
}

// Backend 存储引擎协作方：参数化语句 + 扁平参数列表
type Backend interface {
	// Query 执行一条只读语句。params 超过 MaxParams 时必须拒绝执行
	Query(ctx context.Context, sql string, params []any) (*QueryResult, error)
	// MaxParams 单条语句可绑定的参数上限
	MaxParams() int
}
