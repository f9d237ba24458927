package repository

import (
	"context"
	"database/sql"

	"OIerFinder/internal/interfaces"
)

// SQLBackend 直接基于 database/sql 连接的只读后端，用于 sqlite 数据文件
type SQLBackend struct {
	db        *sql.DB
	maxParams int
}

// NewSQLBackend 创建 SQLBackend
func NewSQLBackend(db *sql.DB, maxParams int) *SQLBackend {
	return &SQLBackend{db: db, maxParams: maxParams}
}

// Query 执行参数化只读语句
func (b *SQLBackend) Query(ctx context.Context, query string, params []any) (*interfaces.QueryResult, error) {
	return runQuery(ctx, func(ctx context.Context, query string, params []any) (*sql.Rows, error) {
		return b.db.QueryContext(ctx, query, params...)
	}, b.maxParams, query, params)
}

// MaxParams 单条语句参数上限
func (b *SQLBackend) MaxParams() int { return b.maxParams }

var _ interfaces.Backend = (*SQLBackend)(nil)
