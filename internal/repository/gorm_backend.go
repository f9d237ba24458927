package repository

import (
	"context"
	"database/sql"

	"OIerFinder/internal/interfaces"

	"gorm.io/gorm"
)

// GormBackend 基于 gorm 连接的只读后端（postgres），? 占位符由 gorm 按方言改写
type GormBackend struct {
	db        *gorm.DB
	maxParams int
}

// NewGormBackend 创建 GormBackend
func NewGormBackend(db *gorm.DB, maxParams int) *GormBackend {
	return &GormBackend{db: db, maxParams: maxParams}
}

// Query 执行参数化只读语句
func (b *GormBackend) Query(ctx context.Context, query string, params []any) (*interfaces.QueryResult, error) {
	return runQuery(ctx, func(ctx context.Context, query string, params []any) (*sql.Rows, error) {
		return b.db.WithContext(ctx).Raw(query, params...).Rows()
	}, b.maxParams, query, params)
}

// MaxParams 单条语句参数上限
func (b *GormBackend) MaxParams() int { return b.maxParams }

var _ interfaces.Backend = (*GormBackend)(nil)
