package repository

import (
	"context"
	"fmt"

	"OIerFinder/internal/model"

	"gorm.io/gorm"
)

// LuoguPrizeRepository 洛谷奖项仓储
type LuoguPrizeRepository interface {
	// ListByUID 某个洛谷用户已入库的全部奖项
	ListByUID(ctx context.Context, luoguUID int64) ([]*model.LuoguPrize, error)
	// ApplyIncremental 新增 + 更新在同一事务内完成，不做删除
	ApplyIncremental(ctx context.Context, inserts, updates []*model.LuoguPrize) error
}

type luoguPrizeRepository struct {
	db *gorm.DB
}

// NewLuoguPrizeRepository 创建 LuoguPrizeRepository 实例
func NewLuoguPrizeRepository(db *gorm.DB) LuoguPrizeRepository {
	return &luoguPrizeRepository{db: db}
}

func (r *luoguPrizeRepository) ListByUID(ctx context.Context, luoguUID int64) ([]*model.LuoguPrize, error) {
	var prizes []*model.LuoguPrize
	if err := r.db.WithContext(ctx).
		Where("luogu_uid = ?", luoguUID).
		Order("id ASC").
		Find(&prizes).Error; err != nil {
		return nil, fmt.Errorf("查询洛谷奖项失败: %w", err)
	}
	return prizes, nil
}

func (r *luoguPrizeRepository) ApplyIncremental(ctx context.Context, inserts, updates []*model.LuoguPrize) error {
	if len(inserts) == 0 && len(updates) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	if len(inserts) > 0 {
		if err := tx.CreateInBatches(inserts, 100).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("新增洛谷奖项失败: %w", err)
		}
	}

	for _, p := range updates {
		if err := tx.Model(&model.LuoguPrize{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"contest_name":  p.ContestName,
				"prize_level":   p.PrizeLevel,
				"year":          p.Year,
				"score":         p.Score,
				"rank":          p.Rank,
				"event":         p.Event,
				"is_noi_series": p.IsNOISeries,
				"raw":           p.Raw,
				"updated_at":    gorm.Expr("now()"),
			}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("更新洛谷奖项失败: %w, id: %d", err, p.ID)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}
