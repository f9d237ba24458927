package stats

import (
	"sync/atomic"

	"OIerFinder/internal/filter"
)

// Unestimable 年份或比赛类型未限定时无法从统计表估算，返回一个足够大的值让其排在最后
const Unestimable = 100000

// Estimate 基数估算结果
type Estimate struct {
	Count     int
	FromStats bool // true 表示 Count 完全由统计表覆盖的分桶求和得到，此时 Count==0 即证明无匹配
}

// Selectivity 排序用的估算值，下限为 1
func (e Estimate) Selectivity() int {
	return max(e.Count, 1)
}

// ProvenEmpty 统计表证明该过滤器不可能命中任何选手
func (e Estimate) ProvenEmpty() bool {
	return e.FromStats && e.Count == 0
}

// Estimator 基数估算器，不访问后端。统计表可在运行中整体替换
type Estimator struct {
	table atomic.Pointer[Table]
}

// NewEstimator 创建 Estimator
func NewEstimator(table *Table) *Estimator {
	e := &Estimator{}
	e.table.Store(table)
	return e
}

// Table 当前使用的统计表
func (e *Estimator) Table() *Table {
	return e.table.Load()
}

// Swap 替换统计表，已经开始的估算继续使用旧表
func (e *Estimator) Swap(t *Table) {
	e.table.Store(t)
}

// Selectivity 过滤器的估算命中人数（≥1）
func (e *Estimator) Selectivity(f filter.RecordFilter) int {
	return e.Estimate(f).Selectivity()
}

// Estimate 对过滤器的年份 × 比赛类型 × 省份 × 奖项做笛卡尔展开，累加分桶计数。
// 指定了比赛 ID 或学校 ID 的过滤器直接视为 1。
func (e *Estimator) Estimate(f filter.RecordFilter) Estimate {
	if len(f.ContestIDs) > 0 || len(f.SchoolIDs) > 0 {
		return Estimate{Count: 1}
	}
	table := e.table.Load()
	if !f.HasYearCondition() || len(f.ContestTypes) == 0 {
		return Estimate{Count: Unestimable}
	}

	// 统计表未覆盖的年份计数为 0，但不能据此证明无匹配；
	// 统计不含省份为空或奖项为空的记录，未限定省份和奖项时同样不能证明
	covered := len(f.Provinces) > 0 && len(f.Levels) > 0

	years := f.Years
	if len(years) == 0 {
		start, end := table.MinYear, table.MaxYear
		if f.YearStart != nil && *f.YearStart > start {
			start = *f.YearStart
		}
		if f.YearStart != nil && *f.YearStart < table.MinYear {
			covered = false
		}
		if f.YearEnd != nil && *f.YearEnd < end {
			end = *f.YearEnd
		}
		if f.YearEnd != nil && *f.YearEnd > table.MaxYear {
			covered = false
		}
		// 只展开统计表覆盖的年份，范围之外的计数必然为 0
		for y := start; y <= end; y++ {
			years = append(years, y)
		}
	}

	total := 0
	for _, year := range years {
		if year < table.MinYear || year > table.MaxYear {
			covered = false
		}
		byType := table.Stats[year]
		for _, contestType := range f.ContestTypes {
			byProvince := byType[contestType]
			provinces := f.Provinces
			if len(provinces) == 0 {
				provinces = keys(byProvince)
			}
			for _, province := range provinces {
				byLevel := byProvince[province]
				if len(f.Levels) == 0 {
					for _, n := range byLevel {
						total += n
					}
					continue
				}
				for _, level := range f.Levels {
					total += byLevel[level]
				}
			}
		}
	}
	return Estimate{Count: total, FromStats: covered}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
