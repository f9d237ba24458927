package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"OIerFinder/internal/filter"
	"OIerFinder/internal/interfaces"

	"github.com/spf13/cast"
)

// Counts year → contest_type → province → level → 不同选手数
type Counts map[int]map[string]map[string]map[string]int

// Table 预计算的基数统计表，进程启动时加载一次，之后只读
type Table struct {
	MinYear int    `json:"min_year"`
	MaxYear int    `json:"max_year"`
	Stats   Counts `json:"stats"`
}

// Load 从 JSON 文件加载统计表
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取统计文件失败: %w", err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("解析统计文件失败: %w", err)
	}
	if t.Buckets() == 0 {
		return nil, fmt.Errorf("统计文件没有任何分桶: %s", path)
	}
	if t.MinYear > t.MaxYear {
		return nil, fmt.Errorf("统计文件年份范围非法: min_year=%d max_year=%d", t.MinYear, t.MaxYear)
	}
	return &t, nil
}

// Save 写出统计表（不缩进，减小文件体积）
func (t *Table) Save(path string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Bounds 统计覆盖的年份范围
func (t *Table) Bounds() filter.YearBounds {
	return filter.YearBounds{Min: t.MinYear, Max: t.MaxYear}
}

// Add 累加一个分桶
func (t *Table) Add(year int, contestType, province, level string, count int) {
	if t.Stats == nil {
		t.Stats = Counts{}
	}
	byType, ok := t.Stats[year]
	if !ok {
		byType = map[string]map[string]map[string]int{}
		t.Stats[year] = byType
		t.extendBounds(year)
	}
	byProvince, ok := byType[contestType]
	if !ok {
		byProvince = map[string]map[string]int{}
		byType[contestType] = byProvince
	}
	byLevel, ok := byProvince[province]
	if !ok {
		byLevel = map[string]int{}
		byProvince[province] = byLevel
	}
	byLevel[level] += count
}

func (t *Table) extendBounds(year int) {
	if len(t.Stats) == 1 {
		t.MinYear, t.MaxYear = year, year
		return
	}
	t.MinYear = min(t.MinYear, year)
	t.MaxYear = max(t.MaxYear, year)
}

const computeSQL = `SELECT c.year AS year, c.type AS type, r.province AS province, r.level AS level,
COUNT(DISTINCT r.oier_uid) AS oier_count
FROM "Record" r JOIN "Contest" c ON r.contest_id = c.id
WHERE r.province IS NOT NULL AND r.province != '' AND r.level IS NOT NULL
GROUP BY c.year, c.type, r.province, r.level`

// Compute 从 Record ⋈ Contest 重新计算统计表：按 (年份, 比赛类型, 省份, 奖项) 分组统计不同选手数。
// 省份为空或奖项为空的记录不计入。
func Compute(ctx context.Context, backend interfaces.Backend) (*Table, error) {
	res, err := backend.Query(ctx, computeSQL, nil)
	if err != nil {
		return nil, err
	}
	t := &Table{Stats: Counts{}}
	for _, row := range res.Rows {
		year, err := cast.ToIntE(row["year"])
		if err != nil {
			return nil, fmt.Errorf("统计行 year 非法: %w", err)
		}
		count, err := cast.ToIntE(row["oier_count"])
		if err != nil {
			return nil, fmt.Errorf("统计行 oier_count 非法: %w", err)
		}
		t.Add(year, cast.ToString(row["type"]), cast.ToString(row["province"]), cast.ToString(row["level"]), count)
	}
	return t, nil
}

// Buckets 分桶总数
func (t *Table) Buckets() int {
	n := 0
	for _, byType := range t.Stats {
		for _, byProvince := range byType {
			for _, byLevel := range byProvince {
				n += len(byLevel)
			}
		}
	}
	return n
}
