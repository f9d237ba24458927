package filter

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"OIerFinder/internal/apperr"

	"github.com/spf13/cast"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindFloat
	kindInt
	kindBool
)

type fieldSpec struct {
	kind fieldKind
	list bool // 允许标量或数组
}

// recordFields 记录过滤器白名单
var recordFields = map[string]fieldSpec{
	"level":         {kindString, true},
	"levels":        {kindString, true},
	"min_score":     {kindFloat, false},
	"max_score":     {kindFloat, false},
	"min_rank":      {kindInt, false},
	"max_rank":      {kindInt, false},
	"province":      {kindString, true},
	"provinces":     {kindString, true},
	"school_id":     {kindInt, true},
	"school_ids":    {kindInt, true},
	"contest_id":    {kindInt, true},
	"contest_ids":   {kindInt, true},
	"year":          {kindInt, false},
	"years":         {kindInt, true},
	"year_start":    {kindInt, false},
	"year_end":      {kindInt, false},
	"fall_semester": {kindBool, false},
	"contest_type":  {kindString, true},
	"contest_types": {kindString, true},
}

// oierFields 选手过滤器白名单
var oierFields = map[string]fieldSpec{
	"gender":           {kindInt, true},
	"genders":          {kindInt, true},
	"enroll_min":       {kindInt, false},
	"enroll_max":       {kindInt, false},
	"initials":         {kindString, true},
	"name":             {kindString, true},
	"names":            {kindString, true},
	"min_oierdb_score": {kindFloat, false},
}

// Normalizer 客户端输入进入系统的第一道关：白名单校验、别名合并、年份钳制
type Normalizer struct {
	bounds YearBounds
}

// NewNormalizer 创建 Normalizer，bounds 取自基数统计表
func NewNormalizer(bounds YearBounds) *Normalizer {
	return &Normalizer{bounds: bounds}
}

// RecordList 规范化一组记录过滤器，丢弃过宽（无任何区分度）的过滤器
func (n *Normalizer) RecordList(raws []map[string]any) ([]RecordFilter, error) {
	out := make([]RecordFilter, 0, len(raws))
	for i, raw := range raws {
		f, keep, err := n.Record(raw)
		if err != nil {
			return nil, apperr.Validation("record_filters[%d]: %s", i, errMessage(err))
		}
		if keep {
			out = append(out, f)
		}
	}
	return out, nil
}

// Record 规范化单个记录过滤器。keep=false 表示该过滤器覆盖全部年份且无其他条件，应当丢弃
func (n *Normalizer) Record(raw map[string]any) (RecordFilter, bool, error) {
	var f RecordFilter
	vals, err := parseFields(raw, recordFields)
	if err != nil {
		return f, false, err
	}

	f.Levels = mergeStrings(vals.strings["level"], vals.strings["levels"])
	f.Provinces = mergeStrings(vals.strings["province"], vals.strings["provinces"])
	f.ContestTypes = mergeStrings(vals.strings["contest_type"], vals.strings["contest_types"])
	f.SchoolIDs = mergeInts(vals.ints["school_id"], vals.ints["school_ids"])
	f.ContestIDs = mergeInts(vals.ints["contest_id"], vals.ints["contest_ids"])
	f.MinScore = vals.float("min_score")
	f.MaxScore = vals.float("max_score")
	f.MinRank = vals.int("min_rank")
	f.MaxRank = vals.int("max_rank")
	if b, ok := vals.bools["fall_semester"]; ok {
		f.FallSemester = &b
	}

	// 年份优先级：years > year > year_start/year_end
	if years := vals.ints["years"]; len(years) > 0 {
		for _, y := range mergeInts(years) {
			f.Years = append(f.Years, int(y))
		}
		sort.Ints(f.Years)
	} else if y := vals.int("year"); y != nil {
		start, end := *y, *y
		f.YearStart, f.YearEnd = &start, &end
	} else {
		f.YearStart = vals.int("year_start")
		f.YearEnd = vals.int("year_end")
	}

	if len(f.Years) == 0 {
		n.clamp(&f)
		if f.YearStart == nil && f.YearEnd == nil && !f.hasDiscriminator() {
			return f, false, nil
		}
	}
	return f, true, nil
}

// clamp 把年份区间钳制到统计数据覆盖范围；覆盖全部年份的区间等价于不限年份，直接清空
func (n *Normalizer) clamp(f *RecordFilter) {
	if n.bounds.Min == 0 && n.bounds.Max == 0 {
		return
	}
	start, end := n.bounds.Min, n.bounds.Max
	if f.YearStart != nil && *f.YearStart > start {
		start = *f.YearStart
	}
	if f.YearEnd != nil && *f.YearEnd < end {
		end = *f.YearEnd
	}
	if start == n.bounds.Min && end == n.bounds.Max {
		f.YearStart, f.YearEnd = nil, nil
		return
	}
	f.YearStart, f.YearEnd = &start, &end
}

// OIer 规范化选手过滤器；gender 合并入 genders
func (n *Normalizer) OIer(raw map[string]any) (OIerFilter, error) {
	var f OIerFilter
	vals, err := parseFields(raw, oierFields)
	if err != nil {
		return f, apperr.Validation("oier_filters: %s", errMessage(err))
	}
	for _, g := range mergeInts(vals.ints["gender"], vals.ints["genders"]) {
		if g != GenderMale && g != GenderFemale && g != GenderUnknown {
			return f, apperr.Validation("oier_filters: gender must be one of 1, -1, 0, got %d", g)
		}
		f.Genders = append(f.Genders, int(g))
	}
	f.EnrollMin = vals.int("enroll_min")
	f.EnrollMax = vals.int("enroll_max")
	f.Initials = mergeStrings(vals.strings["initials"])
	f.Names = mergeStrings(vals.strings["name"], vals.strings["names"])
	f.MinOIerDBScore = vals.float("min_oierdb_score")
	return f, nil
}

type parsedFields struct {
	strings map[string][]string
	floats  map[string]float64
	ints    map[string][]int64
	bools   map[string]bool
}

func (p *parsedFields) float(key string) *float64 {
	if v, ok := p.floats[key]; ok {
		return &v
	}
	return nil
}

func (p *parsedFields) int(key string) *int {
	if v, ok := p.ints[key]; ok && len(v) > 0 {
		i := int(v[0])
		return &i
	}
	return nil
}

func parseFields(raw map[string]any, whitelist map[string]fieldSpec) (*parsedFields, error) {
	p := &parsedFields{
		strings: map[string][]string{},
		floats:  map[string]float64{},
		ints:    map[string][]int64{},
		bools:   map[string]bool{},
	}
	// 按键排序，保证同一输入报出的错误稳定
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		spec, ok := whitelist[key]
		if !ok {
			return nil, fmt.Errorf("unknown key %q", key)
		}
		v := raw[key]
		if v == nil {
			continue
		}
		items := []any{v}
		if arr, isArr := v.([]any); isArr {
			if !spec.list {
				return nil, fmt.Errorf("key %q does not accept an array", key)
			}
			items = arr
		}
		switch spec.kind {
		case kindString:
			for _, it := range items {
				s, err := toString(key, it)
				if err != nil {
					return nil, err
				}
				p.strings[key] = append(p.strings[key], s)
			}
		case kindFloat:
			x, err := toFloat(key, items[0])
			if err != nil {
				return nil, err
			}
			p.floats[key] = x
		case kindInt:
			for _, it := range items {
				x, err := toInt(key, it)
				if err != nil {
					return nil, err
				}
				p.ints[key] = append(p.ints[key], x)
			}
		case kindBool:
			b, err := toBool(key, items[0])
			if err != nil {
				return nil, err
			}
			p.bools[key] = b
		}
	}
	return p, nil
}

func toString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q expects string values, got %T", key, v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("key %q must not be empty", key)
	}
	return s, nil
}

func toFloat(key string, v any) (float64, error) {
	switch x := v.(type) {
	case bool, []any, map[string]any:
		return 0, fmt.Errorf("key %q expects a number, got %T", key, v)
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, fmt.Errorf("key %q must not be empty", key)
		}
		v = strings.TrimSpace(x)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("key %q expects a number: %v", key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("key %q must be finite", key)
	}
	return f, nil
}

func toInt(key string, v any) (int64, error) {
	f, err := toFloat(key, v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("key %q expects an integer, got %v", key, f)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("key %q is out of range, got %v", key, f)
	}
	return int64(f), nil
}

func toBool(key string, v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	case string:
		if b, err := cast.ToBoolE(strings.TrimSpace(x)); err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("key %q expects a boolean, got %v", key, v)
}

// mergeStrings 合并单复数别名，去重并保留首次出现的顺序
func mergeStrings(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func mergeInts(lists ...[]int64) []int64 {
	var out []int64
	for _, l := range lists {
		for _, x := range l {
			if !slices.Contains(out, x) {
				out = append(out, x)
			}
		}
	}
	return out
}

func errMessage(err error) string {
	if e, ok := err.(*apperr.Error); ok {
		return e.Message
	}
	return err.Error()
}
