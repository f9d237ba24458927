package filter

import "slices"

// Reduce 去除冗余过滤器。
//
// 记录过滤器之间是"且"关系：若 A 的每个可比较维度都被 B 包含，则命中 A 的记录必然命中 B，
// A ∧ B ≡ A，保留更紧的 A 即可。从左到右累积：新过滤器比已有项更紧时替换已有项，
// 已有项至少同样紧时跳过新过滤器，否则追加。n ≤ 20，O(n²) 可以接受。
func Reduce(filters []RecordFilter) []RecordFilter {
	acc := make([]RecordFilter, 0, len(filters))
	for _, f := range filters {
		skip := false
		// 新过滤器可能同时比多个已有项更紧，这些项全部由它取代
		replaced := false
		next := acc[:0:0]
		for _, existing := range acc {
			if skip {
				next = append(next, existing)
				continue
			}
			if Within(existing, f) {
				skip = true
				next = append(next, existing)
				continue
			}
			if Within(f, existing) {
				if !replaced {
					next = append(next, f)
					replaced = true
				}
				continue
			}
			next = append(next, existing)
		}
		if skip {
			// 已有项至少同样紧；之前被替换的项也被该已有项覆盖，保持原样
			continue
		}
		if !replaced {
			next = append(next, f)
		}
		acc = next
	}
	return acc
}

// Within 报告 a 是否被 b 包含（a 至少与 b 一样紧）。缺省条件视为匹配全部
func Within(a, b RecordFilter) bool {
	return stringsWithin(a.Levels, b.Levels) &&
		stringsWithin(a.Provinces, b.Provinces) &&
		stringsWithin(a.ContestTypes, b.ContestTypes) &&
		intsWithin(a.SchoolIDs, b.SchoolIDs) &&
		intsWithin(a.ContestIDs, b.ContestIDs) &&
		yearsWithin(a, b) &&
		floatRangeWithin(a.MinScore, a.MaxScore, b.MinScore, b.MaxScore) &&
		intRangeWithin(a.MinRank, a.MaxRank, b.MinRank, b.MaxRank) &&
		boolWithin(a.FallSemester, b.FallSemester)
}

func stringsWithin(a, b []string) bool {
	if len(b) == 0 {
		return true
	}
	if len(a) == 0 {
		return false
	}
	for _, s := range a {
		if !slices.Contains(b, s) {
			return false
		}
	}
	return true
}

func intsWithin(a, b []int64) bool {
	if len(b) == 0 {
		return true
	}
	if len(a) == 0 {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}

func boolWithin(a, b *bool) bool {
	if b == nil {
		return true
	}
	return a != nil && *a == *b
}

// yearsWithin 处理显式年份列表与年份区间两种表示
func yearsWithin(a, b RecordFilter) bool {
	if !b.HasYearCondition() {
		return true
	}
	if !a.HasYearCondition() {
		return false
	}
	switch {
	case len(a.Years) > 0 && len(b.Years) > 0:
		for _, y := range a.Years {
			if !slices.Contains(b.Years, y) {
				return false
			}
		}
		return true
	case len(a.Years) > 0:
		for _, y := range a.Years {
			if !yearInRange(y, b.YearStart, b.YearEnd) {
				return false
			}
		}
		return true
	case len(b.Years) > 0:
		// 区间落在列表内需要两端有界，且区间内每一年都在列表里
		if a.YearStart == nil || a.YearEnd == nil {
			return false
		}
		for y := *a.YearStart; y <= *a.YearEnd; y++ {
			if !slices.Contains(b.Years, y) {
				return false
			}
		}
		return true
	default:
		return intRangeWithin(a.YearStart, a.YearEnd, b.YearStart, b.YearEnd)
	}
}

func yearInRange(y int, start, end *int) bool {
	if start != nil && y < *start {
		return false
	}
	if end != nil && y > *end {
		return false
	}
	return true
}

func intRangeWithin(aMin, aMax, bMin, bMax *int) bool {
	if bMin != nil && (aMin == nil || *aMin < *bMin) {
		return false
	}
	if bMax != nil && (aMax == nil || *aMax > *bMax) {
		return false
	}
	return true
}

func floatRangeWithin(aMin, aMax, bMin, bMax *float64) bool {
	if bMin != nil && (aMin == nil || *aMin < *bMin) {
		return false
	}
	if bMax != nil && (aMax == nil || *aMax > *bMax) {
		return false
	}
	return true
}
