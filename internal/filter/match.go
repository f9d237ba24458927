package filter

import (
	"slices"

	"OIerFinder/internal/model"
)

// MatchRecord 内存校验：单条记录是否满足过滤器，语义与 SQL 编译结果一致
func MatchRecord(rec model.RecordView, f RecordFilter) bool {
	if len(f.Levels) > 0 && !slices.Contains(f.Levels, rec.Level) {
		return false
	}
	// 分数、名次、学期为空的记录不满足对应条件（与 SQL 中 NULL 比较的结果一致）
	if f.MinScore != nil && (rec.Score == nil || *rec.Score < *f.MinScore) {
		return false
	}
	if f.MaxScore != nil && (rec.Score == nil || *rec.Score > *f.MaxScore) {
		return false
	}
	if f.MinRank != nil && (rec.Rank == nil || *rec.Rank < *f.MinRank) {
		return false
	}
	if f.MaxRank != nil && (rec.Rank == nil || *rec.Rank > *f.MaxRank) {
		return false
	}
	if len(f.Provinces) > 0 && !slices.Contains(f.Provinces, rec.Province) {
		return false
	}
	if len(f.SchoolIDs) > 0 && !slices.Contains(f.SchoolIDs, rec.SchoolID) {
		return false
	}
	if len(f.ContestIDs) > 0 && !slices.Contains(f.ContestIDs, rec.ContestID) {
		return false
	}
	if len(f.Years) > 0 && !slices.Contains(f.Years, rec.Year) {
		return false
	}
	if !yearInRange(rec.Year, f.YearStart, f.YearEnd) {
		return false
	}
	if f.FallSemester != nil && (rec.FallSemester == nil || *rec.FallSemester != *f.FallSemester) {
		return false
	}
	if len(f.ContestTypes) > 0 && !slices.Contains(f.ContestTypes, rec.Type) {
		return false
	}
	return true
}

// MatchAny 选手的任意一条记录满足过滤器即可
func MatchAny(records []model.RecordView, f RecordFilter) bool {
	for _, rec := range records {
		if MatchRecord(rec, f) {
			return true
		}
	}
	return false
}
