package planner

import (
	"fmt"

	"OIerFinder/internal/model"

	"github.com/spf13/cast"
)

// columnInt64s 取结果集中某一整数列，去重并保持首次出现的顺序
func columnInt64s(rows []map[string]any, column string) ([]int64, error) {
	seen := make(map[int64]struct{}, len(rows))
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		v, err := cast.ToInt64E(row[column])
		if err != nil {
			return nil, fmt.Errorf("结果列 %s 非法: %w", column, err)
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// toRecordView 把 Record ⋈ Contest 的一行转为 RecordView，score/rank/fall_semester 为 NULL 时保持 nil
func toRecordView(row map[string]any) (model.RecordView, error) {
	var rv model.RecordView
	var err error
	if rv.OIerUID, err = cast.ToInt64E(row["oier_uid"]); err != nil {
		return rv, fmt.Errorf("oier_uid 非法: %w", err)
	}
	if rv.ContestID, err = cast.ToInt64E(row["contest_id"]); err != nil {
		return rv, fmt.Errorf("contest_id 非法: %w", err)
	}
	if v := row["score"]; v != nil {
		score, err := cast.ToFloat64E(v)
		if err != nil {
			return rv, fmt.Errorf("score 非法: %w", err)
		}
		rv.Score = &score
	}
	if v := row["rank"]; v != nil {
		rank, err := cast.ToIntE(v)
		if err != nil {
			return rv, fmt.Errorf("rank 非法: %w", err)
		}
		rv.Rank = &rank
	}
	if v := row["fall_semester"]; v != nil {
		fall, err := cast.ToBoolE(v)
		if err != nil {
			return rv, fmt.Errorf("fall_semester 非法: %w", err)
		}
		rv.FallSemester = &fall
	}
	rv.SchoolID = cast.ToInt64(row["school_id"])
	rv.Year = cast.ToInt(row["year"])
	rv.Level = cast.ToString(row["level"])
	rv.Province = cast.ToString(row["province"])
	rv.Type = cast.ToString(row["type"])
	return rv, nil
}
