package filter

import (
	"math"
	"testing"

	"OIerFinder/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = YearBounds{Min: 1990, Max: 2024}

func TestRecordYearPrecedence(t *testing.T) {
	n := NewNormalizer(testBounds)

	f, keep, err := n.Record(map[string]any{"year": float64(2023), "year_start": float64(2000)})
	require.NoError(t, err)
	require.True(t, keep)
	require.NotNil(t, f.YearStart)
	require.NotNil(t, f.YearEnd)
	assert.Equal(t, 2023, *f.YearStart)
	assert.Equal(t, 2023, *f.YearEnd)
	assert.Empty(t, f.Years)

	f, keep, err = n.Record(map[string]any{"years": []any{float64(2022), float64(2020)}, "year_start": float64(2000)})
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, []int{2020, 2022}, f.Years)
	assert.Nil(t, f.YearStart)
	assert.Nil(t, f.YearEnd)
}

func TestRecordClamp(t *testing.T) {
	n := NewNormalizer(testBounds)

	f, keep, err := n.Record(map[string]any{"year_start": 1950, "province": "北京"})
	require.NoError(t, err)
	require.True(t, keep)
	// 区间覆盖全部年份，等价于不限年份
	assert.Nil(t, f.YearStart)
	assert.Nil(t, f.YearEnd)

	f, _, err = n.Record(map[string]any{"year_start": 2010, "contest_type": "NOI"})
	require.NoError(t, err)
	assert.Equal(t, 2010, *f.YearStart)
	assert.Equal(t, 2024, *f.YearEnd)

	f, _, err = n.Record(map[string]any{"year_end": 2030, "year_start": 2000, "contest_type": "NOI"})
	require.NoError(t, err)
	assert.Equal(t, 2000, *f.YearStart)
	assert.Equal(t, 2024, *f.YearEnd)
}

func TestRecordDropsBroadFilter(t *testing.T) {
	n := NewNormalizer(testBounds)

	_, keep, err := n.Record(map[string]any{"year_start": 1990, "year_end": 2024})
	require.NoError(t, err)
	assert.False(t, keep)

	_, keep, err = n.Record(map[string]any{})
	require.NoError(t, err)
	assert.False(t, keep)

	list, err := n.RecordList([]map[string]any{
		{"year_start": 1980},
		{"school_id": 233},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []int64{233}, list[0].SchoolIDs)
}

func TestRecordAliases(t *testing.T) {
	n := NewNormalizer(testBounds)

	f, keep, err := n.Record(map[string]any{
		"level":         "金牌",
		"levels":        []any{"银牌", "金牌"},
		"province":      "浙江",
		"contest_id":    "12",
		"contest_ids":   []any{float64(13)},
		"min_score":     "350.5",
		"max_rank":      float64(10),
		"contest_type":  []any{"NOI"},
		"fall_semester": true,
	})
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, []string{"金牌", "银牌"}, f.Levels)
	assert.Equal(t, []string{"浙江"}, f.Provinces)
	assert.Equal(t, []int64{12, 13}, f.ContestIDs)
	assert.Equal(t, []string{"NOI"}, f.ContestTypes)
	require.NotNil(t, f.MinScore)
	assert.InDelta(t, 350.5, *f.MinScore, 1e-9)
	require.NotNil(t, f.MaxRank)
	assert.Equal(t, 10, *f.MaxRank)
	require.NotNil(t, f.FallSemester)
	assert.True(t, *f.FallSemester)
}

func TestRecordValidation(t *testing.T) {
	n := NewNormalizer(testBounds)

	cases := map[string]map[string]any{
		"unknown key":       {"school": 1},
		"empty string":      {"province": "   "},
		"non finite":        {"min_score": math.Inf(1)},
		"nan":               {"max_score": math.NaN()},
		"wrong element":     {"levels": []any{"金牌", float64(1)}},
		"bool as number":    {"min_rank": true},
		"fractional int":    {"school_id": 1.5},
		"array for scalar":  {"year_start": []any{float64(2000)}},
		"not a number":      {"year": "abc"},
		"bad fall_semester": {"fall_semester": "maybe"},
		"year overflow":     {"year": 1e19},
		"id overflow":       {"school_ids": []any{float64(1), -1e12}},
		"string overflow":   {"max_rank": "3000000000"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := n.RecordList([]map[string]any{raw})
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), "record_filters[0]")
		})
	}
}

func TestOIerFilter(t *testing.T) {
	n := NewNormalizer(testBounds)

	f, err := n.OIer(map[string]any{
		"gender":     float64(-1),
		"genders":    []any{float64(1), float64(-1)},
		"enroll_min": "2018",
		"initials":   "ZS",
		"name":       "张三",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1}, f.Genders)
	assert.Equal(t, 2018, *f.EnrollMin)
	assert.Equal(t, []string{"ZS"}, f.Initials)
	assert.Equal(t, []string{"张三"}, f.Names)
	assert.False(t, f.IsEmpty())

	f, err = n.OIer(nil)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())

	_, err = n.OIer(map[string]any{"gender": float64(2)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = n.OIer(map[string]any{"school_id": float64(1)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
