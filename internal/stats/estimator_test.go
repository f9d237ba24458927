package stats

import (
	"testing"

	"OIerFinder/internal/filter"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func sampleTable() *Table {
	t := &Table{}
	t.Add(2022, "NOI", "浙江", "金牌", 10)
	t.Add(2022, "NOI", "北京", "金牌", 5)
	t.Add(2022, "NOI", "北京", "银牌", 20)
	t.Add(2023, "NOI", "浙江", "金牌", 3)
	t.Add(2023, "CSP提高", "浙江", "一等奖", 400)
	return t
}

func TestEstimateSpecificIDs(t *testing.T) {
	e := NewEstimator(sampleTable())

	assert.Equal(t, 1, e.Selectivity(filter.RecordFilter{SchoolIDs: []int64{233}}))
	assert.Equal(t, 1, e.Selectivity(filter.RecordFilter{ContestIDs: []int64{1}, ContestTypes: []string{"CSP提高"}, Years: []int{2023}}))
}

func TestEstimateUnderSpecified(t *testing.T) {
	e := NewEstimator(sampleTable())

	assert.Equal(t, Unestimable, e.Selectivity(filter.RecordFilter{ContestTypes: []string{"NOI"}}))
	assert.Equal(t, Unestimable, e.Selectivity(filter.RecordFilter{Years: []int{2022}}))
	assert.Equal(t, Unestimable, e.Selectivity(filter.RecordFilter{Provinces: []string{"浙江"}}))
}

func TestEstimateCrossProduct(t *testing.T) {
	e := NewEstimator(sampleTable())

	// 不限省份、不限奖项
	assert.Equal(t, 35, e.Selectivity(filter.RecordFilter{Years: []int{2022}, ContestTypes: []string{"NOI"}}))
	assert.Equal(t, 15, e.Selectivity(filter.RecordFilter{Years: []int{2022}, ContestTypes: []string{"NOI"}, Levels: []string{"金牌"}}))
	assert.Equal(t, 13, e.Selectivity(filter.RecordFilter{
		YearStart:    ptr(2022),
		YearEnd:      ptr(2023),
		ContestTypes: []string{"NOI"},
		Provinces:    []string{"浙江"},
	}))
	// 只给 year_start 时区间延伸到统计上限
	assert.Equal(t, 403, e.Selectivity(filter.RecordFilter{YearStart: ptr(2023), ContestTypes: []string{"NOI", "CSP提高"}}))
}

func TestEstimateBoundsYearRangeToTable(t *testing.T) {
	e := NewEstimator(sampleTable())

	wide := filter.RecordFilter{YearStart: ptr(-2000000000), YearEnd: ptr(2000000000), ContestTypes: []string{"NOI"}}
	assert.Equal(t, 38, e.Selectivity(wide))

	wide.Provinces = []string{"上海"}
	wide.Levels = []string{"金牌"}
	est := e.Estimate(wide)
	assert.Equal(t, 0, est.Count)
	assert.False(t, est.ProvenEmpty())

	empty := NewEstimator(&Table{Stats: Counts{}})
	assert.Equal(t, 1, empty.Selectivity(filter.RecordFilter{YearStart: ptr(-2000000000), YearEnd: ptr(2000000000), ContestTypes: []string{"NOI"}}))
}

func TestEstimateNeverBelowOne(t *testing.T) {
	e := NewEstimator(sampleTable())
	filters := []filter.RecordFilter{
		{},
		{Years: []int{2023}, ContestTypes: []string{"NOI"}, Levels: []string{"铜牌"}},
		{Years: []int{1900}, ContestTypes: []string{"NOI"}},
		{YearStart: ptr(2030), YearEnd: ptr(2023), ContestTypes: []string{"NOI"}},
		{SchoolIDs: []int64{1}},
	}
	for _, f := range filters {
		assert.GreaterOrEqual(t, e.Selectivity(f), 1)
	}
}

func TestEstimateProvenEmpty(t *testing.T) {
	e := NewEstimator(sampleTable())

	est := e.Estimate(filter.RecordFilter{Years: []int{2023}, ContestTypes: []string{"NOI"}, Provinces: []string{"北京"}, Levels: []string{"金牌"}})
	assert.Equal(t, 0, est.Count)
	assert.True(t, est.ProvenEmpty())

	// 未限定省份：省份为空的记录不在统计里
	est = e.Estimate(filter.RecordFilter{Years: []int{2023}, ContestTypes: []string{"NOI"}, Levels: []string{"铜牌"}})
	assert.Equal(t, 0, est.Count)
	assert.False(t, est.ProvenEmpty())

	// 统计未覆盖的年份
	est = e.Estimate(filter.RecordFilter{Years: []int{2024}, ContestTypes: []string{"NOI"}, Provinces: []string{"北京"}, Levels: []string{"金牌"}})
	assert.False(t, est.ProvenEmpty())

	assert.False(t, e.Estimate(filter.RecordFilter{SchoolIDs: []int64{1}}).ProvenEmpty())
}
