package luogu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestMergeFillsMissingFields(t *testing.T) {
	stored := []Prize{{ID: 7, ContestName: "NOI", PrizeLevel: "金牌", Year: ptr(2023)}}
	remote := []Prize{{ContestName: "NOI", PrizeLevel: "金牌", Year: ptr(2023), Score: ptr(590.0), Rank: ptr(3)}}

	final := Merge(remote, stored)
	require.Len(t, final, 1)
	assert.Equal(t, uint64(7), final[0].ID)
	assert.Equal(t, 590.0, *final[0].Score)
	assert.Equal(t, 3, *final[0].Rank)

	inserts, updates, _ := Diff(final, stored)
	assert.Empty(t, inserts)
	require.Len(t, updates, 1)
	assert.Equal(t, uint64(7), updates[0].ID)
}

func TestMergeNeverDeletes(t *testing.T) {
	stored := []Prize{
		{ID: 1, ContestName: "NOIP 提高组", PrizeLevel: "一等奖", Year: ptr(2018)},
		{ID: 2, ContestName: "CSP-S", PrizeLevel: "一等奖", Year: ptr(2019)},
	}

	final := Merge(nil, stored)
	assert.Equal(t, stored, final)

	inserts, updates, insertAt := Diff(final, stored)
	assert.Empty(t, inserts)
	assert.Empty(t, updates)
	assert.Empty(t, insertAt)
}

func TestMergeKeepsStoredValueOnConflict(t *testing.T) {
	stored := []Prize{{ID: 3, ContestName: "NOI", PrizeLevel: "银牌", Year: ptr(2022)}}
	// 年份不同，互不包含，作为新奖项追加
	remote := []Prize{
		{ContestName: "NOI", PrizeLevel: "银牌", Year: ptr(2021)},
		{ContestName: "NOI", PrizeLevel: "银牌"},
	}

	final := Merge(remote, stored)
	require.Len(t, final, 2)
	assert.Equal(t, 2022, *final[0].Year)
	assert.Equal(t, 2021, *final[1].Year)

	inserts, updates, insertAt := Diff(final, stored)
	require.Len(t, inserts, 1)
	assert.Equal(t, 2021, *inserts[0].Year)
	assert.Equal(t, []int{1}, insertAt)
	assert.Empty(t, updates)
}

func TestMergeIntoEmptyStore(t *testing.T) {
	remote := []Prize{
		{ContestName: "CSP-J", PrizeLevel: "一等奖", Year: ptr(2020)},
		{ContestName: "CSP-S", PrizeLevel: "二等奖", Year: ptr(2020)},
	}

	final := Merge(remote, nil)
	assert.Equal(t, remote, final)
	inserts, _, insertAt := Diff(final, nil)
	assert.Len(t, inserts, 2)
	assert.Equal(t, []int{0, 1}, insertAt)
}

func TestNOIOnlyAndSort(t *testing.T) {
	prizes := []Prize{
		{ContestName: "USACO", Year: ptr(2023)},
		{ContestName: "NOIP 提高组", IsNOISeries: true, Year: ptr(2018)},
		{ContestName: "CSP-S", IsNOISeries: true, Year: ptr(2019)},
		{ContestName: "CSP-J", IsNOISeries: true, Year: ptr(2019)},
		{ContestName: "APIO", IsNOISeries: true},
	}

	noi := NOIOnly(prizes)
	require.Len(t, noi, 4)
	SortForDisplay(noi)
	names := make([]string, len(noi))
	for i, p := range noi {
		names[i] = p.ContestName
	}
	assert.Equal(t, []string{"CSP-J", "CSP-S", "NOIP 提高组", "APIO"}, names)
}
