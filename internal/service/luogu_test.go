package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"OIerFinder/internal/apperr"
	"OIerFinder/internal/luogu"
	"OIerFinder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type fakeFetcher struct {
	prizes []luogu.Prize
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (f *fakeFetcher) FetchPrizes(ctx context.Context, uid int64) ([]luogu.Prize, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]luogu.Prize, len(f.prizes))
	for i, p := range f.prizes {
		p.LuoguUID = uid
		out[i] = p
	}
	return out, nil
}

// memoryPrizeRepo 内存版仓储，自增ID从 1 开始
type memoryPrizeRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   []*model.LuoguPrize
	err    error
}

func (r *memoryPrizeRepo) ListByUID(ctx context.Context, luoguUID int64) ([]*model.LuoguPrize, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.LuoguPrize
	for _, row := range r.rows {
		if row.LuoguUID == luoguUID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryPrizeRepo) ApplyIncremental(ctx context.Context, inserts, updates []*model.LuoguPrize) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, p := range inserts {
		r.nextID++
		p.ID = r.nextID
		cp := *p
		r.rows = append(r.rows, &cp)
	}
	for _, p := range updates {
		for i, row := range r.rows {
			if row.ID == p.ID {
				cp := *p
				r.rows[i] = &cp
			}
		}
	}
	return nil
}

func TestLuoguPrizesWithoutSync(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewLuoguService(fetcher, &memoryPrizeRepo{}, quietLogger())

	prizes, err := svc.Prizes(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Empty(t, prizes)
	assert.Zero(t, fetcher.calls.Load())
}

func TestLuoguSyncPersistsIncrementally(t *testing.T) {
	fetcher := &fakeFetcher{prizes: []luogu.Prize{
		{ContestName: "NOI", PrizeLevel: "金牌", Year: ptr(2023), IsNOISeries: true},
		{ContestName: "CSP-S", PrizeLevel: "一等奖", Year: ptr(2022), IsNOISeries: true},
	}}
	repo := &memoryPrizeRepo{}
	svc := NewLuoguService(fetcher, repo, quietLogger())

	prizes, err := svc.Prizes(context.Background(), 42, true)
	require.NoError(t, err)
	require.Len(t, prizes, 2)
	assert.Equal(t, uint64(1), prizes[0].ID)
	assert.Equal(t, uint64(2), prizes[1].ID)

	// 远端补全了分数，同时少了一条：已入库的不删除
	fetcher.prizes = []luogu.Prize{
		{ContestName: "NOI", PrizeLevel: "金牌", Year: ptr(2023), Score: ptr(590.0), IsNOISeries: true},
	}
	prizes, err = svc.Prizes(context.Background(), 42, true)
	require.NoError(t, err)
	require.Len(t, prizes, 2)

	stored, err := svc.Prizes(context.Background(), 42, false)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 590.0, *stored[0].Score)
	assert.Equal(t, "CSP-S", stored[1].ContestName)
	assert.Len(t, repo.rows, 2)
}

func TestLuoguSyncWithoutRepo(t *testing.T) {
	fetcher := &fakeFetcher{prizes: []luogu.Prize{{ContestName: "NOI", PrizeLevel: "银牌", IsNOISeries: true}}}
	svc := NewLuoguService(fetcher, nil, quietLogger())

	prizes, err := svc.Prizes(context.Background(), 7, true)
	require.NoError(t, err)
	require.Len(t, prizes, 1)
	assert.Zero(t, prizes[0].ID)

	stored, err := svc.Prizes(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLuoguSyncErrors(t *testing.T) {
	upstream := apperr.Upstream("请求洛谷失败", errors.New("timeout"))
	svc := NewLuoguService(&fakeFetcher{err: upstream}, &memoryPrizeRepo{}, quietLogger())
	_, err := svc.Prizes(context.Background(), 1, true)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	repo := &memoryPrizeRepo{err: errors.New("deadlock detected")}
	svc = NewLuoguService(&fakeFetcher{prizes: []luogu.Prize{{ContestName: "NOI", PrizeLevel: "金牌"}}}, repo, quietLogger())
	_, err = svc.Prizes(context.Background(), 1, true)
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
}

func TestLuoguConcurrentSyncRunsOnce(t *testing.T) {
	fetcher := &fakeFetcher{
		prizes: []luogu.Prize{{ContestName: "APIO", PrizeLevel: "金牌", Year: ptr(2021), IsNOISeries: true}},
		delay:  100 * time.Millisecond,
	}
	repo := &memoryPrizeRepo{}
	svc := NewLuoguService(fetcher, repo, quietLogger())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prizes, err := svc.Prizes(context.Background(), 9, true)
			assert.NoError(t, err)
			assert.Len(t, prizes, 1)
		}()
	}
	wg.Wait()

	assert.Len(t, repo.rows, 1)
	assert.LessOrEqual(t, fetcher.calls.Load(), int32(5))
}

func TestLuoguToQuery(t *testing.T) {
	fetcher := &fakeFetcher{prizes: []luogu.Prize{
		{ContestName: "NOIP 提高组", PrizeLevel: "一等奖", Year: ptr(2018), IsNOISeries: true},
		{ContestName: "USACO", PrizeLevel: "Gold"},
	}}
	svc := NewLuoguService(fetcher, nil, quietLogger())

	payload, err := svc.ToQuery(context.Background(), 3, true)
	require.NoError(t, err)
	require.Len(t, payload.RecordFilters, 1)
	assert.Equal(t, "NOIP提高", payload.RecordFilters[0]["contest_type"])
}
