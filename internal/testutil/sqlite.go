// Package testutil 测试用的 sqlite 样例库与计数后端
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"OIerFinder/internal/interfaces"
	"OIerFinder/internal/repository"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// 样例库内容：
//
//	比赛 1  NOI 2023            uid 1..3 金牌（北京，uid 1 学校 233），uid 4..8 银牌（上海，uid 8 无分数）
//	比赛 2  NOIP提高 2022 秋季   uid 1..2 一等奖（北京），uid 101..110 一等奖（浙江）
//	比赛 3  CSP提高 2022 秋季    uid 101..125 一等奖（浙江，学校 500）
//	比赛 4  NOI 2022            uid 9 铜牌两条（名次 90 与无名次），省份为空
//	比赛 5  CSP入门 2021 秋季    uid 201 二等奖（江苏）
//
// 性别：奇数 uid 为 1，偶数为 -1；姓名首字母 uid 1..3 为 ZS/LS/WW，其余为 XS。
const (
	ContestNOI2023  = 1
	ContestNOIP2022 = 2
	ContestCSPS2022 = 3
	ContestNOI2022  = 4
	ContestCSPJ2021 = 5
)

const schema = `
CREATE TABLE "OIer" (uid INTEGER PRIMARY KEY, initials TEXT, name TEXT NOT NULL, gender INTEGER DEFAULT 0,
	enroll_middle INTEGER, oierdb_score REAL, ccf_score REAL, ccf_level INTEGER);
CREATE TABLE "Contest" (id INTEGER PRIMARY KEY, name TEXT NOT NULL, type TEXT, year INTEGER,
	fall_semester INTEGER, full_score INTEGER);
CREATE TABLE "School" (id INTEGER PRIMARY KEY, name TEXT NOT NULL, province TEXT, city TEXT, score REAL);
CREATE TABLE "Record" (id INTEGER PRIMARY KEY AUTOINCREMENT, oier_uid INTEGER NOT NULL, contest_id INTEGER NOT NULL,
	school_id INTEGER, score REAL, rank INTEGER, province TEXT, level TEXT);
CREATE INDEX idx_record_oier ON "Record"(oier_uid);
CREATE INDEX idx_record_contest_level ON "Record"(contest_id, level);
`

type contest struct {
	id     int64
	name   string
	typ    string
	year   int
	fall   bool
	scores int
}

type record struct {
	uid      int64
	contest  int64
	school   int64
	score    *float64
	rank     *int
	province string
	level    string
}

// NewSQLite 在临时目录建一个样例库，测试结束自动关闭
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "oier_data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(schema)
	require.NoError(t, err)

	contests := []contest{
		{ContestNOI2023, "NOI2023", "NOI", 2023, false, 700},
		{ContestNOIP2022, "NOIP2022", "NOIP提高", 2022, true, 400},
		{ContestCSPS2022, "CSP2022提高级", "CSP提高", 2022, true, 400},
		{ContestNOI2022, "NOI2022", "NOI", 2022, false, 700},
		{ContestCSPJ2021, "CSP2021入门级", "CSP入门", 2021, true, 400},
	}
	for _, c := range contests {
		_, err := db.Exec(`INSERT INTO "Contest" (id, name, type, year, fall_semester, full_score) VALUES (?, ?, ?, ?, ?, ?)`,
			c.id, c.name, c.typ, c.year, c.fall, c.scores)
		require.NoError(t, err)
	}

	var records []record
	add := func(uid, contestID, school int64, score float64, rank int, province, level string) {
		s, rk := score, rank
		records = append(records, record{uid, contestID, school, &s, &rk, province, level})
	}
	for uid := int64(1); uid <= 3; uid++ {
		school := int64(100)
		if uid == 1 {
			school = 233
		}
		add(uid, ContestNOI2023, school, 600-float64(uid), int(uid), "北京", "金牌")
		if uid <= 2 {
			add(uid, ContestNOIP2022, school, 390-float64(uid), int(uid), "北京", "一等奖")
		}
	}
	for uid := int64(4); uid <= 8; uid++ {
		add(uid, ContestNOI2023, 300, 500-float64(uid), int(uid), "上海", "银牌")
	}
	records[len(records)-1].score = nil
	add(9, ContestNOI2022, 301, 300, 90, "", "铜牌")
	add(9, ContestNOI2022, 301, 280, 0, "", "铜牌")
	records[len(records)-1].rank = nil
	for uid := int64(101); uid <= 125; uid++ {
		add(uid, ContestCSPS2022, 500, 300-float64(uid-100), int(uid-100), "浙江", "一等奖")
		if uid <= 110 {
			add(uid, ContestNOIP2022, 500, 350-float64(uid-100), int(uid-100)+2, "浙江", "一等奖")
		}
	}
	add(201, ContestCSPJ2021, 700, 150, 300, "江苏", "二等奖")

	uids := map[int64]struct{}{}
	for _, r := range records {
		_, err := db.Exec(`INSERT INTO "Record" (oier_uid, contest_id, school_id, score, rank, province, level) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.uid, r.contest, r.school, r.score, r.rank, r.province, r.level)
		require.NoError(t, err)
		uids[r.uid] = struct{}{}
	}

	initials := map[int64]string{1: "ZS", 2: "LS", 3: "WW"}
	for uid := range uids {
		gender := 1
		if uid%2 == 0 {
			gender = -1
		}
		ini, ok := initials[uid]
		if !ok {
			ini = "XS"
		}
		_, err := db.Exec(`INSERT INTO "OIer" (uid, initials, name, gender, enroll_middle, oierdb_score, ccf_score, ccf_level) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uid, ini, fmt.Sprintf("选手%d", uid), gender, 2018+int(uid%4), float64(uid), float64(uid)/2, 7)
		require.NoError(t, err)
	}
	return db
}

// NewBackend 样例库 + 计数后端
func NewBackend(t testing.TB, maxParams int) *CountingBackend {
	t.Helper()
	return &CountingBackend{inner: repository.NewSQLBackend(NewSQLite(t), maxParams)}
}

// CountingBackend 记录每一次后端调用，用于断言调用次数与参数个数
type CountingBackend struct {
	inner interfaces.Backend

	mu     sync.Mutex
	calls  []Call
	FailOn func(query string) error // 非 nil 时可注入故障
}

// Call 一次调用
type Call struct {
	SQL    string
	Params []any
}

func (b *CountingBackend) Query(ctx context.Context, query string, params []any) (*interfaces.QueryResult, error) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{SQL: query, Params: append([]any(nil), params...)})
	fail := b.FailOn
	b.mu.Unlock()
	if fail != nil {
		if err := fail(query); err != nil {
			return nil, err
		}
	}
	return b.inner.Query(ctx, query, params)
}

func (b *CountingBackend) MaxParams() int { return b.inner.MaxParams() }

// Calls 已发生的调用（副本）
func (b *CountingBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Reset 清空调用记录
func (b *CountingBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}
