package query

import (
	"strings"
	"testing"

	"OIerFinder/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDialectFor(t *testing.T) {
	assert.Equal(t, SQLite, DialectFor("sqlite"))
	assert.Equal(t, Postgres, DialectFor("postgres"))
	assert.Equal(t, Postgres, DialectFor(""))
}

func TestFilterParamCount(t *testing.T) {
	f := filter.RecordFilter{
		Levels:       []string{"金牌", "银牌"},
		MinScore:     ptr(100.0),
		Provinces:    []string{"北京"},
		Years:        []int{2022, 2023},
		FallSemester: ptr(false),
		ContestTypes: []string{"NOI"},
	}
	assert.Equal(t, 8, FilterParamCount(f))
	assert.Equal(t, 0, FilterParamCount(filter.RecordFilter{}))
}

func TestSubqueryUnconstrained(t *testing.T) {
	b := NewBuilder(SQLite)
	f := filter.RecordFilter{
		Levels:       []string{"金牌"},
		Years:        []int{2023},
		ContestTypes: []string{"NOI"},
	}

	stmt := b.Subquery(f, nil, nil)
	assert.Equal(t, `SELECT DISTINCT r.oier_uid FROM "Record" r JOIN "Contest" c ON r.contest_id = c.id WHERE r.level = ? AND c.year = ? AND c.type = ?`, stmt.SQL)
	assert.Equal(t, []any{"金牌", 2023, "NOI"}, stmt.Params)
	assert.Equal(t, 3, stmt.FilterParamCount)
}

func TestSubqueryRecordOnlySkipsContestJoin(t *testing.T) {
	b := NewBuilder(Postgres)
	stmt := b.Subquery(filter.RecordFilter{SchoolIDs: []int64{233}}, nil, nil)

	assert.Equal(t, `SELECT DISTINCT r.oier_uid FROM "Record" r WHERE r.school_id = ?`, stmt.SQL)
	assert.Equal(t, []any{int64(233)}, stmt.Params)
}

func TestSubqueryWithPerson(t *testing.T) {
	b := NewBuilder(SQLite)
	person := &filter.OIerFilter{Genders: []int{filter.GenderFemale}}

	stmt := b.Subquery(filter.RecordFilter{Provinces: []string{"北京"}}, nil, person)
	assert.Equal(t, `SELECT DISTINCT r.oier_uid FROM "Record" r JOIN "OIer" o ON r.oier_uid = o.uid WHERE r.province = ? AND o.gender = ?`, stmt.SQL)
	assert.Equal(t, []any{"北京", -1}, stmt.Params)
	// 选手条件不计入记录过滤器自身的参数位
	assert.Equal(t, 1, stmt.FilterParamCount)

	// 空选手条件不关联 OIer
	stmt = b.Subquery(filter.RecordFilter{Provinces: []string{"北京"}}, nil, &filter.OIerFilter{})
	assert.NotContains(t, stmt.SQL, `"OIer"`)
}

func TestSubqueryConstrained(t *testing.T) {
	f := filter.RecordFilter{Levels: []string{"一等奖"}, Years: []int{2022}}
	person := &filter.OIerFilter{Genders: []int{filter.GenderMale}}

	stmt := NewBuilder(Postgres).Subquery(f, []int64{1, 2, 3}, person)
	assert.Equal(t, `WITH cand AS (SELECT r.oier_uid, r.contest_id, r.level, r.score, r.rank, r.province, r.school_id FROM "Record" r WHERE r.oier_uid IN (?,?,?) LIMIT ALL) `+
		`SELECT DISTINCT r.oier_uid FROM cand r JOIN "Contest" c ON r.contest_id = c.id WHERE r.level = ? AND c.year = ?`, stmt.SQL)
	assert.Equal(t, []any{int64(1), int64(2), int64(3), "一等奖", 2022}, stmt.Params)
	assert.Equal(t, 2, stmt.FilterParamCount)

	stmt = NewBuilder(SQLite).Subquery(f, []int64{7}, nil)
	assert.Contains(t, stmt.SQL, "WHERE r.oier_uid = ? LIMIT -1)")
}

func TestSubqueryChunksStayUnderLimit(t *testing.T) {
	const maxParams = 99
	b := NewBuilder(SQLite)
	f := filter.RecordFilter{
		Levels:       []string{"金牌", "银牌", "铜牌"},
		Provinces:    []string{"北京", "上海", "浙江", "江苏"},
		Years:        []int{2020, 2021, 2022},
		ContestTypes: []string{"NOI"},
	}
	ids := make([]int64, 1000)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	chunks := Chunk(ids, maxParams-FilterParamCount(f))
	require.Len(t, chunks, 12)
	total := 0
	for _, chunk := range chunks {
		stmt := b.Subquery(f, chunk, nil)
		assert.LessOrEqual(t, len(stmt.Params), maxParams)
		assert.Equal(t, len(stmt.Params), strings.Count(stmt.SQL, "?"))
		total += len(chunk)
	}
	assert.Equal(t, len(ids), total)
}

func TestContestPrefilter(t *testing.T) {
	b := NewBuilder(SQLite)

	stmt, ok := b.ContestPrefilter(filter.RecordFilter{YearStart: ptr(2020), YearEnd: ptr(2023), ContestTypes: []string{"NOI", "CTSC"}})
	require.True(t, ok)
	assert.Equal(t, `SELECT c.id FROM "Contest" c WHERE c.year >= ? AND c.year <= ? AND c.type IN (?,?)`, stmt.SQL)
	assert.Equal(t, []any{2020, 2023, "NOI", "CTSC"}, stmt.Params)

	_, ok = b.ContestPrefilter(filter.RecordFilter{Levels: []string{"金牌"}})
	assert.False(t, ok)
}

func TestVerificationFetch(t *testing.T) {
	stmt := NewBuilder(SQLite).VerificationFetch([]int64{4, 5})
	assert.Equal(t, `SELECT r.oier_uid, r.contest_id, r.level, r.score, r.rank, r.province, r.school_id, c.year, c.fall_semester, c.type `+
		`FROM "Record" r JOIN "Contest" c ON r.contest_id = c.id WHERE r.oier_uid IN (?,?)`, stmt.SQL)
	assert.Equal(t, []any{int64(4), int64(5)}, stmt.Params)
}

func TestPersonByIDs(t *testing.T) {
	b := NewBuilder(SQLite)
	person := &filter.OIerFilter{Initials: []string{"ZS", "LS"}}

	stmt := b.PersonByIDs(person, []int64{1, 2})
	assert.Equal(t, `SELECT * FROM "OIer" o WHERE o.initials IN (?,?) AND o.uid IN (?,?)`, stmt.SQL)
	assert.Equal(t, 2, stmt.FilterParamCount)

	stmt = b.PersonByIDs(nil, []int64{1})
	assert.Equal(t, `SELECT * FROM "OIer" o WHERE o.uid = ?`, stmt.SQL)
	assert.Equal(t, 0, stmt.FilterParamCount)
}

func TestPersonScan(t *testing.T) {
	b := NewBuilder(SQLite)

	stmt := b.PersonScan(filter.OIerFilter{EnrollMin: ptr(2018), MinOIerDBScore: ptr(50.0)}, 10)
	assert.Equal(t, `SELECT * FROM "OIer" o WHERE o.enroll_middle >= ? AND o.oierdb_score >= ? ORDER BY o.uid ASC LIMIT ?`, stmt.SQL)
	assert.Equal(t, []any{2018, 50.0, 10}, stmt.Params)
	assert.Equal(t, 2, stmt.FilterParamCount)

	stmt = b.PersonScan(filter.OIerFilter{}, 100)
	assert.Equal(t, `SELECT * FROM "OIer" o ORDER BY o.uid ASC LIMIT ?`, stmt.SQL)
}
