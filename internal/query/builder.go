package query

import (
	"strings"

	"OIerFinder/internal/filter"
)

// Dialect 不同存储引擎的语法差异
type Dialect struct {
	Name string
	// Unlimited 显式取消行数上限的写法，用于候选记录物化阶段
	Unlimited string
}

var (
	Postgres = Dialect{Name: "postgres", Unlimited: "LIMIT ALL"}
	SQLite   = Dialect{Name: "sqlite", Unlimited: "LIMIT -1"}
)

// DialectFor 按数据库驱动名选方言
func DialectFor(driver string) Dialect {
	if driver == SQLite.Name {
		return SQLite
	}
	return Postgres
}

// Statement 编译好的参数化语句
type Statement struct {
	SQL    string
	Params []any
	// FilterParamCount 过滤器自身条件占用的参数位，不含候选 ID 列表
	FilterParamCount int
}

// Builder 把规范化过滤器编译为 Record/Contest/OIer 上的查询
type Builder struct {
	dialect Dialect
}

// NewBuilder 创建 Builder
func NewBuilder(d Dialect) *Builder {
	return &Builder{dialect: d}
}

const verificationColumns = "r.oier_uid, r.contest_id, r.level, r.score, r.rank, r.province, r.school_id, c.year, c.fall_semester, c.type"

// recordWhere Record 表上的条件
func recordWhere(f filter.RecordFilter) Where {
	var w Where
	In(&w, "r.level", f.Levels)
	if f.MinScore != nil {
		w.Gte("r.score", *f.MinScore)
	}
	if f.MaxScore != nil {
		w.Lte("r.score", *f.MaxScore)
	}
	if f.MinRank != nil {
		w.Gte("r.rank", *f.MinRank)
	}
	if f.MaxRank != nil {
		w.Lte("r.rank", *f.MaxRank)
	}
	In(&w, "r.province", f.Provinces)
	In(&w, "r.school_id", f.SchoolIDs)
	In(&w, "r.contest_id", f.ContestIDs)
	return w
}

// contestWhere Contest 表上的条件
func contestWhere(f filter.RecordFilter) Where {
	var w Where
	if len(f.Years) > 0 {
		In(&w, "c.year", f.Years)
	} else {
		if f.YearStart != nil {
			w.Gte("c.year", *f.YearStart)
		}
		if f.YearEnd != nil {
			w.Lte("c.year", *f.YearEnd)
		}
	}
	if f.FallSemester != nil {
		w.Eq("c.fall_semester", *f.FallSemester)
	}
	In(&w, "c.type", f.ContestTypes)
	return w
}

// PersonWhere OIer 表上的条件（别名 o）
func PersonWhere(p filter.OIerFilter) Where {
	var w Where
	In(&w, "o.gender", p.Genders)
	if p.EnrollMin != nil {
		w.Gte("o.enroll_middle", *p.EnrollMin)
	}
	if p.EnrollMax != nil {
		w.Lte("o.enroll_middle", *p.EnrollMax)
	}
	In(&w, "o.initials", p.Initials)
	In(&w, "o.name", p.Names)
	if p.MinOIerDBScore != nil {
		w.Gte("o.oierdb_score", *p.MinOIerDBScore)
	}
	return w
}

// FilterParamCount 过滤器自身需要的参数位
func FilterParamCount(f filter.RecordFilter) int {
	return recordWhere(f).ParamCount() + contestWhere(f).ParamCount()
}

// Subquery 编译一个记录过滤器，返回命中的不同选手 ID。
//
// candidates 为 nil 时走无约束模式：直接在 Record 全表上过滤，需要时关联 Contest；
// person 非 nil 时关联 OIer 做提前剪枝。
// candidates 非 nil 时走约束模式：先物化候选选手的全部记录（显式取消行数上限），
// 再在物化结果上应用其余条件；此模式忽略 person。
func (b *Builder) Subquery(f filter.RecordFilter, candidates []int64, person *filter.OIerFilter) Statement {
	rw := recordWhere(f)
	cw := contestWhere(f)
	own := rw.ParamCount() + cw.ParamCount()

	var sb strings.Builder
	var params []any

	if candidates != nil {
		var idw Where
		In(&idw, "r.oier_uid", candidates)
		idSQL, idParams := idw.Compile()
		sb.WriteString(`WITH cand AS (SELECT r.oier_uid, r.contest_id, r.level, r.score, r.rank, r.province, r.school_id FROM "Record" r`)
		if idSQL != "" {
			sb.WriteString(" WHERE " + idSQL)
		}
		sb.WriteString(" " + b.dialect.Unlimited + ") ")
		sb.WriteString("SELECT DISTINCT r.oier_uid FROM cand r")
		params = append(params, idParams...)
		person = nil
	} else {
		sb.WriteString(`SELECT DISTINCT r.oier_uid FROM "Record" r`)
	}

	if len(cw) > 0 {
		sb.WriteString(` JOIN "Contest" c ON r.contest_id = c.id`)
	}
	var pw Where
	if person != nil {
		pw = PersonWhere(*person)
		if len(pw) > 0 {
			sb.WriteString(` JOIN "OIer" o ON r.oier_uid = o.uid`)
		}
	}

	where := make(Where, 0, len(rw)+len(cw)+len(pw))
	where = append(where, rw...)
	where = append(where, cw...)
	where = append(where, pw...)
	whereSQL, whereParams := where.Compile()
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}
	params = append(params, whereParams...)

	return Statement{SQL: sb.String(), Params: params, FilterParamCount: own}
}

// ContestPrefilter 把年份/学期/类型条件解析为比赛 ID 的查询；过滤器没有这些条件时 ok=false
func (b *Builder) ContestPrefilter(f filter.RecordFilter) (Statement, bool) {
	cw := contestWhere(f)
	if len(cw) == 0 {
		return Statement{}, false
	}
	whereSQL, params := cw.Compile()
	return Statement{
		SQL:              `SELECT c.id FROM "Contest" c WHERE ` + whereSQL,
		Params:           params,
		FilterParamCount: len(params),
	}, true
}

// VerificationFetch 拉取一批候选选手的全部 Record ⋈ Contest 行
func (b *Builder) VerificationFetch(ids []int64) Statement {
	var w Where
	In(&w, "r.oier_uid", ids)
	whereSQL, params := w.Compile()
	return Statement{
		SQL: `SELECT ` + verificationColumns + ` FROM "Record" r JOIN "Contest" c ON r.contest_id = c.id WHERE ` + whereSQL,
		Params: params,
	}
}

// PersonByIDs 按 ID 列表取选手行，同时应用选手条件
func (b *Builder) PersonByIDs(p *filter.OIerFilter, ids []int64) Statement {
	var w Where
	if p != nil {
		w = PersonWhere(*p)
	}
	own := w.ParamCount()
	In(&w, "o.uid", ids)
	whereSQL, params := w.Compile()
	return Statement{
		SQL:              `SELECT * FROM "OIer" o WHERE ` + whereSQL,
		Params:           params,
		FilterParamCount: own,
	}
}

// PersonScan 没有任何记录过滤器时直接扫描 OIer 表，按 ID 升序并在后端截断
func (b *Builder) PersonScan(p filter.OIerFilter, limit int) Statement {
	w := PersonWhere(p)
	whereSQL, params := w.Compile()
	sql := `SELECT * FROM "OIer" o`
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
	}
	sql += " ORDER BY o.uid ASC LIMIT ?"
	return Statement{
		SQL:              sql,
		Params:           append(params, limit),
		FilterParamCount: len(params),
	}
}
