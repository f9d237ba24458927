package filter

// RecordFilter 规范化后的记录过滤器。单复数别名已合并为切片，
// 指针字段为 nil 表示该条件不存在。
//
// 不变式：Years 非空时 YearStart/YearEnd 均为 nil。
type RecordFilter struct {
	Levels       []string
	MinScore     *float64
	MaxScore     *float64
	MinRank      *int
	MaxRank      *int
	Provinces    []string
	SchoolIDs    []int64
	ContestIDs   []int64
	Years        []int
	YearStart    *int
	YearEnd      *int
	FallSemester *bool
	ContestTypes []string
}

// HasContestCondition 是否包含需要关联 Contest 表的条件
func (f *RecordFilter) HasContestCondition() bool {
	return len(f.Years) > 0 || f.YearStart != nil || f.YearEnd != nil ||
		f.FallSemester != nil || len(f.ContestTypes) > 0
}

// HasYearCondition 是否限定了年份
func (f *RecordFilter) HasYearCondition() bool {
	return len(f.Years) > 0 || f.YearStart != nil || f.YearEnd != nil
}

// hasDiscriminator 除年份外是否还有任何条件
func (f *RecordFilter) hasDiscriminator() bool {
	return len(f.Levels) > 0 || f.MinScore != nil || f.MaxScore != nil ||
		f.MinRank != nil || f.MaxRank != nil || len(f.Provinces) > 0 ||
		len(f.SchoolIDs) > 0 || len(f.ContestIDs) > 0 ||
		f.FallSemester != nil || len(f.ContestTypes) > 0
}

// Clone 深拷贝，规划器改写种子过滤器时使用
func (f RecordFilter) Clone() RecordFilter {
	out := f
	out.Levels = append([]string(nil), f.Levels...)
	out.Provinces = append([]string(nil), f.Provinces...)
	out.SchoolIDs = append([]int64(nil), f.SchoolIDs...)
	out.ContestIDs = append([]int64(nil), f.ContestIDs...)
	out.Years = append([]int(nil), f.Years...)
	out.ContestTypes = append([]string(nil), f.ContestTypes...)
	return out
}

// 性别编码：1 男，-1 女，0 未知
const (
	GenderMale    = 1
	GenderFemale  = -1
	GenderUnknown = 0
)

// OIerFilter 规范化后的选手过滤器
type OIerFilter struct {
	Genders        []int
	EnrollMin      *int
	EnrollMax      *int
	Initials       []string
	Names          []string // 已废弃的 name/names 输入，按姓名精确匹配
	MinOIerDBScore *float64
}

// IsEmpty 没有任何选手条件
func (f *OIerFilter) IsEmpty() bool {
	return len(f.Genders) == 0 && f.EnrollMin == nil && f.EnrollMax == nil &&
		len(f.Initials) == 0 && len(f.Names) == 0 && f.MinOIerDBScore == nil
}

// YearBounds 统计数据覆盖的年份范围
type YearBounds struct {
	Min int
	Max int
}
