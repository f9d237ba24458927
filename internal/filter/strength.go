package filter

// Tier 比赛类型的级别，数字越小参赛人数越少
type Tier int

const (
	TierNational   Tier = 1 // NOI/WC/CTSC/APIO 等国家级赛事
	TierProvincial Tier = 2 // NOIP提高/CSP提高
	TierEntry      Tier = 3 // NOIP普及/CSP入门
	TierUnknown    Tier = 10
)

// DefaultTiers 比赛类型到级别的映射，键与 Contest.type 取值一致
func DefaultTiers() map[string]Tier {
	return map[string]Tier{
		"NOI":    TierNational,
		"NOID类":  TierNational,
		"WC":     TierNational,
		"CTSC":   TierNational,
		"CTT":    TierNational,
		"APIO":   TierNational,
		"IOI":    TierNational,
		"NOIP提高": TierProvincial,
		"CSP提高":  TierProvincial,
		"NOIP":   TierProvincial,
		"NOIP普及": TierEntry,
		"CSP入门":  TierEntry,
	}
}

// Weights 查询强度评分表
type Weights struct {
	ContestID int
	SchoolID  int
	Name      int // 选手姓名/首字母
	Year      int
	Province  int
	Level     int
	Score     int
	Rank      int
	Enroll    int
	TierBonus map[Tier]int // 按比赛级别加分，未列出的级别按 TierUnknown 取值
	Tiers     map[string]Tier
}

// DefaultWeights 默认评分表
func DefaultWeights() Weights {
	return Weights{
		ContestID: 10,
		SchoolID:  8,
		Name:      10,
		Year:      3,
		Province:  2,
		Level:     1,
		Score:     1,
		Rank:      1,
		Enroll:    1,
		TierBonus: map[Tier]int{
			TierNational:   5,
			TierProvincial: 3,
			TierEntry:      1,
			TierUnknown:    1,
		},
		Tiers: DefaultTiers(),
	}
}

// Scorer 计算过滤器的区分度分数，用作准入门槛
type Scorer struct {
	w Weights
}

// NewScorer 创建 Scorer
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// TierOf 比赛类型的级别
func (s *Scorer) TierOf(contestType string) Tier {
	if t, ok := s.w.Tiers[contestType]; ok {
		return t
	}
	return TierUnknown
}

// Record 单个记录过滤器的强度
func (s *Scorer) Record(f RecordFilter) int {
	score := 0
	if len(f.ContestIDs) > 0 {
		score += s.w.ContestID
	}
	if len(f.SchoolIDs) > 0 {
		score += s.w.SchoolID
	}
	if f.HasYearCondition() {
		score += s.w.Year
	}
	if len(f.Provinces) > 0 {
		score += s.w.Province
	}
	if len(f.Levels) > 0 {
		score += s.w.Level
	}
	if f.MinScore != nil || f.MaxScore != nil {
		score += s.w.Score
	}
	if f.MinRank != nil || f.MaxRank != nil {
		score += s.w.Rank
	}
	for _, t := range f.ContestTypes {
		score += s.w.TierBonus[s.TierOf(t)]
	}
	return score
}

// OIer 选手过滤器的强度
func (s *Scorer) OIer(f OIerFilter) int {
	score := 0
	if len(f.Initials) > 0 || len(f.Names) > 0 {
		score += s.w.Name
	}
	if f.EnrollMin != nil || f.EnrollMax != nil {
		score += s.w.Enroll
	}
	return score
}

// Total 整个请求的强度
func (s *Scorer) Total(records []RecordFilter, person OIerFilter) int {
	total := s.OIer(person)
	for _, f := range records {
		total += s.Record(f)
	}
	return total
}
