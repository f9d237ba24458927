package luogu

import (
	"cmp"
	"encoding/json"
	"slices"

	"OIerFinder/internal/model"

	"gorm.io/datatypes"
)

// Prize 一条洛谷线下奖项。ID 为 0 表示尚未入库
type Prize struct {
	ID          uint64          `json:"id,omitempty"`
	LuoguUID    int64           `json:"luogu_uid"`
	ContestName string          `json:"contest_name"`
	PrizeLevel  string          `json:"prize_level"`
	Year        *int            `json:"year"`
	Score       *float64        `json:"score"`
	Rank        *int            `json:"rank"`
	Event       *string         `json:"event"`
	IsNOISeries bool            `json:"is_noi_series"`
	Raw         json.RawMessage `json:"-"`
}

// FromModel 入库记录转 Prize
func FromModel(m *model.LuoguPrize) Prize {
	return Prize{
		ID:          m.ID,
		LuoguUID:    m.LuoguUID,
		ContestName: m.ContestName,
		PrizeLevel:  m.PrizeLevel,
		Year:        m.Year,
		Score:       m.Score,
		Rank:        m.Rank,
		Event:       m.Event,
		IsNOISeries: m.IsNOISeries,
		Raw:         json.RawMessage(m.Raw),
	}
}

// ToModel Prize 转入库记录
func (p Prize) ToModel() *model.LuoguPrize {
	return &model.LuoguPrize{
		ID:          p.ID,
		LuoguUID:    p.LuoguUID,
		ContestName: p.ContestName,
		PrizeLevel:  p.PrizeLevel,
		Year:        p.Year,
		Score:       p.Score,
		Rank:        p.Rank,
		Event:       p.Event,
		IsNOISeries: p.IsNOISeries,
		Raw:         datatypes.JSON(p.Raw),
	}
}

// NOIOnly 只保留 NOI 系列奖项
func NOIOnly(prizes []Prize) []Prize {
	out := make([]Prize, 0, len(prizes))
	for _, p := range prizes {
		if p.IsNOISeries {
			out = append(out, p)
		}
	}
	return out
}

// SortForDisplay 年份降序（无年份按 0），同年按比赛名升序
func SortForDisplay(prizes []Prize) {
	slices.SortStableFunc(prizes, func(a, b Prize) int {
		if c := cmp.Compare(yearOf(b), yearOf(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ContestName, b.ContestName)
	})
}

func yearOf(p Prize) int {
	if p.Year == nil {
		return 0
	}
	return *p.Year
}
