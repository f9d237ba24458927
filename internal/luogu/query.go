package luogu

// ContestMapping 洛谷比赛名 → Contest.type，出现在这里的都算 NOI 系列
var ContestMapping = map[string]string{
	"CSP-J":    "CSP入门",
	"CSP-S":    "CSP提高",
	"NOIP 普及组": "NOIP普及",
	"NOIP 提高组": "NOIP提高",
	"NOIP":     "NOIP",
	"NOI 冬令营":  "WC",
	"NOI 夏令营":  "NOID类",
	"NOI":      "NOI",
	"APIO":     "APIO",
	"APIO 线上":  "APIO",
	"CTSC":     "CTSC",
}

// LevelMapping 洛谷奖项名 → Record.level
var LevelMapping = map[string]string{
	"金牌":  "金牌",
	"银牌":  "银牌",
	"铜牌":  "铜牌",
	"一等奖": "一等奖",
	"二等奖": "二等奖",
	"三等奖": "三等奖",
}

// QueryPayload 可直接提交给 /query-oier 的请求体
type QueryPayload struct {
	RecordFilters []map[string]any `json:"record_filters"`
	OIerFilters   map[string]any   `json:"oier_filters"`
}

// ToQuery 把 NOI 系列奖项转为记录过滤器；比赛或奖项无法映射的跳过。
// 有分数/名次时作为精确区间写入
func ToQuery(prizes []Prize) QueryPayload {
	payload := QueryPayload{
		RecordFilters: []map[string]any{},
		OIerFilters:   map[string]any{},
	}
	for _, p := range prizes {
		if !p.IsNOISeries {
			continue
		}
		contestType, ok := ContestMapping[p.ContestName]
		if !ok {
			continue
		}
		level, ok := LevelMapping[p.PrizeLevel]
		if !ok {
			continue
		}
		f := map[string]any{
			"contest_type": contestType,
			"level":        level,
		}
		if p.Year != nil {
			f["year"] = *p.Year
		}
		if p.Score != nil {
			f["min_score"] = *p.Score
			f["max_score"] = *p.Score
		}
		if p.Rank != nil {
			f["min_rank"] = *p.Rank
			f["max_rank"] = *p.Rank
		}
		payload.RecordFilters = append(payload.RecordFilters, f)
	}
	return payload
}
