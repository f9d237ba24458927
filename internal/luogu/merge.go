package luogu

// contains container 是否"包含" content：content 中每个非空字段在 container 中都存在且相等
func contains(container, content Prize) bool {
	if content.ContestName != "" && container.ContestName != content.ContestName {
		return false
	}
	if content.PrizeLevel != "" && container.PrizeLevel != content.PrizeLevel {
		return false
	}
	return ptrCovers(container.Year, content.Year) &&
		ptrCovers(container.Score, content.Score) &&
		ptrCovers(container.Rank, content.Rank) &&
		ptrCovers(container.Event, content.Event)
}

func ptrCovers[T comparable](container, content *T) bool {
	if content == nil {
		return true
	}
	return container != nil && *container == *content
}

func coalesce[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

func coalesceString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// mergeMatched 两条匹配的奖项合成一条，优先取 existing 的非空字段
func mergeMatched(existing, incoming Prize) Prize {
	out := existing
	if out.ID == 0 {
		out.ID = incoming.ID
	}
	out.ContestName = coalesceString(existing.ContestName, incoming.ContestName)
	out.PrizeLevel = coalesceString(existing.PrizeLevel, incoming.PrizeLevel)
	out.Year = coalesce(existing.Year, incoming.Year)
	out.Score = coalesce(existing.Score, incoming.Score)
	out.Rank = coalesce(existing.Rank, incoming.Rank)
	out.Event = coalesce(existing.Event, incoming.Event)
	out.IsNOISeries = existing.IsNOISeries || incoming.IsNOISeries
	if len(out.Raw) == 0 {
		out.Raw = incoming.Raw
	}
	return out
}

// Merge 把远端奖项合并进已入库奖项：只积累、补全，不删除。
// 远端一条与某条已有记录互相包含时合并到该记录，否则追加
func Merge(remote, stored []Prize) []Prize {
	final := make([]Prize, len(stored), len(stored)+len(remote))
	copy(final, stored)
	for _, r := range remote {
		matched := false
		for i := range final {
			if contains(r, final[i]) || contains(final[i], r) {
				final[i] = mergeMatched(final[i], r)
				matched = true
				break
			}
		}
		if !matched {
			final = append(final, r)
		}
	}
	return final
}

// equal 内容相同（忽略 ID 与原始数据）
func equal(a, b Prize) bool {
	return a.ContestName == b.ContestName &&
		a.PrizeLevel == b.PrizeLevel &&
		ptrCovers(a.Year, b.Year) && ptrCovers(b.Year, a.Year) &&
		ptrCovers(a.Score, b.Score) && ptrCovers(b.Score, a.Score) &&
		ptrCovers(a.Rank, b.Rank) && ptrCovers(b.Rank, a.Rank) &&
		ptrCovers(a.Event, b.Event) && ptrCovers(b.Event, a.Event) &&
		a.IsNOISeries == b.IsNOISeries
}

// Diff 对比合并结果与原库：已入库且内容变化的进 updates，未入库的进 inserts，
// inserts 同时返回其在 final 中的下标，便于回填自增ID
func Diff(final, stored []Prize) (inserts, updates []Prize, insertAt []int) {
	byID := make(map[uint64]Prize, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}
	for i, p := range final {
		if orig, ok := byID[p.ID]; ok && p.ID != 0 {
			if !equal(p, orig) {
				updates = append(updates, p)
			}
			continue
		}
		inserts = append(inserts, p)
		insertAt = append(insertAt, i)
	}
	return inserts, updates, insertAt
}
