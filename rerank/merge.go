package rerank

import (
	"sort"

	"github.com/rushteam/scholarrec/core"
)

// RankedList 是一路打分结果及其合并权重（基础打分、语义相似、跨域等）。
type RankedList struct {
	Name   string
	Weight float64 // <= 0 时按 1.0 处理
	Items  []*core.Item
}

// MergeLists 把多路排好序的列表合并为一个去重的加权排名：
//
//	首次出现：score = newScore * weight
//	再次出现：score = (existingScore + newScore*weight) / 2
//
// 取平均而不是累加：同一候选出现在多路来源时不会仅凭“到处都有”
// 就压过单路高分结果。Reasons 按出现顺序去重合并。
// 合并后按分数降序截断到 limit；同分按首次插入顺序保持稳定。
func MergeLists(lists []RankedList, limit int) []*core.Item {
	type slot struct {
		item  *core.Item
		order int // 首次插入顺序，平分时的稳定次序
	}
	merged := make(map[string]*slot)
	order := 0

	for _, list := range lists {
		weight := list.Weight
		if weight <= 0 {
			weight = 1.0
		}
		for _, it := range list.Items {
			if it == nil {
				continue
			}
			if s, ok := merged[it.ID]; ok {
				s.item.Score = (s.item.Score + it.Score*weight) / 2
				for _, r := range it.Reasons {
					s.item.AddReason(r)
				}
				for k, v := range it.Labels {
					s.item.PutLabel(k, v)
				}
				continue
			}
			cp := it.Clone()
			cp.Score = it.Score * weight
			merged[it.ID] = &slot{item: cp, order: order}
			order++
		}
	}

	slots := make([]*slot, 0, len(merged))
	for _, s := range merged {
		slots = append(slots, s)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].item.Score != slots[j].item.Score {
			return slots[i].item.Score > slots[j].item.Score
		}
		return slots[i].order < slots[j].order
	})

	if limit > 0 && len(slots) > limit {
		slots = slots[:limit]
	}
	out := make([]*core.Item, len(slots))
	for i, s := range slots {
		out[i] = s.item
	}
	return out
}
