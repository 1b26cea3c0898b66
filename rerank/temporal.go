package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/pkg/utils"
)

// TemporalNode 是时间维度个性化节点：从用户的互动时间记录推导
// “这个时段通常读什么”，对已排序列表做乘性调权后重排。
//
// 窗口规则：取最近 WindowSize 条记录中，小时在当前 ±2（按 24 小时回绕）
// 且星期几相同的记录。窗口内无记录时返回中性画像，节点为 no-op。
type TemporalNode struct {
	Engagement core.EngagementStore

	// WindowSize 是参与推导的最近记录条数，默认 50。
	WindowSize int
}

// 调权常数：类型命中 ×1.2，每个标签命中 ×1.1（叠乘上限由标签数自然限制）。
const (
	typeBoostFactor    = 1.2
	tagBoostPerOverlap = 0.1
	maxPreferredTags   = 10
	defaultWindowSize  = 50
)

// TimeProfile 是某一时段的偏好画像。
type TimeProfile struct {
	PreferredTags         []string
	PreferredContentTypes []core.ItemType
	EngagementBoost       float64 // 全局乘数，中性为 1.0
}

// Neutral 判断画像是否中性（无调权作用）。
func (p TimeProfile) Neutral() bool {
	return p.EngagementBoost == 1.0 && len(p.PreferredTags) == 0 && len(p.PreferredContentTypes) == 0
}

func (n *TemporalNode) Name() string        { return "rerank.temporal" }
func (n *TemporalNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TemporalNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Engagement == nil || rctx == nil || rctx.UserID == "" || len(items) == 0 {
		return items, nil
	}

	window := n.WindowSize
	if window <= 0 {
		window = defaultWindowSize
	}
	records, err := n.Engagement.RecentEngagement(ctx, rctx.UserID, window)
	if err != nil {
		// 互动记录不可用时个性化退化为 no-op，不影响主链路
		return items, nil
	}

	now := rctx.At()
	profile := BuildTimeProfile(records, now.Hour(), int(now.Weekday()))
	if profile.Neutral() {
		return items, nil
	}

	preferredTags := make(map[string]bool, len(profile.PreferredTags))
	for _, t := range profile.PreferredTags {
		preferredTags[t] = true
	}
	preferredTypes := make(map[core.ItemType]bool, len(profile.PreferredContentTypes))
	for _, t := range profile.PreferredContentTypes {
		preferredTypes[t] = true
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score *= profile.EngagementBoost

		if preferredTypes[it.Type] {
			it.Score *= typeBoostFactor
			it.AddReason("Fits your usual reading time")
		}

		overlap := 0
		for _, tag := range it.Tags {
			if preferredTags[tag] {
				overlap++
			}
		}
		if overlap > 0 {
			it.Score *= 1.0 + tagBoostPerOverlap*float64(overlap)
			it.AddReason("Topics you engage with at this hour")
		}
		it.PutLabel("temporal_boost", utils.Label{Value: "applied", Source: "rerank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// BuildTimeProfile 从互动记录聚合出 (hour, weekday) 时段的偏好画像。
// 只统计小时 ±2（回绕）且星期几相同的记录；各记录按其互动得分加权。
func BuildTimeProfile(records []*core.EngagementTimeRecord, hour, weekday int) TimeProfile {
	neutral := TimeProfile{EngagementBoost: 1.0}

	tagWeight := make(map[string]float64)
	typeWeight := make(map[core.ItemType]float64)
	var sum float64
	count := 0

	for _, rec := range records {
		if rec == nil || rec.DayOfWeek != weekday || !hourWithin(rec.HourOfDay, hour, 2) {
			continue
		}
		count++
		sum += rec.EngagementScore
		for _, tag := range rec.Tags {
			tagWeight[tag] += rec.EngagementScore
		}
		if rec.ContentType != "" {
			typeWeight[rec.ContentType] += rec.EngagementScore
		}
	}
	if count == 0 {
		return neutral
	}

	avg := sum / float64(count)

	tags := make([]string, 0, len(tagWeight))
	for t := range tagWeight {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tagWeight[tags[i]] != tagWeight[tags[j]] {
			return tagWeight[tags[i]] > tagWeight[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > maxPreferredTags {
		tags = tags[:maxPreferredTags]
	}

	types := make([]core.ItemType, 0, len(typeWeight))
	for t := range typeWeight {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if typeWeight[types[i]] != typeWeight[types[j]] {
			return typeWeight[types[i]] > typeWeight[types[j]]
		}
		return types[i] < types[j]
	})

	return TimeProfile{
		PreferredTags:         tags,
		PreferredContentTypes: types,
		EngagementBoost:       1.0 + (avg/10)*0.5,
	}
}

// hourWithin 判断 h 是否在 center ±delta 内（按 24 小时回绕）。
func hourWithin(h, center, delta int) bool {
	diff := (h - center + 24) % 24
	return diff <= delta || diff >= 24-delta
}
