package core

// RecommendationScore 是面向调用方的打分结果值对象。
// 它与候选内容本体（Item）分离：响应装配时从 Item 提取，
// 不把打分字段拼接到内容记录上。
type RecommendationScore struct {
	ItemID   string   `json:"item_id"`
	ItemType ItemType `json:"item_type"`
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
}

// ScoreOf 从打分后的 Item 提取 RecommendationScore。
// score > 0 而无归因时补一条通用归因，保证 Reasons 非空。
func ScoreOf(it *Item) RecommendationScore {
	reasons := append([]string(nil), it.Reasons...)
	if len(reasons) == 0 && it.Score > 0 {
		reasons = []string{GenericReason}
	}
	return RecommendationScore{
		ItemID:   it.ID,
		ItemType: it.Type,
		Score:    it.Score,
		Reasons:  reasons,
	}
}

// GenericReason 是打分归因的兜底文案。
const GenericReason = "Suggested for you"
