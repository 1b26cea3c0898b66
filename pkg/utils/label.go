package utils

// Label 是推荐链路中的可解释标签：记录一个事实（值）和它的来源（阶段）。
// 与面向用户的 Reasons 不同，Label 服务于链路内部的 explain / 观测。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / rank / rerank / experiment ...
}

// MergeLabel 合并同名 Label，默认策略是保留历史、可追踪：
// Value 以 '|' 累积，Source 以 ',' 累积。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
