package core

import (
	"encoding/json"
	"fmt"
	"math"
)

// AlgorithmWeights 是打分/合并使用的六维权重向量。
// 各权重独立取值（≥ 0），不要求归一化；AB 实验通过切换权重向量调整策略。
type AlgorithmWeights struct {
	Content    float64 `json:"content" yaml:"content"`       // 内容分（兴趣 × 标签/关键词）
	Social     float64 `json:"social" yaml:"social"`         // 社交分（关注作者）
	Engagement float64 `json:"engagement" yaml:"engagement"` // 互动分（reactions/views）
	Recency    float64 `json:"recency" yaml:"recency"`       // 新鲜度分（时间衰减）
	Quality    float64 `json:"quality" yaml:"quality"`       // 质量分（引用/评审/发表）
	Embedding  float64 `json:"embedding" yaml:"embedding"`   // 语义相似列表的合并权重
}

// ControlWeights 返回对照组权重：各维度等权。
// 无实验可用或实验簿记失败时，统一回退到该向量。
func ControlWeights() AlgorithmWeights {
	return AlgorithmWeights{
		Content:    1.0,
		Social:     1.0,
		Engagement: 1.0,
		Recency:    1.0,
		Quality:    1.0,
		Embedding:  1.0,
	}
}

// Validate 检查每个权重均为非负的有限实数。
func (w AlgorithmWeights) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s is not finite: %v", name, v)
		}
		if v < 0 {
			return fmt.Errorf("weight %s must be >= 0, got %v", name, v)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"content", w.Content},
		{"social", w.Social},
		{"engagement", w.Engagement},
		{"recency", w.Recency},
		{"quality", w.Quality},
		{"embedding", w.Embedding},
	} {
		if err := check(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// ParseWeights 从持久化的 JSON 配置解析权重并在加载时校验。
// 解析或校验失败返回错误，由调用方决定回退策略。
func ParseWeights(data []byte) (AlgorithmWeights, error) {
	var w AlgorithmWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return AlgorithmWeights{}, fmt.Errorf("parse weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return AlgorithmWeights{}, err
	}
	return w, nil
}

// WeightsOrControl 解析持久化权重，损坏的配置回退到对照组权重而不是让请求失败。
func WeightsOrControl(data []byte) AlgorithmWeights {
	w, err := ParseWeights(data)
	if err != nil {
		return ControlWeights()
	}
	return w
}
