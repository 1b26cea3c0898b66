package core

import (
	"time"

	"github.com/rushteam/scholarrec/pkg/utils"
)

// RecommendContext 承载单次推荐请求的用户/实验/时间信息，贯穿整个 Pipeline 透传。
// Pipeline 本身无状态：所有请求级数据都挂在这里。
type RecommendContext struct {
	UserID string

	// User 是装配好的用户画像（profile.Builder 产出），打分必需。
	User *UserProfile

	// Weights 是本次请求使用的权重向量（实验管理器产出）。
	Weights AlgorithmWeights

	// VariantID 是本次请求命中的实验变体，无实验时为 "control"。
	VariantID string

	// ExcludeIDs 是请求方显式排除的内容 ID。
	ExcludeIDs []string

	// Now 固定本次请求的时间基准，保证各节点的时间计算一致且可测试。
	// 零值表示使用 time.Now()。
	Now time.Time

	// Labels 是用户级标签，可驱动 Pipeline 行为（新用户、重度用户等）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数。
	Params map[string]any
}

// At 返回请求的时间基准。
func (rctx *RecommendContext) At() time.Time {
	if rctx.Now.IsZero() {
		return time.Now()
	}
	return rctx.Now
}

// EffectiveWeights 返回本次请求的权重，未设置时回退到对照组权重。
func (rctx *RecommendContext) EffectiveWeights() AlgorithmWeights {
	zero := AlgorithmWeights{}
	if rctx.Weights == zero {
		return ControlWeights()
	}
	return rctx.Weights
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}
