// Package scholarrec 是面向学术协作平台的内容推荐核心。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - 多因子打分: 内容/社交/互动/新鲜度/质量五个子分 × 可实验的权重向量
// - 实验驱动: 确定性分桶的 AB 实验切换权重，失败一律降级到对照组
// - 解释性: Reasons 全链路保留，score > 0 的结果永远带归因
package scholarrec

import "github.com/rushteam/scholarrec/pipeline"

// 轻量 facade：便于直接 import "scholarrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
