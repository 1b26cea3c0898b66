package pipeline

import (
	"context"

	"github.com/rushteam/scholarrec/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成候选集
	KindFilter      Kind = "filter"      // 过滤阶段：剔除已看过/显式排除的候选
	KindRank        Kind = "rank"        // 排序阶段：多因子打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：时间个性化/截断等调优
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充信息或最终修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便召回生成、过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// Hook 在每个 Node 前后被调用，用于曝光记录、打点等横切逻辑。
// Hook 的错误不会中断链路。
type Hook interface {
	BeforeNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item)
	AfterNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item, err error)
}
