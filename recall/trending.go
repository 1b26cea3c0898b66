package recall

import (
	"context"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/pkg/utils"
)

// Trending 是趋势召回源：从有序集合读取按互动热度维护的内容 TopN。
// 集合由平台侧的互动事件维护（ZAdd），这里只消费。
// Store 为空或读取失败时返回空结果，不中断其他召回源。
type Trending struct {
	Store core.KeyValueStore

	// Key 是有序集合的 key，例如 "trending:posts"。
	Key string

	// Type 是该集合内的内容类型。
	Type core.ItemType

	// TopN 默认 50。
	TopN int
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Trending) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || r.Key == "" {
		return nil, nil
	}

	topN := int64(r.TopN)
	if topN <= 0 {
		topN = 50
	}

	members, err := r.Store.ZRange(ctx, r.Key, 0, topN-1)
	if err != nil || len(members) == 0 {
		return nil, nil
	}

	out := make([]*core.Item, 0, len(members))
	for _, id := range members {
		it := core.NewItem(id, r.Type)
		it.PutLabel("recall_source", utils.Label{Value: "trending", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
