package recall

import (
	"context"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/pkg/utils"
)

// CandidateSource 从 CandidateStore 拉取一批指定类型的候选内容。
// 排除集 = 请求方的 excludeIds + 画像中已点赞/收藏的内容，
// 保证已消费内容不进入候选池。
type CandidateSource struct {
	Store core.CandidateStore

	// Type 是本源拉取的内容类型。
	Type core.ItemType

	// Limit 是候选池上限，<= 0 时使用 DefaultPoolSize。
	Limit int
}

// DefaultPoolSize 是候选池的默认上限。
const DefaultPoolSize = 100

func (r *CandidateSource) Name() string        { return "recall.candidates." + string(r.Type) }
func (r *CandidateSource) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *CandidateSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *CandidateSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}

	limit := r.Limit
	if limit <= 0 {
		limit = DefaultPoolSize
	}

	exclude := excludeSet(rctx)
	items, err := r.Store.FetchCandidates(ctx, r.Type, exclude, limit)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.PutLabel("recall_source", utils.Label{Value: "candidates", Source: "recall"})
	}
	return items, nil
}

// excludeSet 汇总请求排除集与画像已消费内容。
func excludeSet(rctx *core.RecommendContext) []string {
	if rctx == nil {
		return nil
	}
	out := append([]string(nil), rctx.ExcludeIDs...)
	if rctx.User != nil {
		out = append(out, rctx.User.SeenItemIDs()...)
	}
	return out
}
