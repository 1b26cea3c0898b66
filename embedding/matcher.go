package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/pkg/utils"
)

// 语义召回默认参数。相似度阈值 0.6 以下的结果对推荐没有意义，直接丢弃。
const (
	DefaultTopK          = 20
	DefaultMinSimilarity = 0.6
	DefaultTimeout       = 400 * time.Millisecond
)

// Matcher 基于向量检索做语义召回：把用户兴趣拼成查询文本，
// 过 Embedder 得到向量后在向量服务里找近邻。
//
// 语义召回是锦上添花的一路：依赖缺失、无兴趣、检索超时或出错时
// 一律返回空列表而非错误，主链路不受影响。
type Matcher struct {
	Vector   core.VectorService
	Embedder core.Embedder

	// Collection 是向量集合名，按候选类型区分（如 "posts"、"papers"）。
	Collection string

	TopK          int
	MinSimilarity float64
	Timeout       time.Duration
}

// Match 返回与用户兴趣语义相近的候选，score = similarity × 100。
func (m *Matcher) Match(ctx context.Context, rctx *core.RecommendContext, itemType core.ItemType) ([]*core.Item, error) {
	if m == nil || m.Vector == nil || m.Embedder == nil {
		return nil, nil
	}
	if rctx == nil || rctx.User == nil || len(rctx.User.Interests) == 0 {
		return nil, nil
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	searchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	query := strings.Join(rctx.User.Interests, " ")
	vec, err := m.Embedder.Embed(searchCtx, query)
	if err != nil || len(vec) == 0 {
		return nil, nil
	}

	topK := m.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	minSim := m.MinSimilarity
	if minSim <= 0 {
		minSim = DefaultMinSimilarity
	}

	exclude := make([]string, 0, len(rctx.ExcludeIDs))
	exclude = append(exclude, rctx.ExcludeIDs...)
	exclude = append(exclude, rctx.User.SeenItemIDs()...)

	result, err := m.Vector.Search(searchCtx, &core.VectorSearchRequest{
		Collection:    m.collection(itemType),
		Vector:        vec,
		TopK:          topK,
		MinSimilarity: minSim,
		ExcludeIDs:    exclude,
	})
	if err != nil || result == nil {
		return nil, nil
	}

	items := make([]*core.Item, 0, len(result.Items))
	for _, hit := range result.Items {
		if hit.Similarity < minSim {
			continue
		}
		it := &core.Item{
			ID:    hit.ID,
			Type:  itemType,
			Score: hit.Similarity * 100,
		}
		it.AddReason(fmt.Sprintf("Semantically similar to your interests (%.0f%% match)", hit.Similarity*100))
		it.PutLabel("recall_source", utils.Label{Value: "embedding", Source: "embedding"})
		items = append(items, it)
	}
	return items, nil
}

func (m *Matcher) collection(itemType core.ItemType) string {
	if m.Collection != "" {
		return m.Collection
	}
	switch itemType {
	case core.ItemTypePaper:
		return "papers"
	default:
		return "posts"
	}
}
