package filter

import (
	"context"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/pkg/utils"
)

// FilterNode 组合多个过滤器：任何一个返回 true，该候选就被剔除。
// 单个过滤器出错时跳过该过滤器，不中断链路。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}

		keep := true
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if ok {
				keep = false
				item.PutLabel("filtered", utils.Label{Value: "true", Source: f.Name()})
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}

	return out, nil
}
