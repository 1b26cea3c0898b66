package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/scholarrec/core"
)

// Pipeline 是推荐链路的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// Pipeline 本身无状态，可被并发复用；请求级数据都在 RecommendContext 上。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		for _, h := range p.Hooks {
			h.BeforeNode(ctx, rctx, node, cur)
		}
		next, err := node.Process(ctx, rctx, cur)
		for _, h := range p.Hooks {
			h.AfterNode(ctx, rctx, node, next, err)
		}
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
