// Package builders 在 init 中注册内置 Node 的配置构建器。
// 配置驱动的部署在入口处空导入本包即可。
package builders

import (
	"time"

	"github.com/rushteam/scholarrec/config"
	"github.com/rushteam/scholarrec/filter"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/pkg/conv"
	"github.com/rushteam/scholarrec/rank"
	"github.com/rushteam/scholarrec/recall"
	"github.com/rushteam/scholarrec/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.scorer", BuildScorerNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildFanoutNode 构建多路召回节点。召回源依赖外部存储，
// 无法从纯配置构建，需要通过 WithSources 之类的装配逻辑注入；
// 这里只消费并发与去重参数。
func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	fanout := &recall.Fanout{
		Dedup: conv.ConfigGet(cfg, "dedup", true),
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

// BuildFilterNode 构建过滤节点，支持静态排除列表。
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["exclude_ids"])
	return &filter.FilterNode{
		Filters: []filter.Filter{filter.NewExcludeFilter(ids...)},
	}, nil
}

// BuildScorerNode 构建多因子打分节点。
func BuildScorerNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &rank.ScorerNode{}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		node.MaxConcurrent = int(n)
	}
	if n := conv.ConfigGetInt64(cfg, "parallel_threshold", 0); n > 0 {
		node.ParallelThreshold = int(n)
	}
	return node, nil
}

// BuildTopNNode 构建截断节点。
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: int(conv.ConfigGetInt64(cfg, "n", 0)),
	}, nil
}
