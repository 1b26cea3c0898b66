// Package service 是推荐核心的编排层：对外暴露
// GetRecommendations / SubmitFeedback 两个入口，内部把画像装配、
// 实验分桶、召回打分 Pipeline、语义召回、时间维度个性化、多路合并
// 与缓存层串起来。
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scholarrec/cache"
	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/embedding"
	"github.com/rushteam/scholarrec/experiment"
	"github.com/rushteam/scholarrec/feedback"
	"github.com/rushteam/scholarrec/filter"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/profile"
	"github.com/rushteam/scholarrec/rank"
	"github.com/rushteam/scholarrec/recall"
	"github.com/rushteam/scholarrec/rerank"
)

// RecommendType 是请求的内容范围。
type RecommendType string

const (
	RecommendPosts  RecommendType = "posts"
	RecommendPapers RecommendType = "papers"
	RecommendMixed  RecommendType = "mixed"
)

// DefaultLimit 是默认返回条数。
const DefaultLimit = 20

// Request 是一次推荐请求。
type Request struct {
	UserID     string        `json:"user_id"`
	Type       RecommendType `json:"type"`
	Limit      int           `json:"limit"`
	ExcludeIDs []string      `json:"exclude_ids,omitempty"`
	UseCache   bool          `json:"use_cache"`
}

// Response 是一次推荐响应。
type Response struct {
	Recommendations []core.RecommendationScore `json:"recommendations"`
	SessionID       string                     `json:"session_id"`
	VariantID       string                     `json:"variant_id"`
	Cached          bool                       `json:"cached"`
}

// Recommender 是推荐服务门面。所有依赖显式注入，
// 除 Profiles 和 Candidates 外都可以为 nil（对应能力降级关闭）。
type Recommender struct {
	Profiles   *profile.Builder
	Candidates core.CandidateStore

	Experiments *experiment.Manager
	Engagement  core.EngagementStore
	Cache       *cache.RecommendationCache
	Trending    core.KeyValueStore

	// Matchers 是按内容类型的语义召回器（可缺省）。
	Matchers map[core.ItemType]*embedding.Matcher

	Collector *feedback.Collector
	Logger    *zap.Logger

	// PoolSize 是每种类型的候选池上限，<= 0 时取 recall.DefaultPoolSize。
	PoolSize int
}

// GetRecommendations 生成推荐。用户画像不存在时返回 ErrUserNotFound。
func (r *Recommender) GetRecommendations(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.UserID == "" {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
			"service: user id is required")
	}
	switch req.Type {
	case RecommendPosts, RecommendPapers, RecommendMixed:
	case "":
		req.Type = RecommendMixed
	default:
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
			"service: unknown recommendation type "+string(req.Type))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	userProfile, err := r.Profiles.Build(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	variant := r.Experiments.GetVariant(ctx, userProfile)
	// 变体里落了非法权重时回退到对照组，不让请求失败
	weights := variant.Weights
	if err := weights.Validate(); err != nil || weights == (core.AlgorithmWeights{}) {
		weights = core.ControlWeights()
	}

	cacheKey := ""
	if req.UseCache && r.Cache != nil {
		cacheKey = r.Cache.Key(ctx, req.UserID, core.ItemType(req.Type), limit, variant.ID)
		if data, ok := r.Cache.Get(ctx, cacheKey); ok {
			var cached []core.RecommendationScore
			if err := json.Unmarshal(data, &cached); err == nil {
				logger.Debug("recommend: cache hit",
					zap.String("user_id", req.UserID), zap.String("type", string(req.Type)))
				return &Response{
					Recommendations: cached,
					SessionID:       uuid.NewString(),
					VariantID:       variant.ID,
					Cached:          true,
				}, nil
			}
		}
	}

	rctx := &core.RecommendContext{
		UserID:     req.UserID,
		User:       userProfile,
		Weights:    weights,
		VariantID:  variant.ID,
		ExcludeIDs: req.ExcludeIDs,
		Now:        time.Now(),
	}

	lists, err := r.computeLists(ctx, rctx, req.Type, weights)
	if err != nil {
		return nil, err
	}

	merged := rerank.MergeLists(lists, limit)

	recommendations := make([]core.RecommendationScore, 0, len(merged))
	for _, it := range merged {
		recommendations = append(recommendations, core.ScoreOf(it))
	}

	if cacheKey != "" {
		if data, err := json.Marshal(recommendations); err == nil {
			r.Cache.Set(ctx, cacheKey, data)
		}
	}

	logger.Info("recommend: generated",
		zap.String("user_id", req.UserID),
		zap.String("type", string(req.Type)),
		zap.String("variant_id", variant.ID),
		zap.Int("count", len(recommendations)))

	return &Response{
		Recommendations: recommendations,
		SessionID:       uuid.NewString(),
		VariantID:       variant.ID,
		Cached:          false,
	}, nil
}

// computeLists 并发执行各内容类型的基础 Pipeline 与语义召回。
// 基础链路（召回 → 过滤 → 打分 → 时间个性化）失败是硬错误；
// 语义召回失败只损失那一路。
func (r *Recommender) computeLists(
	ctx context.Context,
	rctx *core.RecommendContext,
	reqType RecommendType,
	weights core.AlgorithmWeights,
) ([]rerank.RankedList, error) {
	var types []core.ItemType
	switch reqType {
	case RecommendPosts:
		types = []core.ItemType{core.ItemTypePost}
	case RecommendPapers:
		types = []core.ItemType{core.ItemTypePaper}
	default:
		types = []core.ItemType{core.ItemTypePost, core.ItemTypePaper}
	}

	base := make([][]*core.Item, len(types))
	semantic := make([][]*core.Item, len(types))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, itemType := range types {
		idx, t := i, itemType

		eg.Go(func() error {
			items, err := r.basePipeline(t).Run(egCtx, rctx, nil)
			if err != nil {
				return err
			}
			base[idx] = items
			return nil
		})

		if matcher := r.Matchers[t]; matcher != nil {
			eg.Go(func() error {
				// 语义召回自带超时与降级，err 恒为 nil
				items, _ := matcher.Match(egCtx, rctx, t)
				semantic[idx] = items
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	lists := make([]rerank.RankedList, 0, len(types)*2)
	for i, t := range types {
		lists = append(lists, rerank.RankedList{
			Name:   "base." + string(t),
			Weight: 1.0,
			Items:  base[i],
		})
		if len(semantic[i]) > 0 {
			lists = append(lists, rerank.RankedList{
				Name:   "embedding." + string(t),
				Weight: weights.Embedding,
				Items:  semantic[i],
			})
		}
	}
	return lists, nil
}

// basePipeline 组装一种内容类型的基础链路。
func (r *Recommender) basePipeline(itemType core.ItemType) *pipeline.Pipeline {
	sources := []recall.Source{
		&recall.CandidateSource{Store: r.Candidates, Type: itemType, Limit: r.PoolSize},
	}
	if r.Trending != nil {
		sources = append(sources, &recall.Trending{
			Store: r.Trending,
			Key:   "trending:" + string(itemType) + "s",
			Type:  itemType,
		})
	}

	nodes := []pipeline.Node{
		&recall.Fanout{Sources: sources, Dedup: true, Timeout: 2 * time.Second},
		&filter.FilterNode{Filters: []filter.Filter{filter.NewExcludeFilter()}},
		&rank.ScorerNode{},
		&rerank.TemporalNode{Engagement: r.Engagement},
	}
	return &pipeline.Pipeline{Nodes: nodes}
}

// SubmitFeedback 把反馈异步交给收集器，立即确认。
func (r *Recommender) SubmitFeedback(event *feedback.Event) error {
	if r.Collector == nil {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable,
			"service: feedback collector not configured")
	}
	return r.Collector.Submit(event)
}
