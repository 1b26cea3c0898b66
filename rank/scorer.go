package rank

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/pipeline"
	"github.com/rushteam/scholarrec/pkg/textutil"
	"github.com/rushteam/scholarrec/pkg/utils"
)

// ScorerNode 是多因子打分节点：对每个候选计算内容/社交/互动/新鲜度/质量
// 五个子分（0-100 量纲），按 rctx 上的权重向量加权求和，并写入打分归因。
//
// 单个候选的打分失败（包括 panic）只丢弃该候选，绝不中断整批；
// 候选池较大时并发打分（有界 worker 池）。
type ScorerNode struct {
	// MaxConcurrent 是并发打分的 worker 上限，默认 8。
	MaxConcurrent int

	// ParallelThreshold 是启用并发的候选数下限，小批量串行更快。默认 32。
	ParallelThreshold int
}

func (n *ScorerNode) Name() string        { return "rank.scorer" }
func (n *ScorerNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScorerNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if rctx == nil || rctx.User == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "rank: user profile is required")
	}

	weights := rctx.EffectiveWeights()
	now := rctx.At()
	profile := rctx.User

	scored := make([]*core.Item, len(items))
	if len(items) < n.parallelThreshold() {
		for i, it := range items {
			scored[i] = scoreOne(profile, it, weights, now)
		}
	} else {
		eg, _ := errgroup.WithContext(ctx)
		eg.SetLimit(n.maxConcurrent())
		for i, it := range items {
			idx, item := i, it
			eg.Go(func() error {
				scored[idx] = scoreOne(profile, item, weights, now)
				return nil
			})
		}
		// worker 不返回错误：失败的候选以 nil 形式被丢弃
		_ = eg.Wait()
	}

	out := make([]*core.Item, 0, len(scored))
	for _, it := range scored {
		if it != nil {
			out = append(out, it)
		}
	}

	// 降序稳定排序：同分时保持召回顺序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (n *ScorerNode) maxConcurrent() int {
	if n.MaxConcurrent > 0 {
		return n.MaxConcurrent
	}
	return 8
}

func (n *ScorerNode) parallelThreshold() int {
	if n.ParallelThreshold > 0 {
		return n.ParallelThreshold
	}
	return 32
}

// scoreOne 打分单个候选。返回 nil 表示该候选被丢弃（异常或非法分数）。
func scoreOne(profile *core.UserProfile, it *core.Item, w core.AlgorithmWeights, now time.Time) (out *core.Item) {
	if it == nil {
		return nil
	}
	defer func() {
		// 任何候选的打分 panic 只丢弃该候选
		if r := recover(); r != nil {
			out = nil
		}
	}()

	var total float64
	total += contentScore(profile, it) * w.Content
	total += socialScore(profile, it) * w.Social

	switch it.Type {
	case core.ItemTypePaper:
		total += paperQualityScore(it) * w.Quality
		total += paperRecencyScore(it, now) * w.Recency
	default:
		total += postEngagementScore(it) * w.Engagement
		total += postRecencyScore(it, now) * w.Recency
	}

	total += diversityBonus(it)

	if math.IsNaN(total) || math.IsInf(total, 0) {
		return nil
	}
	if total < 0 {
		total = 0
	}

	it.Score = total
	if len(it.Reasons) == 0 && total > 0 {
		it.AddReason(core.GenericReason)
	}
	it.PutLabel("scorer", utils.Label{Value: "multi_factor", Source: "rank"})
	return it
}

// maxKeywords 是正文关键词提取上限。
const maxKeywords = 20

// contentScore 内容分：兴趣与标签/正文关键词的 Jaccard 相似度，外加院系匹配。
// 满分 70（40 + 20 + 10）。
func contentScore(profile *core.UserProfile, it *core.Item) float64 {
	var s float64

	tagSim := textutil.Jaccard(profile.Interests, it.Tags)
	s += tagSim * 40
	if tagSim >= 0.25 {
		it.AddReason("Matches your interests")
	}

	if it.Text != "" {
		kwSim := textutil.Jaccard(profile.Interests, textutil.Keywords(it.Text, maxKeywords))
		s += kwSim * 20
		if kwSim >= 0.25 && tagSim < 0.25 {
			it.AddReason("Related to topics you follow")
		}
	}

	if profile.Department != "" && it.Department == profile.Department {
		s += 10
		it.AddReason("From your department")
	}
	return s
}

// socialScore 社交分：候选作者中有被关注的用户时 50，否则 0。
func socialScore(profile *core.UserProfile, it *core.Item) float64 {
	if profile.Follows(it.AuthorIDs...) {
		it.AddReason("From researchers you follow")
		return 50
	}
	return 0
}

// postEngagementScore 帖子互动分：反应/收藏与浏览量的对数饱和，满分 40。
func postEngagementScore(it *core.Item) float64 {
	e := it.Engagement
	reactions := math.Min(30, math.Log(float64(e.Reactions+e.Bookmarks*2)+1)*8)
	views := math.Min(10, math.Log(float64(e.Views)+1)*3)
	if reactions >= 15 {
		it.AddReason("Popular with the community")
	}
	return reactions + views
}

// postRecencyScore 帖子新鲜度：7 天时间常数的指数衰减，满分 20。
// 创建时间未知的候选（如仅带 ID 的趋势召回结果）不给新鲜度分。
func postRecencyScore(it *core.Item, now time.Time) float64 {
	if it.CreatedAt.IsZero() {
		return 0
	}
	s := math.Max(0, 20*math.Exp(-it.DaysSince(now)/7))
	if s >= 10 {
		it.AddReason("Recently posted")
	}
	return s
}

// paperQualityScore 论文质量分：引用、评审评分、发表加分，满分 45。
func paperQualityScore(it *core.Item) float64 {
	var s float64
	e := it.Engagement

	if e.Citations > 10 {
		s += math.Min(20, math.Log(float64(e.Citations))*5)
		it.AddReason("Highly cited")
	}
	if e.AvgReviewRating > 0 {
		s += e.AvgReviewRating * 4
		if e.AvgReviewRating >= 4 {
			it.AddReason("Well reviewed by peers")
		}
	}
	if it.Venue != "" {
		s += 5
		it.AddReason("Published in " + it.Venue)
	}
	return s
}

// paperRecencyScore 论文新鲜度：14 天时间常数的指数衰减，满分 15。
// 创建时间未知时同样不给分。
func paperRecencyScore(it *core.Item, now time.Time) float64 {
	if it.CreatedAt.IsZero() {
		return 0
	}
	s := math.Max(0, 15*math.Exp(-it.DaysSince(now)/14))
	if s >= 8 {
		it.AddReason("Recent publication")
	}
	return s
}

// diversityBonus 问答/讨论类帖子加 5 分，鼓励互动型内容进入结果。
func diversityBonus(it *core.Item) float64 {
	if it.Type != core.ItemTypePost {
		return 0
	}
	switch it.PostKind {
	case core.PostKindQuestion, core.PostKindDiscussion:
		it.AddReason("Active discussion")
		return 5
	default:
		return 0
	}
}
