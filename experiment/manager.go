package experiment

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/rushteam/scholarrec/core"
)

// Manager 负责权重实验的分桶与簿记：
//
//   - GetVariant：粘性分桶。用户首次请求时按确定性哈希落桶并持久化，
//     之后同一用户始终拿到同一变体，直到该变体停用。
//   - 无活跃变体、未命中任何流量区间、或持久化失败时，一律回退到
//     对照组（全 1.0 权重），推荐链路永不因实验层失败。
//   - RecordFeedback / UpdateMetrics：反馈计数与变体指标的回写。
//
// 分配结果带短 TTL 本地缓存，避免每次推荐都打一次实验存储。
type Manager struct {
	store  core.ExperimentStore
	logger *zap.Logger

	// assignments 缓存 userID → *core.ABVariant
	assignments *gocache.Cache
}

// 分配缓存的 TTL 要足够短：变体停用后用户最多在一个 TTL 内拿到旧权重。
const (
	assignmentCacheTTL     = time.Minute
	assignmentCacheCleanup = 5 * time.Minute
)

// NewManager 创建实验管理器。store 为 nil 时所有用户都走对照组。
func NewManager(store core.ExperimentStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:       store,
		logger:      logger,
		assignments: gocache.New(assignmentCacheTTL, assignmentCacheCleanup),
	}
}

// GetVariant 返回用户当前生效的变体。任何失败都降级为对照组，不返回错误。
func (m *Manager) GetVariant(ctx context.Context, profile *core.UserProfile) *core.ABVariant {
	if m == nil || m.store == nil || profile == nil || profile.UserID == "" {
		return core.ControlVariant()
	}
	userID := profile.UserID

	if cached, ok := m.assignments.Get(userID); ok {
		return cached.(*core.ABVariant)
	}

	variant := m.resolveVariant(ctx, profile)
	m.assignments.Set(userID, variant, gocache.DefaultExpiration)
	return variant
}

func (m *Manager) resolveVariant(ctx context.Context, profile *core.UserProfile) *core.ABVariant {
	userID := profile.UserID

	variants, err := m.store.LoadActiveVariants(ctx)
	if err != nil {
		m.logger.Warn("experiment: load variants failed, fall back to control",
			zap.String("user_id", userID), zap.Error(err))
		return core.ControlVariant()
	}
	if len(variants) == 0 {
		return core.ControlVariant()
	}

	// 既有分配优先：只要指向的变体仍活跃就沿用
	if assignment, err := m.store.LoadAssignment(ctx, userID); err == nil && assignment != nil {
		for _, v := range variants {
			if v != nil && v.ID == assignment.VariantID {
				return v
			}
		}
		// 原变体已停用，走重新分桶
	}

	target := m.pickVariant(profile, variants)
	if target == nil {
		return core.ControlVariant()
	}

	assignment, created, err := m.store.CreateAssignmentIfAbsent(ctx, userID, target.ID)
	if err != nil {
		m.logger.Warn("experiment: create assignment failed, fall back to control",
			zap.String("user_id", userID), zap.Error(err))
		return core.ControlVariant()
	}
	// 并发首请求下另一协程先落了桶，以持久化结果为准
	if assignment.VariantID != target.ID {
		for _, v := range variants {
			if v != nil && v.ID == assignment.VariantID {
				return v
			}
		}
		return core.ControlVariant()
	}

	// 仅新建分配才计数：LoadAssignment 读失败后拿回既有记录时不能重复累加
	if created {
		target.TotalAssignments++
		if err := m.store.UpdateVariant(ctx, target); err != nil {
			m.logger.Warn("experiment: update variant assignment count failed",
				zap.String("variant_id", target.ID), zap.Error(err))
		}
	}
	return target
}

// pickVariant 按确定性哈希桶选择变体。变体按 ID 排序后依次占据
// [0, p1), [p1, p1+p2), ... 的流量区间；桶值落在区间外（合计 < 100）
// 或仅命中准入不通过的变体时返回 nil（对照组）。
func (m *Manager) pickVariant(profile *core.UserProfile, variants []*core.ABVariant) *core.ABVariant {
	sorted := make([]*core.ABVariant, 0, len(variants))
	for _, v := range variants {
		if v != nil && v.IsActive && v.TrafficPercent > 0 {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	bucket := Bucket(profile.UserID, "weights")
	var cumulative float64
	for _, v := range sorted {
		cumulative += v.TrafficPercent
		if bucket < cumulative {
			eligible, err := Eligible(v.TargetingRule, profile)
			if err != nil {
				m.logger.Warn("experiment: targeting rule failed, skip variant",
					zap.String("variant_id", v.ID), zap.Error(err))
				return nil
			}
			if !eligible {
				return nil
			}
			return v
		}
	}
	return nil
}

// Feedback 是一次推荐反馈事件。
type Feedback struct {
	UserID    string
	ItemID    string
	VariantID string
	Type      core.FeedbackType
	Clicked   bool
}

// RecordFeedback 把反馈计入用户分配与对应变体：
// RecommendationsShown 每次反馈都累加，Clicked 按需累加，
// 正/负反馈同步镜像到变体聚合计数。对照组不做簿记，直接 no-op。
func (m *Manager) RecordFeedback(ctx context.Context, fb *Feedback) error {
	if m == nil || m.store == nil || fb == nil {
		return nil
	}
	if fb.VariantID == "" || fb.VariantID == core.ControlVariantID {
		return nil
	}
	if !core.ValidateFeedbackType(fb.Type) {
		return core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidInput,
			"experiment: unknown feedback type "+string(fb.Type))
	}

	assignment, err := m.store.LoadAssignment(ctx, fb.UserID)
	if err != nil || assignment == nil {
		return err
	}

	assignment.RecommendationsShown++
	if fb.Clicked {
		assignment.RecommendationsClicked++
	}
	positive := fb.Type == core.FeedbackPositive
	if positive {
		assignment.PositiveFeedback++
	} else {
		assignment.NegativeFeedback++
	}
	if err := m.store.UpdateAssignment(ctx, assignment); err != nil {
		return err
	}

	variant, err := m.store.LoadVariant(ctx, fb.VariantID)
	if err != nil || variant == nil {
		return err
	}
	if positive {
		variant.TotalPositiveFeedback++
	} else {
		variant.TotalNegativeFeedback++
	}
	return m.store.UpdateVariant(ctx, variant)
}

// UpdateMetrics 重算变体的点击率：跨全部分配汇总
// CTR = clicked / shown × 100，无展示时为 0。
func (m *Manager) UpdateMetrics(ctx context.Context, variantID string) error {
	if m == nil || m.store == nil || variantID == core.ControlVariantID {
		return nil
	}
	variant, err := m.store.LoadVariant(ctx, variantID)
	if err != nil {
		return err
	}
	assignments, err := m.store.LoadAssignmentsByVariant(ctx, variantID)
	if err != nil {
		return err
	}

	var shown, clicked int64
	for _, a := range assignments {
		if a == nil {
			continue
		}
		shown += a.RecommendationsShown
		clicked += a.RecommendationsClicked
	}
	if shown > 0 {
		variant.AvgClickThroughRate = float64(clicked) / float64(shown) * 100
	} else {
		variant.AvgClickThroughRate = 0
	}
	return m.store.UpdateVariant(ctx, variant)
}

// PerformanceScore 是变体的综合表现分：
//
//	feedbackScore×0.6 + CTR×0.4
//
// feedbackScore = positive/(positive+negative)×100，无反馈时取中性值 50。
func PerformanceScore(v *core.ABVariant) float64 {
	if v == nil {
		return 0
	}
	feedbackScore := 50.0
	if total := v.TotalPositiveFeedback + v.TotalNegativeFeedback; total > 0 {
		feedbackScore = float64(v.TotalPositiveFeedback) / float64(total) * 100
	}
	return feedbackScore*0.6 + v.AvgClickThroughRate*0.4
}

// DeactivateVariant 停用变体并驱逐指向它的缓存分配，
// 受影响用户在下次请求时重新分桶。历史分配记录保持不变。
func (m *Manager) DeactivateVariant(ctx context.Context, variantID string) error {
	if m == nil || m.store == nil {
		return nil
	}
	variant, err := m.store.LoadVariant(ctx, variantID)
	if err != nil {
		return err
	}
	variant.IsActive = false
	if err := m.store.UpdateVariant(ctx, variant); err != nil {
		return err
	}

	for key, entry := range m.assignments.Items() {
		if v, ok := entry.Object.(*core.ABVariant); ok && v.ID == variantID {
			m.assignments.Delete(key)
		}
	}
	m.logger.Info("experiment: variant deactivated", zap.String("variant_id", variantID))
	return nil
}
