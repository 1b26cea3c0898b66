package core

import "time"

// ControlVariantID 是无实验可用时返回的伪变体 ID。
// 对照组不做任何实验簿记（反馈计数、指标更新均为 no-op）。
const ControlVariantID = "control"

// ABVariant 是一个权重实验变体。
// TrafficPercent 是该变体的目标流量占比（0-100），所有活跃变体合计应 ≤ 100。
type ABVariant struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Weights        AlgorithmWeights `json:"weights"`
	IsControl      bool             `json:"is_control"`
	TrafficPercent float64          `json:"traffic_percent"`
	IsActive       bool             `json:"is_active"`

	// TargetingRule 是可选的 CEL 准入表达式（基于用户画像），
	// 空表示全量用户可进组。例如：user.department == "cs"
	TargetingRule string `json:"targeting_rule,omitempty"`

	// 聚合计数（跨所有分配该变体的用户）
	TotalAssignments      int64   `json:"total_assignments"`
	TotalPositiveFeedback int64   `json:"total_positive_feedback"`
	TotalNegativeFeedback int64   `json:"total_negative_feedback"`
	AvgClickThroughRate   float64 `json:"avg_click_through_rate"`
}

// ControlVariant 返回对照组伪变体。
func ControlVariant() *ABVariant {
	return &ABVariant{
		ID:        ControlVariantID,
		Name:      "control",
		Weights:   ControlWeights(),
		IsControl: true,
		IsActive:  true,
	}
}

// ABAssignment 是 (userId, variantId) 的一次分桶记录。
// 不变量：同一用户同一时刻至多一条指向活跃变体的分配；
// 变体停用后历史分配保持不可变，用户进入可重新分桶状态。
type ABAssignment struct {
	UserID     string    `json:"user_id"`
	VariantID  string    `json:"variant_id"`
	AssignedAt time.Time `json:"assigned_at"`

	// 单用户计数
	RecommendationsShown   int64 `json:"recommendations_shown"`
	RecommendationsClicked int64 `json:"recommendations_clicked"`
	PositiveFeedback       int64 `json:"positive_feedback"`
	NegativeFeedback       int64 `json:"negative_feedback"`
}

// FeedbackType 是用户对推荐结果的反馈类型。
type FeedbackType string

const (
	FeedbackPositive      FeedbackType = "positive"
	FeedbackNegative      FeedbackType = "negative"
	FeedbackNotInterested FeedbackType = "not_interested"
)

// ValidateFeedbackType 验证反馈类型。
func ValidateFeedbackType(t FeedbackType) bool {
	switch t {
	case FeedbackPositive, FeedbackNegative, FeedbackNotInterested:
		return true
	default:
		return false
	}
}

// EngagementTimeRecord 是一条互动时间记录（append-only），
// 时间维度个性化在滑动窗口内消费这些记录。
type EngagementTimeRecord struct {
	UserID          string   `json:"user_id"`
	HourOfDay       int      `json:"hour_of_day"` // [0,23]
	DayOfWeek       int      `json:"day_of_week"` // [0,6]，0 = 周日
	ContentType     ItemType `json:"content_type"`
	Tags            []string `json:"tags"`
	EngagementScore float64  `json:"engagement_score"`

	CreatedAt time.Time `json:"created_at"`
}
