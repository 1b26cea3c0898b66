package core

import (
	"time"

	"github.com/rushteam/scholarrec/pkg/utils"
)

// ItemType 是候选内容的类型。
type ItemType string

const (
	ItemTypePost  ItemType = "post"  // 社区帖子
	ItemTypePaper ItemType = "paper" // 学术论文
)

// ValidateItemType 验证内容类型。
func ValidateItemType(t ItemType) bool {
	switch t {
	case ItemTypePost, ItemTypePaper:
		return true
	default:
		return false
	}
}

// 帖子子类型：问答/讨论类帖子在打分时获得多样性加分。
const (
	PostKindQuestion   = "QUESTION"
	PostKindDiscussion = "DISCUSSION"
)

// Engagement 是候选内容的互动计数。
// 帖子主要使用 Reactions/Views/Bookmarks，论文主要使用 Citations/Reviews。
type Engagement struct {
	Reactions       int64   `json:"reactions"`
	Views           int64   `json:"views"`
	Bookmarks       int64   `json:"bookmarks"`
	Citations       int64   `json:"citations"`
	Reviews         int64   `json:"reviews"`
	AvgReviewRating float64 `json:"avg_review_rating"`
}

// Item 是推荐链路中的统一承载结构：候选内容 + 分数 + 解释。
// Reasons 是面向用户的打分归因，经过各阶段（打分/个性化/合并）后必须保留；
// Labels 用于链路内部的 explain / 观测 / 策略驱动。
type Item struct {
	ID         string
	Type       ItemType
	Tags       []string
	Text       string
	AuthorIDs  []string
	Department string // 所属院系（内容归属方）
	Venue      string // 论文发表的期刊/会议，空表示未发表
	PostKind   string // 帖子子类型（QUESTION / DISCUSSION / ...）
	CreatedAt  time.Time
	Engagement Engagement

	Score   float64
	Reasons []string
	Labels  map[string]utils.Label
	Meta    map[string]any
}

func NewItem(id string, t ItemType) *Item {
	return &Item{
		ID:     id,
		Type:   t,
		Score:  0,
		Labels: make(map[string]utils.Label),
		Meta:   make(map[string]any),
	}
}

// AddReason 追加一条打分归因，保持插入顺序并去重。
func (it *Item) AddReason(reason string) {
	if reason == "" {
		return
	}
	for _, r := range it.Reasons {
		if r == reason {
			return
		}
	}
	it.Reasons = append(it.Reasons, reason)
}

// PutLabel 写入 Label；同名 key 按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Clone 返回 Item 的浅拷贝，Reasons/Labels 独立复制。
// 合并多路结果时使用，避免修改源列表。
func (it *Item) Clone() *Item {
	cp := *it
	cp.Reasons = append([]string(nil), it.Reasons...)
	if it.Labels != nil {
		cp.Labels = make(map[string]utils.Label, len(it.Labels))
		for k, v := range it.Labels {
			cp.Labels[k] = v
		}
	}
	return &cp
}

// DaysSince 返回内容创建至 now 的天数（可为小数）。
func (it *Item) DaysSince(now time.Time) float64 {
	if it.CreatedAt.IsZero() || now.Before(it.CreatedAt) {
		return 0
	}
	return now.Sub(it.CreatedAt).Hours() / 24
}
