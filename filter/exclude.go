package filter

import (
	"context"

	"github.com/rushteam/scholarrec/core"
)

// ExcludeFilter 剔除用户已消费或显式排除的内容：
//   - 请求方传入的 excludeIds（rctx.ExcludeIDs）
//   - 画像中的已点赞/已收藏内容
//
// 候选层（CandidateStore）通常已经做过排除，这里是最后一道保险：
// 多路来源（语义召回、趋势召回）产生的候选也要经过同样的排除。
type ExcludeFilter struct {
	// ItemIDs 是额外的内存排除列表（可选）。
	ItemIDs []string
}

func NewExcludeFilter(itemIDs ...string) *ExcludeFilter {
	return &ExcludeFilter{ItemIDs: itemIDs}
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.ItemIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if rctx == nil {
		return false, nil
	}
	for _, id := range rctx.ExcludeIDs {
		if item.ID == id {
			return true, nil
		}
	}
	if rctx.User != nil {
		if rctx.User.LikedItemIDs[item.ID] || rctx.User.BookmarkedItemIDs[item.ID] {
			return true, nil
		}
	}

	return false, nil
}

var _ Filter = (*ExcludeFilter)(nil)
