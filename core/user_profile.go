package core

// UserProfile 是用户画像：兴趣、社交关系、互动历史。
//
// 画像按需装配（profile.Builder），不作为整体落库——兴趣来自用户设置，
// 点赞/收藏/关注来自各自的存储。它驱动打分的所有个性化维度：
//
//	维度            作用
//	Interests       内容分（与候选 tags / 关键词求 Jaccard）
//	FollowedUserIDs 社交分（作者是否被关注）
//	Liked/Bookmarked 已消费内容，召回时排除
//	Department      院系匹配加分
type UserProfile struct {
	UserID      string
	Interests   []string
	Department  string
	Institution string

	LikedItemIDs      map[string]bool
	BookmarkedItemIDs map[string]bool
	FollowedUserIDs   map[string]bool
}

func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:            userID,
		LikedItemIDs:      make(map[string]bool),
		BookmarkedItemIDs: make(map[string]bool),
		FollowedUserIDs:   make(map[string]bool),
	}
}

// AddInterest 追加兴趣词，去重。
func (p *UserProfile) AddInterest(interest string) {
	if interest == "" {
		return
	}
	for _, v := range p.Interests {
		if v == interest {
			return
		}
	}
	p.Interests = append(p.Interests, interest)
}

// Follows 判断候选作者中是否有被关注的用户。
func (p *UserProfile) Follows(authorIDs ...string) bool {
	if len(p.FollowedUserIDs) == 0 {
		return false
	}
	for _, id := range authorIDs {
		if p.FollowedUserIDs[id] {
			return true
		}
	}
	return false
}

// SeenItemIDs 返回用户已点赞/收藏的内容 ID，召回时用于排除。
func (p *UserProfile) SeenItemIDs() []string {
	out := make([]string, 0, len(p.LikedItemIDs)+len(p.BookmarkedItemIDs))
	for id := range p.LikedItemIDs {
		out = append(out, id)
	}
	for id := range p.BookmarkedItemIDs {
		if !p.LikedItemIDs[id] {
			out = append(out, id)
		}
	}
	return out
}
