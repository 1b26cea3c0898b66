package feast

import (
	"context"

	"github.com/rushteam/scholarrec/core"
)

// 特征平台上的用户兴趣特征名。
const (
	FeatureUserInterestTags = "user_interest:top_tags"
	entityUserID            = "user_id"
)

// InterestEnricher 从 Feast 在线特征拉取用户的长期兴趣标签，
// 合并进画像的 Interests（去重，保持既有顺序在前）。
// 画像存储里的兴趣是用户显式声明的，特征平台补充的是行为推断出的。
type InterestEnricher struct {
	Client  Client
	Project string
}

func (e *InterestEnricher) Name() string { return "feast.interests" }

func (e *InterestEnricher) Enrich(ctx context.Context, profile *core.UserProfile) error {
	if e == nil || e.Client == nil || profile == nil || profile.UserID == "" {
		return nil
	}

	resp, err := e.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{FeatureUserInterestTags},
		EntityRows: []map[string]interface{}{{entityUserID: profile.UserID}},
		Project:    e.Project,
	})
	if err != nil {
		return err
	}
	if len(resp.FeatureVectors) == 0 {
		return nil
	}

	inferred := resp.FeatureVectors[0].Strings(FeatureUserInterestTags)
	if len(inferred) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(profile.Interests))
	for _, t := range profile.Interests {
		seen[t] = true
	}
	for _, t := range inferred {
		if t != "" && !seen[t] {
			profile.Interests = append(profile.Interests, t)
			seen[t] = true
		}
	}
	return nil
}
