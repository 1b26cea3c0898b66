package service

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/scholarrec/cache"
	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/experiment"
	"github.com/rushteam/scholarrec/profile"
	"github.com/rushteam/scholarrec/store"
)

type fakeProfiles struct {
	profiles map[string]*core.UserProfile
}

func (f *fakeProfiles) LoadProfile(_ context.Context, userID string) (*core.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return p, nil
}

type fakeCandidates struct {
	items map[core.ItemType][]*core.Item
}

func (f *fakeCandidates) FetchCandidates(_ context.Context, itemType core.ItemType, excludeIDs []string, limit int) ([]*core.Item, error) {
	exclude := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = true
	}
	var out []*core.Item
	for _, it := range f.items[itemType] {
		if exclude[it.ID] || len(out) >= limit {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func testItems() map[core.ItemType][]*core.Item {
	now := time.Now()
	return map[core.ItemType][]*core.Item{
		core.ItemTypePost: {
			{ID: "post-1", Type: core.ItemTypePost, Tags: []string{"nlp"}, CreatedAt: now},
			{ID: "post-2", Type: core.ItemTypePost, Tags: []string{"databases"}, CreatedAt: now.AddDate(0, 0, -5)},
			{ID: "post-liked", Type: core.ItemTypePost, Tags: []string{"nlp"}, CreatedAt: now},
		},
		core.ItemTypePaper: {
			{ID: "paper-1", Type: core.ItemTypePaper, Tags: []string{"nlp"}, Venue: "ACL", CreatedAt: now.AddDate(0, 0, -2),
				Engagement: core.Engagement{Citations: 50, AvgReviewRating: 4.2}},
		},
	}
}

func newTestRecommender(t *testing.T) *Recommender {
	t.Helper()
	mem := store.NewMemoryStore()
	t.Cleanup(func() { mem.Close() })

	expStore := experiment.NewMemoryStore()
	return &Recommender{
		Profiles: &profile.Builder{Store: &fakeProfiles{profiles: map[string]*core.UserProfile{
			"alice": {
				UserID:       "alice",
				Interests:    []string{"nlp"},
				Department:   "cs",
				LikedItemIDs: map[string]bool{"post-liked": true},
			},
		}}},
		Candidates:  &fakeCandidates{items: testItems()},
		Experiments: experiment.NewManager(expStore, nil),
		Engagement:  expStore,
		Cache:       cache.New(mem, time.Minute, nil),
	}
}

func TestRecommender_UserNotFound(t *testing.T) {
	rec := newTestRecommender(t)
	_, err := rec.GetRecommendations(context.Background(), &Request{UserID: "ghost", Type: RecommendPosts})
	if !core.IsUserNotFound(err) {
		t.Fatalf("err = %v, want UserNotFound", err)
	}
}

func TestRecommender_InvalidType(t *testing.T) {
	rec := newTestRecommender(t)
	_, err := rec.GetRecommendations(context.Background(), &Request{UserID: "alice", Type: "videos"})
	domainErr := core.GetDomainError(err)
	if domainErr == nil || domainErr.Code != core.ErrorCodeInvalidInput {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestRecommender_ControlVariantWithoutExperiments(t *testing.T) {
	rec := newTestRecommender(t)
	resp, err := rec.GetRecommendations(context.Background(), &Request{UserID: "alice", Type: RecommendPosts})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if resp.VariantID != core.ControlVariantID {
		t.Errorf("variant = %s, want control", resp.VariantID)
	}
	if resp.Cached {
		t.Error("fresh computation must not be marked cached")
	}
	if len(resp.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, r := range resp.Recommendations {
		if r.Score > 0 && len(r.Reasons) == 0 {
			t.Errorf("item %s has score but no reasons", r.ItemID)
		}
	}
}

func TestRecommender_ExcludedAndLikedNeverReturned(t *testing.T) {
	rec := newTestRecommender(t)
	resp, err := rec.GetRecommendations(context.Background(), &Request{
		UserID:     "alice",
		Type:       RecommendMixed,
		ExcludeIDs: []string{"post-2"},
	})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	for _, r := range resp.Recommendations {
		if r.ItemID == "post-2" {
			t.Error("excluded item returned")
		}
		if r.ItemID == "post-liked" {
			t.Error("already-liked item returned")
		}
	}
}

func TestRecommender_MixedIncludesBothTypes(t *testing.T) {
	rec := newTestRecommender(t)
	resp, err := rec.GetRecommendations(context.Background(), &Request{UserID: "alice", Type: RecommendMixed, Limit: 10})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	types := make(map[core.ItemType]bool)
	for _, r := range resp.Recommendations {
		types[r.ItemType] = true
	}
	if !types[core.ItemTypePost] || !types[core.ItemTypePaper] {
		t.Errorf("mixed result types = %v, want both post and paper", types)
	}
}

func TestRecommender_LimitRespected(t *testing.T) {
	rec := newTestRecommender(t)
	resp, err := rec.GetRecommendations(context.Background(), &Request{UserID: "alice", Type: RecommendMixed, Limit: 1})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("len = %d, want 1", len(resp.Recommendations))
	}
}

func TestRecommender_CacheHitIsByteIdentical(t *testing.T) {
	rec := newTestRecommender(t)
	ctx := context.Background()
	req := &Request{UserID: "alice", Type: RecommendPosts, Limit: 5, UseCache: true}

	fresh, err := rec.GetRecommendations(ctx, req)
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if fresh.Cached {
		t.Fatal("first call must be a miss")
	}

	cached, err := rec.GetRecommendations(ctx, req)
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if !cached.Cached {
		t.Fatal("second call must be a hit")
	}

	freshJSON, _ := json.Marshal(fresh.Recommendations)
	cachedJSON, _ := json.Marshal(cached.Recommendations)
	if string(freshJSON) != string(cachedJSON) {
		t.Errorf("cached payload differs:\nfresh:  %s\ncached: %s", freshJSON, cachedJSON)
	}
	if !reflect.DeepEqual(fresh.Recommendations, cached.Recommendations) {
		t.Error("cached recommendations differ from fresh")
	}
	if fresh.SessionID == cached.SessionID {
		t.Error("each response must carry a fresh session id")
	}
}

func TestRecommender_FeedbackInvalidatesCache(t *testing.T) {
	rec := newTestRecommender(t)
	ctx := context.Background()
	req := &Request{UserID: "alice", Type: RecommendPosts, Limit: 5, UseCache: true}

	if _, err := rec.GetRecommendations(ctx, req); err != nil {
		t.Fatalf("warm call error = %v", err)
	}
	rec.Cache.InvalidateUser(ctx, "alice")

	resp, err := rec.GetRecommendations(ctx, req)
	if err != nil {
		t.Fatalf("post-invalidation call error = %v", err)
	}
	if resp.Cached {
		t.Error("expected recomputation after invalidation")
	}
}
