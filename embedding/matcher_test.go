package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/vector"
)

// fakeEmbedder 返回固定向量。
type fakeEmbedder struct {
	vec []float64
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vec, f.err
}

func testRctx(interests ...string) *core.RecommendContext {
	return &core.RecommendContext{
		UserID: "u1",
		User:   &core.UserProfile{UserID: "u1", Interests: interests},
	}
}

func TestMatcher_ScoreIsSimilarityTimes100(t *testing.T) {
	vs := vector.NewMemoryVectorService()
	defer vs.Close()
	vs.Upsert("posts", "exact", []float64{1, 0})
	vs.Upsert("posts", "close", []float64{0.9, 0.1})

	m := &Matcher{Vector: vs, Embedder: &fakeEmbedder{vec: []float64{1, 0}}}
	items, err := m.Match(context.Background(), testRctx("nlp"), core.ItemTypePost)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != "exact" || math.Abs(items[0].Score-100) > 0.01 {
		t.Errorf("top = %s/%v, want exact/100", items[0].ID, items[0].Score)
	}
	for _, it := range items {
		if len(it.Reasons) == 0 {
			t.Errorf("item %s has no reason", it.ID)
		}
	}
}

func TestMatcher_ThresholdDropsWeakMatches(t *testing.T) {
	vs := vector.NewMemoryVectorService()
	defer vs.Close()
	vs.Upsert("posts", "orthogonal", []float64{0, 1})
	vs.Upsert("posts", "strong", []float64{1, 0})

	m := &Matcher{Vector: vs, Embedder: &fakeEmbedder{vec: []float64{1, 0}}}
	items, _ := m.Match(context.Background(), testRctx("nlp"), core.ItemTypePost)
	if len(items) != 1 || items[0].ID != "strong" {
		t.Errorf("items = %v, want only strong (default 0.6 threshold)", items)
	}
}

func TestMatcher_ExcludesSeenItems(t *testing.T) {
	vs := vector.NewMemoryVectorService()
	defer vs.Close()
	vs.Upsert("posts", "seen", []float64{1, 0})
	vs.Upsert("posts", "fresh", []float64{1, 0})

	rctx := testRctx("nlp")
	rctx.User.LikedItemIDs = map[string]bool{"seen": true}

	m := &Matcher{Vector: vs, Embedder: &fakeEmbedder{vec: []float64{1, 0}}}
	items, _ := m.Match(context.Background(), rctx, core.ItemTypePost)
	if len(items) != 1 || items[0].ID != "fresh" {
		t.Errorf("items = %v, want only fresh", items)
	}
}

func TestMatcher_DegradesToEmpty(t *testing.T) {
	vs := vector.NewMemoryVectorService()
	defer vs.Close()
	vs.Upsert("posts", "a", []float64{1, 0})

	tests := []struct {
		name    string
		matcher *Matcher
		rctx    *core.RecommendContext
	}{
		{
			name:    "nil vector service",
			matcher: &Matcher{Embedder: &fakeEmbedder{vec: []float64{1, 0}}},
			rctx:    testRctx("nlp"),
		},
		{
			name:    "nil embedder",
			matcher: &Matcher{Vector: vs},
			rctx:    testRctx("nlp"),
		},
		{
			name:    "no interests",
			matcher: &Matcher{Vector: vs, Embedder: &fakeEmbedder{vec: []float64{1, 0}}},
			rctx:    testRctx(),
		},
		{
			name:    "embedder failure",
			matcher: &Matcher{Vector: vs, Embedder: &fakeEmbedder{err: core.NewDomainError(core.ModuleVector, core.ErrorCodeUnavailable, "down")}},
			rctx:    testRctx("nlp"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := tt.matcher.Match(context.Background(), tt.rctx, core.ItemTypePost)
			if err != nil {
				t.Fatalf("Match() error = %v, want nil", err)
			}
			if len(items) != 0 {
				t.Errorf("items = %v, want empty", items)
			}
		})
	}
}
