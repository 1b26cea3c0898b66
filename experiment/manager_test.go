package experiment

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/rushteam/scholarrec/core"
)

func variant(id string, traffic float64) *core.ABVariant {
	return &core.ABVariant{
		ID:             id,
		Name:           id,
		Weights:        core.ControlWeights(),
		TrafficPercent: traffic,
		IsActive:       true,
	}
}

func user(id string) *core.UserProfile {
	return &core.UserProfile{UserID: id, Department: "cs"}
}

func TestBucket_DeterministicAndInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("user-%d", i)
		b := Bucket(id, "weights")
		if b < 0 || b >= 100 {
			t.Fatalf("Bucket(%s) = %v, want [0,100)", id, b)
		}
		if b != Bucket(id, "weights") {
			t.Fatalf("Bucket(%s) not deterministic", id)
		}
	}
}

func TestManager_ControlWhenNoVariants(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	v := m.GetVariant(context.Background(), user("u1"))
	if v.ID != core.ControlVariantID {
		t.Errorf("variant = %s, want control", v.ID)
	}
	if v.Weights != core.ControlWeights() {
		t.Errorf("weights = %+v, want control weights", v.Weights)
	}
}

func TestManager_ControlWhenNoStore(t *testing.T) {
	m := NewManager(nil, nil)
	if v := m.GetVariant(context.Background(), user("u1")); v.ID != core.ControlVariantID {
		t.Errorf("variant = %s, want control", v.ID)
	}
}

func TestManager_StickyAssignment(t *testing.T) {
	store := NewMemoryStore()
	store.PutVariant(variant("a", 50))
	store.PutVariant(variant("b", 50))
	m := NewManager(store, nil)

	first := m.GetVariant(context.Background(), user("u1"))
	for i := 0; i < 10; i++ {
		again := m.GetVariant(context.Background(), user("u1"))
		if again.ID != first.ID {
			t.Fatalf("assignment not sticky: %s then %s", first.ID, again.ID)
		}
	}
}

func TestManager_TrafficSplitConverges(t *testing.T) {
	store := NewMemoryStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		store.PutVariant(variant(id, 25))
	}
	m := NewManager(store, nil)

	const users = 4000
	counts := make(map[string]int)
	for i := 0; i < users; i++ {
		v := m.GetVariant(context.Background(), user(fmt.Sprintf("user-%d", i)))
		counts[v.ID]++
	}

	for _, id := range []string{"a", "b", "c", "d"} {
		share := float64(counts[id]) / users * 100
		if math.Abs(share-25) > 3 {
			t.Errorf("variant %s share = %.1f%%, want ~25%%", id, share)
		}
	}
}

func TestManager_PartialTrafficFallsToControl(t *testing.T) {
	store := NewMemoryStore()
	store.PutVariant(variant("a", 10))
	m := NewManager(store, nil)

	const users = 2000
	control := 0
	for i := 0; i < users; i++ {
		if v := m.GetVariant(context.Background(), user(fmt.Sprintf("user-%d", i))); v.ID == core.ControlVariantID {
			control++
		}
	}
	share := float64(control) / users * 100
	if math.Abs(share-90) > 3 {
		t.Errorf("control share = %.1f%%, want ~90%%", share)
	}
}

func TestManager_TargetingRule(t *testing.T) {
	store := NewMemoryStore()
	v := variant("cs-only", 100)
	v.TargetingRule = `user.department == "cs"`
	store.PutVariant(v)
	m := NewManager(store, nil)

	if got := m.GetVariant(context.Background(), user("u1")); got.ID != "cs-only" {
		t.Errorf("cs user variant = %s, want cs-only", got.ID)
	}

	bio := &core.UserProfile{UserID: "u2", Department: "bio"}
	if got := m.GetVariant(context.Background(), bio); got.ID != core.ControlVariantID {
		t.Errorf("bio user variant = %s, want control", got.ID)
	}
}

func TestManager_InvalidTargetingRuleSkipsVariant(t *testing.T) {
	store := NewMemoryStore()
	v := variant("broken", 100)
	v.TargetingRule = `this is not CEL (`
	store.PutVariant(v)
	m := NewManager(store, nil)

	if got := m.GetVariant(context.Background(), user("u1")); got.ID != core.ControlVariantID {
		t.Errorf("variant = %s, want control", got.ID)
	}
}

func TestManager_DeactivateCausesReassignment(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutVariant(variant("a", 100))
	m := NewManager(store, nil)

	first := m.GetVariant(ctx, user("u1"))
	if first.ID != "a" {
		t.Fatalf("variant = %s, want a", first.ID)
	}

	if err := m.DeactivateVariant(ctx, "a"); err != nil {
		t.Fatalf("DeactivateVariant() error = %v", err)
	}
	store.PutVariant(variant("b", 100))

	next := m.GetVariant(ctx, user("u1"))
	if next.ID == "a" {
		t.Error("deactivated variant still returned")
	}
	if next.ID != "b" {
		t.Errorf("variant = %s, want reassigned to b", next.ID)
	}
}

func TestManager_RecordFeedback(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutVariant(variant("a", 100))
	m := NewManager(store, nil)
	m.GetVariant(ctx, user("u1"))

	feedbacks := []*Feedback{
		{UserID: "u1", VariantID: "a", Type: core.FeedbackPositive, Clicked: true},
		{UserID: "u1", VariantID: "a", Type: core.FeedbackNegative},
		{UserID: "u1", VariantID: "a", Type: core.FeedbackNotInterested},
	}
	for _, fb := range feedbacks {
		if err := m.RecordFeedback(ctx, fb); err != nil {
			t.Fatalf("RecordFeedback() error = %v", err)
		}
	}

	a, err := store.LoadAssignment(ctx, "u1")
	if err != nil || a == nil {
		t.Fatalf("LoadAssignment() = %v, %v", a, err)
	}
	if a.RecommendationsShown != 3 {
		t.Errorf("shown = %d, want 3", a.RecommendationsShown)
	}
	if a.RecommendationsClicked != 1 {
		t.Errorf("clicked = %d, want 1", a.RecommendationsClicked)
	}
	if a.PositiveFeedback != 1 || a.NegativeFeedback != 2 {
		t.Errorf("pos/neg = %d/%d, want 1/2", a.PositiveFeedback, a.NegativeFeedback)
	}

	v, _ := store.LoadVariant(ctx, "a")
	if v.TotalPositiveFeedback != 1 || v.TotalNegativeFeedback != 2 {
		t.Errorf("variant pos/neg = %d/%d, want 1/2", v.TotalPositiveFeedback, v.TotalNegativeFeedback)
	}
}

func TestManager_RecordFeedbackControlNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, nil)

	err := m.RecordFeedback(ctx, &Feedback{
		UserID: "u1", VariantID: core.ControlVariantID, Type: core.FeedbackPositive, Clicked: true,
	})
	if err != nil {
		t.Fatalf("RecordFeedback(control) error = %v", err)
	}
	if a, _ := store.LoadAssignment(ctx, "u1"); a != nil {
		t.Error("control feedback should not create bookkeeping")
	}
}

func TestManager_UpdateMetrics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutVariant(variant("a", 100))
	m := NewManager(store, nil)
	m.GetVariant(ctx, user("u1"))

	a, _ := store.LoadAssignment(ctx, "u1")
	a.RecommendationsShown = 40
	a.RecommendationsClicked = 10
	_ = store.UpdateAssignment(ctx, a)

	if err := m.UpdateMetrics(ctx, "a"); err != nil {
		t.Fatalf("UpdateMetrics() error = %v", err)
	}
	v, _ := store.LoadVariant(ctx, "a")
	if math.Abs(v.AvgClickThroughRate-25) > 0.01 {
		t.Errorf("CTR = %v, want 25", v.AvgClickThroughRate)
	}
}

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name    string
		variant *core.ABVariant
		want    float64
	}{
		{
			name:    "neutral without feedback",
			variant: &core.ABVariant{AvgClickThroughRate: 10},
			want:    50*0.6 + 10*0.4,
		},
		{
			name: "feedback ratio weighted in",
			variant: &core.ABVariant{
				TotalPositiveFeedback: 3,
				TotalNegativeFeedback: 1,
				AvgClickThroughRate:   20,
			},
			want: 75*0.6 + 20*0.4,
		},
		{
			name:    "nil variant",
			variant: nil,
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PerformanceScore(tt.variant); math.Abs(got-tt.want) > 0.001 {
				t.Errorf("PerformanceScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

// faultyAssignmentReads 模拟分配读失败的存储：LoadAssignment 恒错，
// 其余操作透传给内存实现。
type faultyAssignmentReads struct {
	*MemoryStore
}

func (s *faultyAssignmentReads) LoadAssignment(_ context.Context, _ string) (*core.ABAssignment, error) {
	return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeUnavailable, "assignment read failed")
}

func TestManager_ExistingAssignmentNotRecounted(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	inner.PutVariant(variant("a", 100))

	// 既有分配已计入 TotalAssignments
	if _, created, err := inner.CreateAssignmentIfAbsent(ctx, "u1", "a"); err != nil || !created {
		t.Fatalf("seed assignment: created=%v err=%v", created, err)
	}
	v, _ := inner.LoadVariant(ctx, "a")
	v.TotalAssignments = 1
	_ = inner.UpdateVariant(ctx, v)

	// 分配读失败会落到 CreateAssignmentIfAbsent 的既有记录分支
	m := NewManager(&faultyAssignmentReads{MemoryStore: inner}, nil)
	if got := m.GetVariant(ctx, user("u1")); got.ID != "a" {
		t.Fatalf("variant = %s, want a", got.ID)
	}

	v, _ = inner.LoadVariant(ctx, "a")
	if v.TotalAssignments != 1 {
		t.Errorf("TotalAssignments = %d, want 1 (no double count)", v.TotalAssignments)
	}
}
