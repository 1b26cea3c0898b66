package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/experiment"
)

func TestCollector_FansOutToEngagementStore(t *testing.T) {
	store := experiment.NewMemoryStore()
	c := NewCollector(nil, store, nil, 4, nil)

	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC) // Monday
	err := c.Submit(&Event{
		UserID:     "u1",
		ItemID:     "post-1",
		ItemType:   core.ItemTypePost,
		Type:       core.FeedbackPositive,
		Tags:       []string{"nlp"},
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	c.Close()

	records, err := store.RecentEngagement(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("RecentEngagement() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.HourOfDay != 14 || rec.DayOfWeek != 1 {
		t.Errorf("hour/day = %d/%d, want 14/1", rec.HourOfDay, rec.DayOfWeek)
	}
	if rec.ContentType != core.ItemTypePost || rec.EngagementScore != 5 {
		t.Errorf("record = %+v", rec)
	}
}

func TestCollector_RejectsInvalidEvents(t *testing.T) {
	c := NewCollector(nil, nil, nil, 4, nil)
	defer c.Close()

	if err := c.Submit(&Event{ItemID: "x", Type: core.FeedbackPositive}); err == nil {
		t.Error("expected error for missing user id")
	}
	if err := c.Submit(&Event{UserID: "u1", Type: "meh"}); err == nil {
		t.Error("expected error for unknown feedback type")
	}
}

func TestCollector_SubmitAfterClose(t *testing.T) {
	c := NewCollector(nil, nil, nil, 4, nil)
	c.Close()

	err := c.Submit(&Event{UserID: "u1", Type: core.FeedbackPositive})
	if err == nil {
		t.Fatal("expected error after close")
	}
	domainErr := core.GetDomainError(err)
	if domainErr == nil || domainErr.Code != core.ErrorCodeUnavailable {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
}

func TestCollector_QueueFullDropsWithoutBlocking(t *testing.T) {
	// 无消费方依赖的收集器会很快排空队列，这里用慢 store 堵住 worker
	slow := &slowEngagement{delay: 50 * time.Millisecond}
	c := NewCollector(nil, slow, nil, 1, nil)
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_ = c.Submit(&Event{UserID: "u1", Type: core.FeedbackPositive})
		}
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Submit blocked on full queue")
	}
}

type slowEngagement struct {
	delay time.Duration
}

func (s *slowEngagement) RecordEngagementTime(_ context.Context, _ *core.EngagementTimeRecord) error {
	time.Sleep(s.delay)
	return nil
}

func (s *slowEngagement) RecentEngagement(_ context.Context, _ string, _ int) ([]*core.EngagementTimeRecord, error) {
	return nil, nil
}

func TestCollector_CloseDrainsPendingEvents(t *testing.T) {
	store := experiment.NewMemoryStore()
	c := NewCollector(nil, store, nil, 16, nil)

	const n = 10
	for i := 0; i < n; i++ {
		if err := c.Submit(&Event{UserID: "u1", Type: core.FeedbackPositive}); err != nil {
			t.Fatalf("Submit(#%d) error = %v", i, err)
		}
	}
	// Close 返回前，已入队的事件必须全部处理完
	c.Close()

	records, err := store.RecentEngagement(context.Background(), "u1", n+1)
	if err != nil {
		t.Fatalf("RecentEngagement() error = %v", err)
	}
	if len(records) != n {
		t.Errorf("records = %d, want %d (events lost at close)", len(records), n)
	}
}
