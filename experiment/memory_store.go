package experiment

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/scholarrec/core"
)

// MemoryStore 是 ExperimentStore 与 EngagementStore 的内存实现，
// 用于测试和单机部署。生产部署应换成数据库实现。
type MemoryStore struct {
	mu          sync.RWMutex
	variants    map[string]*core.ABVariant
	assignments map[string]*core.ABAssignment      // userID → assignment
	engagement  map[string][]*core.EngagementTimeRecord // userID → 按时间倒序
}

var (
	_ core.ExperimentStore = (*MemoryStore)(nil)
	_ core.EngagementStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		variants:    make(map[string]*core.ABVariant),
		assignments: make(map[string]*core.ABAssignment),
		engagement:  make(map[string][]*core.EngagementTimeRecord),
	}
}

// PutVariant 写入（或覆盖）一个变体。
func (s *MemoryStore) PutVariant(v *core.ABVariant) {
	if v == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.variants[v.ID] = &cp
}

func (s *MemoryStore) LoadActiveVariants(_ context.Context) ([]*core.ABVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.ABVariant, 0, len(s.variants))
	for _, v := range s.variants {
		if v.IsActive {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) LoadVariant(_ context.Context, variantID string) (*core.ABVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[variantID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeNotFound,
			"experiment: variant not found: "+variantID)
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) LoadAssignment(_ context.Context, userID string) (*core.ABAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) CreateAssignmentIfAbsent(_ context.Context, userID, variantID string) (*core.ABAssignment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.assignments[userID]; ok {
		// 仅当既有分配仍指向活跃变体时沿用；变体停用后允许重新分桶
		if v, found := s.variants[existing.VariantID]; found && v.IsActive {
			cp := *existing
			return &cp, false, nil
		}
	}
	a := &core.ABAssignment{
		UserID:     userID,
		VariantID:  variantID,
		AssignedAt: time.Now(),
	}
	s.assignments[userID] = a
	cp := *a
	return &cp, true, nil
}

func (s *MemoryStore) UpdateAssignment(_ context.Context, a *core.ABAssignment) error {
	if a == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.assignments[a.UserID] = &cp
	return nil
}

func (s *MemoryStore) UpdateVariant(_ context.Context, v *core.ABVariant) error {
	if v == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.variants[v.ID] = &cp
	return nil
}

func (s *MemoryStore) LoadAssignmentsByVariant(_ context.Context, variantID string) ([]*core.ABAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.ABAssignment
	for _, a := range s.assignments {
		if a.VariantID == variantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) RecordEngagementTime(_ context.Context, rec *core.EngagementTimeRecord) error {
	if rec == nil || rec.UserID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	// 新记录插在最前，RecentEngagement 直接按倒序取
	s.engagement[rec.UserID] = append([]*core.EngagementTimeRecord{&cp}, s.engagement[rec.UserID]...)
	return nil
}

func (s *MemoryStore) RecentEngagement(_ context.Context, userID string, limit int) ([]*core.EngagementTimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.engagement[userID]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]*core.EngagementTimeRecord, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}
