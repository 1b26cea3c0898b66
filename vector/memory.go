// Package vector 提供 core.VectorService 的实现。
// 生产部署接 Milvus / pgvector 等向量数据库；这里内置内存实现用于测试与原型。
package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rushteam/scholarrec/core"
)

// MemoryVectorService 是内存实现的向量服务，线程安全。
// 平替第三方向量数据库 SDK，支持按集合存储与余弦相似度搜索。
type MemoryVectorService struct {
	mu          sync.RWMutex
	collections map[string]map[string][]float64 // collection -> item ID -> vector
}

func NewMemoryVectorService() *MemoryVectorService {
	return &MemoryVectorService{
		collections: make(map[string]map[string][]float64),
	}
}

// Upsert 写入或覆盖一条向量。
func (m *MemoryVectorService) Upsert(collection, id string, vec []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string][]float64)
	}
	m.collections[collection][id] = vec
}

// Remove 删除一条向量。
func (m *MemoryVectorService) Remove(collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
}

// Search 实现 core.VectorService：余弦相似度降序，应用 MinSimilarity 与 ExcludeIDs。
func (m *MemoryVectorService) Search(ctx context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	if req == nil || len(req.Vector) == 0 {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector: empty search request")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[req.Collection]
	if !ok {
		return &core.VectorSearchResult{}, nil
	}

	excluded := make(map[string]bool, len(req.ExcludeIDs))
	for _, id := range req.ExcludeIDs {
		excluded[id] = true
	}

	items := make([]core.VectorSearchItem, 0, len(col))
	for id, vec := range col {
		if excluded[id] {
			continue
		}
		sim := CosineSimilarity(req.Vector, vec)
		if sim < req.MinSimilarity {
			continue
		}
		items = append(items, core.VectorSearchItem{ID: id, Similarity: sim})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Similarity != items[j].Similarity {
			return items[i].Similarity > items[j].Similarity
		}
		return items[i].ID < items[j].ID
	})

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}
	if len(items) > topK {
		items = items[:topK]
	}

	return &core.VectorSearchResult{Items: items}, nil
}

func (m *MemoryVectorService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]map[string][]float64)
	return nil
}

// CosineSimilarity 计算余弦相似度，维度不一致或零向量返回 0。
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ core.VectorService = (*MemoryVectorService)(nil)
