package core

import "context"

// VectorService 是向量检索的领域接口（语义相似召回专用）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（vector）实现
//   - 向量后端是可选依赖：后端未配置/不可达/超时，语义匹配整体退化为
//     空结果而不是错误，基础打分链路不受影响
//
// 实现：
//   - vector.MemoryVectorService（内存实现，测试/原型）
//   - 其他向量后端（Milvus、pgvector、ES 等）实现同一接口接入
type VectorService interface {
	// Search 向量搜索，结果按相似度降序。
	Search(ctx context.Context, req *VectorSearchRequest) (*VectorSearchResult, error)

	// Close 关闭连接。
	Close() error
}

// Embedder 把文本映射为向量。向量的计算本身不在本库范围内，
// 这里只消费其结果（用户兴趣词 → 查询向量）。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorSearchRequest 向量搜索请求。
type VectorSearchRequest struct {
	// Collection 集合名称（按内容类型分集合，如 "posts" / "papers"）
	Collection string

	// Vector 查询向量
	Vector []float64

	// TopK 返回 TopK 个最相似的结果
	TopK int

	// MinSimilarity 相似度下限，低于该值的结果被丢弃
	MinSimilarity float64

	// ExcludeIDs 排除的内容 ID
	ExcludeIDs []string
}

// VectorSearchItem 单个向量搜索结果项。
type VectorSearchItem struct {
	ID         string
	Similarity float64 // 余弦相似度，[-1,1]
}

// VectorSearchResult 向量搜索结果。
type VectorSearchResult struct {
	Items []VectorSearchItem
}
