package core

import "context"

// 本文件定义推荐核心消费的外部协作方接口。
// 宿主平台的持久化（用户/帖子/论文/互动的 CRUD）不在本库范围内，
// 全部通过这些接口接入；存储不可达时实现方应返回 UNAVAILABLE 的
// DomainError，而不是静默返回空数据。

// ProfileStore 提供用户画像的装配数据。
type ProfileStore interface {
	// LoadProfile 装配用户画像；用户不存在返回 ErrUserNotFound。
	LoadProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// CandidateStore 提供候选内容池。
type CandidateStore interface {
	// FetchCandidates 拉取一批指定类型的候选内容，排除 excludeIDs，至多 limit 条。
	FetchCandidates(ctx context.Context, itemType ItemType, excludeIDs []string, limit int) ([]*Item, error)
}

// ExperimentStore 持久化实验变体与分桶记录。
type ExperimentStore interface {
	// LoadActiveVariants 返回所有活跃变体。
	LoadActiveVariants(ctx context.Context) ([]*ABVariant, error)

	// LoadVariant 按 ID 读取变体；不存在返回 NOT_FOUND。
	LoadVariant(ctx context.Context, variantID string) (*ABVariant, error)

	// LoadAssignment 返回用户最近一次分配，无记录时返回 (nil, nil)。
	LoadAssignment(ctx context.Context, userID string) (*ABAssignment, error)

	// CreateAssignmentIfAbsent 原子地创建分配：若该用户已有分配则返回既有记录，
	// created 标识本次调用是否新建。并发的首次请求不会产生两条分配。
	CreateAssignmentIfAbsent(ctx context.Context, userID, variantID string) (a *ABAssignment, created bool, err error)

	// UpdateAssignment 回写分配的反馈计数。
	UpdateAssignment(ctx context.Context, a *ABAssignment) error

	// UpdateVariant 回写变体（计数、指标、活跃状态）。
	UpdateVariant(ctx context.Context, v *ABVariant) error

	// LoadAssignmentsByVariant 返回某变体的全部分配（指标重算用）。
	LoadAssignmentsByVariant(ctx context.Context, variantID string) ([]*ABAssignment, error)
}

// EngagementStore 持久化互动时间记录（append-only）。
type EngagementStore interface {
	// RecordEngagementTime 追加一条互动时间记录。
	RecordEngagementTime(ctx context.Context, rec *EngagementTimeRecord) error

	// RecentEngagement 返回用户最近的 limit 条记录（按时间倒序）。
	RecentEngagement(ctx context.Context, userID string, limit int) ([]*EngagementTimeRecord, error)
}
