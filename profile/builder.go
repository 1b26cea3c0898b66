package profile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/scholarrec/core"
)

// Enricher 在基础画像之上补充特征（如特征平台上的长期兴趣）。
// 补充失败不应让画像构建失败，Builder 只记日志后继续。
type Enricher interface {
	Name() string
	// Enrich 就地修改画像。
	Enrich(ctx context.Context, profile *core.UserProfile) error
}

// Builder 装配推荐用的用户画像：先从 ProfileStore 读取基础画像
// （兴趣、院系、社交关系、已互动内容），再依次过 Enrichers 补充特征。
//
// 用户不存在时返回 ErrUserNotFound，由调用方决定如何透出；
// 单个 Enricher 的失败或超时只损失它那部分特征。
type Builder struct {
	Store     core.ProfileStore
	Enrichers []Enricher

	// EnrichTimeout 是每个 Enricher 的超时时间，默认 300ms。
	EnrichTimeout time.Duration

	Logger *zap.Logger
}

const defaultEnrichTimeout = 300 * time.Millisecond

func (b *Builder) Build(ctx context.Context, userID string) (*core.UserProfile, error) {
	if b == nil || b.Store == nil {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeUnavailable,
			"profile: store not configured")
	}
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput,
			"profile: user id is required")
	}

	p, err := b.Store.LoadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, core.ErrUserNotFound
	}

	timeout := b.EnrichTimeout
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	for _, e := range b.Enrichers {
		if e == nil {
			continue
		}
		enrichCtx, cancel := context.WithTimeout(ctx, timeout)
		err := e.Enrich(enrichCtx, p)
		cancel()
		if err != nil && b.Logger != nil {
			b.Logger.Warn("profile: enricher failed",
				zap.String("enricher", e.Name()),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
	return p, nil
}
