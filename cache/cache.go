// Package cache 提供推荐结果的读穿缓存层。
//
// 缓存永远只做加速：读失败按 miss 处理，写失败只记日志，
// 底层 Store 不可达时推荐链路退化为全量计算而不是报错。
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/scholarrec/core"
)

// DefaultTTL 是推荐结果的默认缓存时长。
const DefaultTTL = 5 * time.Minute

// 用户级失效用版本号实现：每个用户一个版本 key，失效时写入新版本，
// 旧版本下的结果 key 自然失联，由 TTL 回收。删除比枚举用户的所有
// 结果 key 便宜得多，Redis 和内存实现都适用。
const versionKeyPrefix = "rec:ver:"

// RecommendationCache 缓存序列化后的推荐响应。
type RecommendationCache struct {
	store  core.Store
	ttl    time.Duration
	logger *zap.Logger
}

// New 创建缓存层。store 为 nil 时所有操作都是 no-op（全量 miss）。
func New(store core.Store, ttl time.Duration, logger *zap.Logger) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationCache{store: store, ttl: ttl, logger: logger}
}

// Key 构造结果缓存键：recs:{ver}:{userID}:{type}:{limit}:{variantID}。
// 版本号来自用户的版本 key，InvalidateUser 改版本号后旧键全部失联。
func (c *RecommendationCache) Key(ctx context.Context, userID string, itemType core.ItemType, limit int, variantID string) string {
	ver := c.userVersion(ctx, userID)
	return fmt.Sprintf("recs:%s:%s:%s:%d:%s", ver, userID, itemType, limit, variantID)
}

// Get 读取缓存的响应字节。miss 或任何读错误都返回 (nil, false)。
func (c *RecommendationCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.store == nil || key == "" {
		return nil, false
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			c.logger.Warn("cache: get failed, treat as miss", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Set 写入缓存，尽力而为。
func (c *RecommendationCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil || c.store == nil || key == "" || len(data) == 0 {
		return
	}
	if err := c.store.Set(ctx, key, data, int(c.ttl.Seconds())); err != nil {
		c.logger.Warn("cache: set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateUser 使某用户的全部缓存结果失效（兴趣变更、新反馈等场景）。
func (c *RecommendationCache) InvalidateUser(ctx context.Context, userID string) {
	if c == nil || c.store == nil || userID == "" {
		return
	}
	ver := strconv.FormatInt(time.Now().UnixNano(), 36)
	// 版本 key 的存活时间只需远大于结果 TTL
	ttl := int((24 * time.Hour).Seconds())
	if err := c.store.Set(ctx, versionKeyPrefix+userID, []byte(ver), ttl); err != nil {
		c.logger.Warn("cache: invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (c *RecommendationCache) userVersion(ctx context.Context, userID string) string {
	if c == nil || c.store == nil {
		return "0"
	}
	data, err := c.store.Get(ctx, versionKeyPrefix+userID)
	if err != nil || len(data) == 0 {
		return "0"
	}
	return string(data)
}
