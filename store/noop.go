package store

import (
	"context"

	"github.com/rushteam/scholarrec/core"
)

// NoopStore 是永远 miss 的 Store：Get 返回 NOT_FOUND，写入被丢弃。
// 用于测试，以及缓存后端未配置时的显式降级（行为与"缓存不可用"一致）。
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Name() string { return "noop" }

func (n *NoopStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, core.ErrStoreNotFound
}

func (n *NoopStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	return nil
}

func (n *NoopStore) Delete(ctx context.Context, key string) error { return nil }

func (n *NoopStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	return map[string][]byte{}, nil
}

func (n *NoopStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	return nil
}

func (n *NoopStore) Close() error { return nil }

var _ core.Store = (*NoopStore)(nil)
