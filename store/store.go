// Package store 提供缓存层接口（core.Store / core.KeyValueStore）的实现。
//
//	var s core.Store = store.NewMemoryStore()
//	var kv core.KeyValueStore = redisStore
//
// 所有实现都只是性能加速器：调用方把错误等同于 miss 处理。
package store
