package experiment

import "hash/fnv"

// Bucket 把 (userID, experimentID) 确定性地映射到 [0, 100) 的流量桶。
// 同一输入永远落在同一个桶，分桶结果跨进程、跨重启稳定。
func Bucket(userID, experimentID string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte(":"))
	_, _ = h.Write([]byte(experimentID))
	return float64(h.Sum64()%10000) / 100.0
}
