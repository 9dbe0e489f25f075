package redisKey

const (
	LOCK_ORDER       = "lock:order:"       // 同一訂單回调处理互斥
	CACHE_ORDER_DATA = "cache:order:data:" // 訂單查询暂存
)
