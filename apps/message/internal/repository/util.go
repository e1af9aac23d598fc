package repository

import (
	"math/rand"
	"time"
)

// emptyCacheValue 空值占位，防缓存穿透
const emptyCacheValue = "{}"

// getRandomExpireTime 生成带随机抖动的过期时间（±10%），防止缓存雪崩
func getRandomExpireTime(baseExpire time.Duration) time.Duration {
	jitterRange := float64(baseExpire) * 0.1
	jitter := time.Duration(rand.Float64()*jitterRange*2 - jitterRange)
	return baseExpire + jitter
}

// defaultNow 仓储层统一时钟，截断到毫秒与 DATETIME(3) 精度一致
func defaultNow() time.Time {
	return TruncateClock(time.Now())
}

// TruncateClock 时间统一为 UTC 毫秒精度，消息时间与水位线必须使用同一精度比较
func TruncateClock(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// normalizePage 分页参数兜底
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
