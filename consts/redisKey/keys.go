package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// UserInfoTTL 用户信息缓存 TTL
	UserInfoTTL = 1 * time.Hour
	// UserInfoEmptyTTL 用户信息空值缓存 TTL
	UserInfoEmptyTTL = 5 * time.Minute

	// UnreadTotalTTL 未读总数缓存 TTL，写路径会主动失效，TTL 只兜底
	UnreadTotalTTL = 10 * time.Minute
	// UnreadGenTTL 未读总数代际计数 TTL，需长于 UnreadTotalTTL
	UnreadGenTTL = 24 * time.Hour
)

// ==================== Key 构造函数 ====================

// UserInfoKey 生成用户信息缓存 Key: market:user:info:{user_id}
func UserInfoKey(userID int64) string {
	return fmt.Sprintf("market:user:info:%d", userID)
}

// UnreadTotalKey 生成未读总数缓存 Key: message:unread:{user_id}:total
// hash tag 保证与代际 key 落在同一 slot，回填脚本可以同时操作
func UnreadTotalKey(userID int64) string {
	return fmt.Sprintf("message:unread:{%d}:total", userID)
}

// UnreadGenKey 生成未读总数代际 Key: message:unread:{user_id}:gen，每次失效自增
func UnreadGenKey(userID int64) string {
	return fmt.Sprintf("message:unread:{%d}:gen", userID)
}

// UserRateLimitKey 用户限流 Key: message:rate:limit:user:{user_id}
func UserRateLimitKey(userID int64) string {
	return fmt.Sprintf("message:rate:limit:user:%d", userID)
}

// IPRateLimitKey IP 限流 Key: message:rate:limit:ip:{ip}
func IPRateLimitKey(ip string) string {
	return fmt.Sprintf("message:rate:limit:ip:%s", ip)
}
