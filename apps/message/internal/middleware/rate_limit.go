package middleware

import (
	"context"
	"net/http"
	"time"

	"MarketServer/apps/message/internal/metrics"
	"MarketServer/config"
	"MarketServer/consts"
	rediskey "MarketServer/consts/redisKey"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/result"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// luaTokenBucket Redis 令牌桶脚本，原子地补充令牌并判断是否放行
//
//	KEYS[1]: 限流 key
//	ARGV[1]: 当前时间戳（毫秒）
//	ARGV[2]: 桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 本次消耗的令牌数
//
// 返回 1 放行，0 限流
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if tokens == nil then
    tokens = capacity
end
if last_time == nil then
    last_time = now
end

local elapsed = math.max(0, now - last_time)
local fresh = math.floor((elapsed * rate) / 1000)
if fresh > 0 then
    tokens = math.min(capacity, tokens + fresh)
    last_time = now
end

local allowed = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'last_time', last_time)

local ttl = math.max(60, math.ceil(capacity / rate) * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

var tokenBucketScript = redis.NewScript(luaTokenBucket)

// redisLimitTimeout 单次 Redis 限流检查的超时，防止 Redis 变慢拖住请求
const redisLimitTimeout = 50 * time.Millisecond

// RateLimiter 以 Redis 令牌桶为主的限流器。
// Redis 不可用时降级为进程内 x/time/rate 令牌桶，限流器按 key 缓存在 LRU 中。
type RateLimiter struct {
	redisClient *redis.Client
	rate        float64
	burst       int
	local       *lru.Cache[string, *rate.Limiter]
	now         func() time.Time
}

// NewRateLimiter 创建限流器，redisClient 为 nil 时只使用进程内限流
func NewRateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client) (*RateLimiter, error) {
	size := cfg.LocalCacheSize
	if size <= 0 {
		size = config.DefaultRateLimitConfig().LocalCacheSize
	}
	local, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		redisClient: redisClient,
		rate:        cfg.Rate,
		burst:       cfg.Burst,
		local:       local,
		now:         time.Now,
	}, nil
}

// Allow 判断 key 本次请求是否放行
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r.redisClient == nil {
		return r.allowLocal(key)
	}

	redisCtx, cancel := context.WithTimeout(ctx, redisLimitTimeout)
	defer cancel()

	res, err := tokenBucketScript.Run(redisCtx, r.redisClient, []string{key},
		r.now().UnixMilli(), r.burst, r.rate, 1).Int64()
	if err != nil {
		logger.Warn(ctx, "Redis 限流检查失败，降级为本地限流",
			logger.String("key", key),
			logger.ErrorField("error", err),
		)
		return r.allowLocal(key)
	}
	return res == 1
}

func (r *RateLimiter) allowLocal(key string) bool {
	limiter, ok := r.local.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.rate), r.burst)
		// 并发创建时以先写入的为准
		if prev, loaded, _ := r.local.PeekOrAdd(key, limiter); loaded {
			limiter = prev
		}
	}
	return limiter.AllowN(r.now(), 1)
}

// UserRateLimitMiddleware 按用户限流，未认证请求按 IP 限流。
// 需要在 JWTAuthMiddleware 之后使用。
func UserRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		scope := "user"
		var key string
		if userID, ok := GetUserID(c); ok {
			key = rediskey.UserRateLimitKey(userID)
		} else {
			scope = "ip"
			key = rediskey.IPRateLimitKey(GetClientIP(c))
		}

		ctx := NewContextWithGin(c)
		if !limiter.Allow(ctx, key) {
			metrics.RateLimited.WithLabelValues(scope).Inc()
			logger.Warn(ctx, "请求被限流",
				logger.String("key", key),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			result.Abort(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}

		c.Next()
	}
}
