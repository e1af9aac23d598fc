package repository

import (
	"context"

	"MarketServer/apps/message/mq"
	"MarketServer/consts/redisKey"
	"MarketServer/pkg/async"

	"github.com/redis/go-redis/v9"
)

// fillUnreadTotalScript 代际未变化时才回填未读总数。
// KEYS[1] 总数 key，KEYS[2] 代际 key；ARGV[1] 查库前读到的代际，ARGV[2] 总数，ARGV[3] TTL 毫秒
var fillUnreadTotalScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if not gen then
	gen = '0'
end
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// unreadInvalidateCmds 先自增代际再删除总数，进行中的回填会因代际变化放弃写入
func unreadInvalidateCmds(userIDs ...int64) []mq.RedisCmd {
	cmds := make([]mq.RedisCmd, 0, len(userIDs)*3)
	for _, uid := range userIDs {
		genKey := rediskey.UnreadGenKey(uid)
		cmds = append(cmds,
			mq.RedisCmd{Command: "incr", Args: []interface{}{genKey}},
			mq.RedisCmd{Command: "pexpire", Args: []interface{}{genKey, rediskey.UnreadGenTTL.Milliseconds()}},
			mq.RedisCmd{Command: "del", Args: []interface{}{rediskey.UnreadTotalKey(uid)}},
		)
	}
	return cmds
}

// invalidateUnreadTotals 异步失效用户的未读总数缓存，失败时投递重试队列
func invalidateUnreadTotals(ctx context.Context, client *redis.Client, source string, userIDs ...int64) {
	if client == nil || len(userIDs) == 0 {
		return
	}
	cmds := unreadInvalidateCmds(userIDs...)

	async.RunSafe(ctx, func(runCtx context.Context) {
		pipe := client.Pipeline()
		for _, cmd := range cmds {
			pipe.Do(runCtx, append([]interface{}{cmd.Command}, cmd.Args...)...)
		}
		if _, err := pipe.Exec(runCtx); err != nil {
			LogAndRetryRedisError(runCtx, mq.BuildPipelineTask(cmds...).WithSource(source), err)
		}
	}, 0)
}
