package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"MarketServer/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var mqLoggerOnce sync.Once

func initMQTestLogger() {
	mqLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeProducer struct {
	sendFn func(ctx context.Context, key, value []byte) error
	sent   []RedisTask
	keys   []string
}

func (f *fakeProducer) Send(ctx context.Context, key, value []byte) error {
	var task RedisTask
	if err := json.Unmarshal(value, &task); err != nil {
		return err
	}
	f.sent = append(f.sent, task)
	f.keys = append(f.keys, string(key))
	if f.sendFn == nil {
		return nil
	}
	return f.sendFn(ctx, key, value)
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func encodeTask(t *testing.T, task RedisTask) kafka.Message {
	t.Helper()
	data, err := json.Marshal(task)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestBuildDelPipelineTask(t *testing.T) {
	single := BuildDelPipelineTask("k1")
	assert.Equal(t, CmdSimple, single.Type)
	assert.Equal(t, []string{"k1"}, single.Keys())

	multi := BuildDelPipelineTask("k1", "k2")
	assert.Equal(t, CmdPipeline, multi.Type)
	assert.Equal(t, []string{"k1", "k2"}, multi.Keys())
	assert.Equal(t, defaultMaxRetries, multi.MaxRetries)
}

func TestRedisTaskWithContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, "t-9")
	ctx = context.WithValue(ctx, "user_id", int64(42))

	task := BuildDelTask("k").WithContext(ctx).WithError(errors.New("timeout")).WithSource("unit")
	assert.Equal(t, "t-9", task.TraceID)
	assert.Equal(t, int64(42), task.UserId)
	assert.Equal(t, "timeout", task.OriginalErr)
	assert.Equal(t, "unit", task.Source)
}

func TestSendRedisTask(t *testing.T) {
	SetGlobalProducer(nil)
	assert.ErrorIs(t, SendRedisTask(context.Background(), BuildDelTask("k")), ErrProducerNotReady)

	p := &fakeProducer{}
	SetGlobalProducer(p)
	t.Cleanup(func() { SetGlobalProducer(nil) })

	require.NoError(t, SendRedisTask(context.Background(), BuildDelPipelineTask("a", "b")))
	require.Len(t, p.sent, 1)
	assert.Equal(t, "a,b", p.keys[0])
	assert.Len(t, p.sent[0].PipelineCmds, 2)
}

func TestExecuteRedisTask(t *testing.T) {
	mr, client := newMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k1", "1"))
	require.NoError(t, mr.Set("k2", "2"))
	require.NoError(t, mr.Set("k3", "3"))

	require.NoError(t, ExecuteRedisTask(ctx, client, BuildDelTask("k1")))
	assert.False(t, mr.Exists("k1"))

	require.NoError(t, ExecuteRedisTask(ctx, client, BuildDelPipelineTask("k2", "k3")))
	assert.False(t, mr.Exists("k2"))
	assert.False(t, mr.Exists("k3"))

	// 经过 JSON 往返后的 INCR + PEXPIRE + DEL 仍可重放
	task := BuildPipelineTask(
		RedisCmd{Command: "incr", Args: []interface{}{"gen"}},
		RedisCmd{Command: "pexpire", Args: []interface{}{"gen", int64(60000)}},
		RedisCmd{Command: "del", Args: []interface{}{"k4"}},
	)
	require.NoError(t, mr.Set("k4", "4"))
	var decoded RedisTask
	require.NoError(t, json.Unmarshal(encodeTask(t, task).Value, &decoded))
	require.NoError(t, ExecuteRedisTask(ctx, client, decoded))
	gen, err := mr.Get("gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
	assert.True(t, mr.TTL("gen") > 0)
	assert.False(t, mr.Exists("k4"))
	assert.Equal(t, []string{"gen", "gen", "k4"}, decoded.Keys())

	assert.Error(t, ExecuteRedisTask(ctx, nil, BuildDelTask("k1")))
	assert.Error(t, ExecuteRedisTask(ctx, client, RedisTask{Type: "lua"}))
}

func TestRedisRetryConsumerStart(t *testing.T) {
	initMQTestLogger()
	mr, client := newMiniRedis(t)
	require.NoError(t, mr.Set("message:unread:total:1", "3"))

	reader := &fakeReader{msgs: []kafka.Message{
		encodeTask(t, BuildDelTask("message:unread:total:1")),
		{Value: []byte("not json")},
	}}
	producer := &fakeProducer{}
	consumer := NewRedisRetryConsumer(reader, client, producer, 0)

	require.NoError(t, consumer.Start(context.Background()))

	assert.False(t, mr.Exists("message:unread:total:1"))
	assert.Len(t, reader.committed, 2, "成功和无法解析的消息都要提交")
	assert.Empty(t, producer.sent)

	require.NoError(t, consumer.Close())
	assert.True(t, reader.closed)
}

func TestRedisRetryConsumerRequeueAndGiveUp(t *testing.T) {
	initMQTestLogger()
	mr, client := newMiniRedis(t)
	mr.Close() // Redis 不可用，任务执行失败

	producer := &fakeProducer{}
	consumer := NewRedisRetryConsumer(&fakeReader{}, client, producer, 0)

	t.Run("requeue_with_incremented_count", func(t *testing.T) {
		consumer.HandleMessage(context.Background(), encodeTask(t, BuildDelTask("k")))
		require.Len(t, producer.sent, 1)
		assert.Equal(t, 1, producer.sent[0].RetryCount)
		assert.NotEmpty(t, producer.sent[0].OriginalErr)
	})

	t.Run("give_up_after_max_retries", func(t *testing.T) {
		task := BuildDelTask("k")
		task.RetryCount = defaultMaxRetries - 1
		consumer.HandleMessage(context.Background(), encodeTask(t, task))
		assert.Len(t, producer.sent, 1, "达到上限后不再投递")
	})
}
