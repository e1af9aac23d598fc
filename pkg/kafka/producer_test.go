package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	writeFn func(ctx context.Context, msgs ...kafka.Message) error
	calls   int
	closed  bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.writeFn == nil {
		return nil
	}
	return f.writeFn(ctx, msgs...)
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducerSend(t *testing.T) {
	var got kafka.Message
	w := &fakeWriter{writeFn: func(_ context.Context, msgs ...kafka.Message) error {
		require.Len(t, msgs, 1)
		got = msgs[0]
		return nil
	}}
	p := newProducer(w, "topic-a")

	require.NoError(t, p.Send(context.Background(), []byte("k"), []byte("v")))
	assert.Equal(t, "k", string(got.Key))
	assert.Equal(t, "v", string(got.Value))
	assert.Equal(t, "topic-a", p.Topic())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducerBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	w := &fakeWriter{writeFn: func(context.Context, ...kafka.Message) error {
		return errors.New("broker down")
	}}
	p := newProducer(w, "topic-b")

	for i := 0; i < 5; i++ {
		err := p.Send(context.Background(), nil, []byte("v"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrBreakerOpen)
	}

	err := p.Send(context.Background(), nil, []byte("v"))
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 5, w.calls, "熔断打开后不再调用 writer")
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewZapLoggerAdapter(zap.New(core))
	a.Printf("lost connection to %s", "b1")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "lost connection to b1", logs.All()[0].Message)
	assert.Equal(t, "kafka", logs.All()[0].LoggerName)

	assert.NotPanics(t, func() { NewZapLoggerAdapter(nil).Printf("x") })
}
