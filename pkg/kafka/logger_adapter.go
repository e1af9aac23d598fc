package kafka

import (
	"fmt"

	"go.uber.org/zap"
)

// ZapLoggerAdapter 实现 kafka.Logger，把 kafka-go 的内部日志写入 zap
type ZapLoggerAdapter struct {
	l *zap.Logger
}

// NewZapLoggerAdapter l 为 nil 时使用 Nop
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLoggerAdapter{l: l.Named("kafka")}
}

func (a *ZapLoggerAdapter) Printf(format string, args ...interface{}) {
	a.l.Warn(fmt.Sprintf(format, args...))
}
