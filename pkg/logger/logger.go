package logger

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"MarketServer/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceIDKey 上下文中 trace_id 的 key，与 gin.Context 中的 key 保持一致
const TraceIDKey = "trace_id"

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// L 返回全局 logger。未调用 ReplaceGlobal 前返回 Nop，调用方无需判空。
func L() *zap.Logger {
	return global.Load()
}

// ReplaceGlobal 设置全局 logger，并同步 zap 的全局实例。
func ReplaceGlobal(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
	zap.ReplaceGlobals(l)
}

// Build 根据配置构建 zap Logger。
// - 默认输出 stdout/stderr，容器内直接 docker logs。
// - OutputPaths/ErrorOutputPaths 可写文件（无滚动，滚动交给外部）。
// - Level 解析失败时回退到 info。
func Build(cfg config.LoggerConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339Nano),
		EncodeDuration: zapcore.MillisDurationEncoder, // 耗时统一毫秒
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Encoding) {
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if cfg.EnableColor {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, buildSyncer(cfg.OutputPaths, zapcore.AddSync(os.Stdout)), level)
	opts := []zap.Option{
		zap.ErrorOutput(buildSyncer(cfg.ErrorOutputPaths, zapcore.AddSync(os.Stderr))),
		zap.AddCaller(),
		zap.AddCallerSkip(2), // 跳过 Info/Warn... 和 write 两层封装
		zap.Fields(zap.String("service", "message")),
	}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, opts...), nil
}

// buildSyncer 支持 stdout/stderr 关键字和文件路径，文件打开失败时跳过该路径
func buildSyncer(paths []string, fallback zapcore.WriteSyncer) zapcore.WriteSyncer {
	syncers := make([]zapcore.WriteSyncer, 0, len(paths))
	for _, p := range paths {
		switch strings.ToLower(p) {
		case "stdout":
			syncers = append(syncers, zapcore.AddSync(os.Stdout))
		case "stderr":
			syncers = append(syncers, zapcore.AddSync(os.Stderr))
		default:
			f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err == nil {
				syncers = append(syncers, zapcore.AddSync(f))
			}
		}
	}
	if len(syncers) == 0 {
		return fallback
	}
	return zapcore.NewMultiWriteSyncer(syncers...)
}

// write 统一追加 trace_id（来自 gin 上下文或 NewContextWithGin 派生的 ctx）
func write(ctx context.Context, lvl zapcore.Level, msg string, fields []zap.Field) {
	l := global.Load()
	if ce := l.Check(lvl, msg); ce != nil {
		if ctx != nil {
			if traceId, ok := ctx.Value(TraceIDKey).(string); ok && traceId != "" {
				fields = append(fields, zap.String(TraceIDKey, traceId))
			}
		}
		ce.Write(fields...)
	}
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.DebugLevel, msg, fields)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.InfoLevel, msg, fields)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.WarnLevel, msg, fields)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.ErrorLevel, msg, fields)
}

func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zapcore.FatalLevel, msg, fields)
}

// ========== Field 辅助函数 ==========
// 业务代码只依赖本包，不直接导入 zap

func String(key, value string) zap.Field { return zap.String(key, value) }

func Int(key string, value int) zap.Field { return zap.Int(key, value) }

func Int32(key string, value int32) zap.Field { return zap.Int32(key, value) }

func Int64(key string, value int64) zap.Field { return zap.Int64(key, value) }

func Int64s(key string, values []int64) zap.Field { return zap.Int64s(key, values) }

func Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }

func Bool(key string, value bool) zap.Field { return zap.Bool(key, value) }

// ErrorField 错误字段，key 为空时使用 zap 默认的 "error"
func ErrorField(key string, err error) zap.Field {
	if key == "" || key == "error" {
		return zap.Error(err)
	}
	return zap.NamedError(key, err)
}

func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

func Duration(key string, value time.Duration) zap.Field { return zap.Duration(key, value) }

func Time(key string, value time.Time) zap.Field { return zap.Time(key, value) }
