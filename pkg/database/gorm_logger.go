package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketServer/pkg/logger"

	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// gormLogger 将 gorm 日志接入 zap，只记录错误和慢 SQL
type gormLogger struct {
	level         glogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger 创建 gorm 日志适配器
func NewGormLogger(slowThreshold time.Duration) glogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &gormLogger{level: glogger.Warn, slowThreshold: slowThreshold}
}

func (l *gormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= glogger.Info {
		logger.Info(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= glogger.Warn {
		logger.Warn(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= glogger.Error {
		logger.Error(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= glogger.Silent {
		return
	}
	cost := time.Since(begin)

	switch {
	// 记录不存在、唯一键冲突属于业务分支，由 repository 处理
	case err != nil && l.level >= glogger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		logger.Error(ctx, "SQL 执行失败",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("cost", cost),
			logger.ErrorField("error", err),
		)
	case cost > l.slowThreshold && l.level >= glogger.Warn:
		sql, rows := fc()
		logger.Warn(ctx, "慢 SQL",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("cost", cost),
			logger.Duration("threshold", l.slowThreshold),
		)
	case l.level >= glogger.Info:
		sql, rows := fc()
		logger.Debug(ctx, "SQL",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("cost", cost),
		)
	}
}
