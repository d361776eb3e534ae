package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// zapLogger routes gorm's query log through the service logger.
type zapLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger returns a gorm logger writing to l at the given level.
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	return &zapLogger{
		logger:        l.Named("gorm").WithOptions(zap.AddCallerSkip(3)),
		level:         level,
		slowThreshold: slowQueryThreshold,
	}
}

func (z *zapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *z
	clone.level = level
	return &clone
}

func (z *zapLogger) Info(_ context.Context, msg string, args ...any) {
	if z.level >= gormlogger.Info {
		z.logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (z *zapLogger) Warn(_ context.Context, msg string, args ...any) {
	if z.level >= gormlogger.Warn {
		z.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (z *zapLogger) Error(_ context.Context, msg string, args ...any) {
	if z.level >= gormlogger.Error {
		z.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (z *zapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	// not-found is a normal lookup outcome, the service layer maps it
	case err != nil && z.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		z.logger.Error("query failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > z.slowThreshold && z.level >= gormlogger.Warn:
		sql, rows := fc()
		z.logger.Warn("slow query", zap.Duration("elapsed", elapsed), zap.Duration("threshold", z.slowThreshold), zap.Int64("rows", rows), zap.String("sql", sql))
	case z.level >= gormlogger.Info:
		sql, rows := fc()
		z.logger.Debug("query", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
