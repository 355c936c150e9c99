package database

import (
	"context"
	"errors"
	"time"

	"github.com/blues/memberadmin/internal/logger"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// GormLogger 把 gorm 日志输出到统一的 zap 日志器
type GormLogger struct {
	level gormLogger.LogLevel
}

// NewGormLogger 按应用日志级别生成 gorm 日志级别
func NewGormLogger(level logger.LogLevel) *GormLogger {
	l := gormLogger.Warn
	switch level {
	case logger.DEBUG:
		l = gormLogger.Info
	case logger.ERROR, logger.FATAL:
		l = gormLogger.Error
	}
	return &GormLogger{level: l}
}

func (g *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return &GormLogger{level: level}
}

func (g *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Info {
		logger.Info(msg, args...)
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Warn {
		logger.Warn(msg, args...)
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Error {
		logger.Error(msg, args...)
	}
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormLogger.Error:
		sql, rows := fc()
		logger.Error("SQL error: %v [%s] rows=%d sql=%s", err, elapsed, rows, sql)
	case elapsed > slowQueryThreshold && g.level >= gormLogger.Warn:
		sql, rows := fc()
		logger.Warn("Slow SQL [%s] rows=%d sql=%s", elapsed, rows, sql)
	case g.level >= gormLogger.Info:
		sql, rows := fc()
		logger.Debug("SQL [%s] rows=%d sql=%s", elapsed, rows, sql)
	}
}
