package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxSQLLength       = 200
	slowQueryThreshold = 500 * time.Millisecond
)

// gormLogger sends GORM output to the default slog logger. Failed and slow
// statements are always logged; the rest only at debug level.
type gormLogger struct {
	slow time.Duration
}

func newGormLogger() gormLogger {
	return gormLogger{slow: slowQueryThreshold}
}

// LogMode is a no-op; slog decides what is emitted.
func (l gormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l gormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, fmt.Sprintf(msg, args...))
}

func (l gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, fmt.Sprintf(msg, args...))
}

func (l gormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, fmt.Sprintf(msg, args...))
}

func (l gormLogger) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	slog.Default().LogAttrs(ctx, level, msg, attrs...)
}

// Trace runs after every statement. A missing row from First and a
// cancelled context are not failures.
func (l gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	level, msg := slog.LevelDebug, "sql statement"
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, context.Canceled):
		level, msg = slog.LevelError, "sql statement failed"
	case l.slow > 0 && elapsed > l.slow:
		level, msg = slog.LevelWarn, "slow sql statement"
	}
	if !slog.Default().Enabled(ctx, level) {
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", truncateSQL(sql)),
		slog.Int64("rows", rows),
		slog.Duration("duration", elapsed),
	}
	if level == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log(ctx, level, msg, attrs...)
}

// truncateSQL keeps the head and tail of long statements.
func truncateSQL(sql string) string {
	if len(sql) <= maxSQLLength {
		return sql
	}
	keep := (maxSQLLength - 3) / 2
	return sql[:keep] + "..." + sql[len(sql)-keep:]
}
