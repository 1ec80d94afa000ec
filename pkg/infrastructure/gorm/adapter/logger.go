package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/bus-booking/pkg/application"
)

// gormLoggerAdapter faz o gorm escrever no AppLogger da aplicação.
type gormLoggerAdapter struct {
	appLogger     application.AppLogger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLoggerAdapter(appLogger application.AppLogger, slowThreshold time.Duration) gormLogger.Interface {
	return &gormLoggerAdapter{
		appLogger:     appLogger,
		level:         gormLogger.Warn,
		slowThreshold: slowThreshold,
	}
}

func (a *gormLoggerAdapter) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *a
	clone.level = level
	return &clone
}

func (a *gormLoggerAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormLogger.Info {
		a.appLogger.Info(ctx, fmt.Sprintf(msg, args...), map[string]interface{}{"component": "gorm"})
	}
}

func (a *gormLoggerAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormLogger.Warn {
		a.appLogger.Info(ctx, fmt.Sprintf(msg, args...), map[string]interface{}{"component": "gorm", "severity": "warn"})
	}
}

func (a *gormLoggerAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormLogger.Error {
		a.appLogger.Error(ctx, fmt.Sprintf(msg, args...), map[string]interface{}{"component": "gorm"})
	}
}

func (a *gormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && a.level >= gormLogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		application.LogError(ctx, a.appLogger, "query failed", err, map[string]interface{}{
			"component": "gorm",
			"sql":       sql,
			"rows":      rows,
			"elapsed":   elapsed.String(),
		})
	case a.slowThreshold > 0 && elapsed > a.slowThreshold && a.level >= gormLogger.Warn:
		sql, rows := fc()
		a.appLogger.Info(ctx, "slow query", map[string]interface{}{
			"component": "gorm",
			"sql":       sql,
			"rows":      rows,
			"elapsed":   elapsed.String(),
		})
	case a.level >= gormLogger.Info:
		sql, rows := fc()
		a.appLogger.Trace(ctx, "query", map[string]interface{}{
			"component": "gorm",
			"sql":       sql,
			"rows":      rows,
			"elapsed":   elapsed.String(),
		})
	}
}
