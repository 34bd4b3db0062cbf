package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"robolab-portal/config"
)

// NewDB opens the relational store selected by cfg.Driver. The pool is lazy:
// an unreachable server does not fail NewDB, use Ping to find out.
// appLevel drives the verbosity of the gorm logger.
func NewDB(cfg *config.DatabaseConfig, logger *zap.Logger, appLevel string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel(appLevel)),
		TranslateError: true,
		NowFunc:        utcNow,

		DisableAutomaticPing: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path + "?_foreign_keys=on")
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	if cfg.Driver == "sqlite" {
		// single writer
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if cfg.Driver == "sqlite" {
		logger.Info("database pool opened", zap.String("driver", "sqlite"), zap.String("path", cfg.Path))
	} else {
		logger.Info("database pool opened",
			zap.String("driver", "postgres"),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("dbname", cfg.Name),
		)
	}

	return db, nil
}

// Ping reports whether the database currently answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// WaitUntilReachable pings db until it answers or ctx ends. The delay
// between attempts doubles from interval up to maxInterval.
func WaitUntilReachable(ctx context.Context, db *gorm.DB, interval, maxInterval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	if maxInterval < interval {
		maxInterval = interval
	}
	for {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := Ping(pingCtx, db)
		cancel()
		if err == nil {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		interval *= 2
		if interval > maxInterval {
			interval = maxInterval
		}
	}
}

func gormLogLevel(appLevel string) gormlogger.LogLevel {
	lvl, err := zapcore.ParseLevel(appLevel)
	if err != nil {
		return gormlogger.Warn
	}
	switch {
	case lvl <= zapcore.DebugLevel:
		return gormlogger.Info
	case lvl <= zapcore.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
