package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"robolab-portal/config"
	"robolab-portal/internal/model"
	"robolab-portal/pkg/database"
	pkgerrors "robolab-portal/pkg/errors"
)

// prepareDatabase pings the database, applies migrations when enabled and
// verifies the schema. A connectivity failure is returned classified so the
// caller can tell it apart from a broken schema.
func prepareDatabase(ctx context.Context, db *gorm.DB, cfg *config.DatabaseConfig, logger *zap.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := database.Ping(pingCtx, db)
	cancel()
	if err != nil {
		return pkgerrors.Classify(err)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db, logger, model.All()...); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	report, err := database.CheckSchema(checkCtx, db, model.All()...)
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if err := report.Err(); err != nil {
		return err
	}
	logger.Info("database ready")
	return nil
}

// awaitDatabase waits in the background for an unreachable database and
// prepares it once it answers. Submissions taken meanwhile sit in the local
// mirror until an admin runs a sync.
func awaitDatabase(ctx context.Context, db *gorm.DB, cfg *config.DatabaseConfig, logger *zap.Logger) {
	if err := database.WaitUntilReachable(ctx, db, 2*time.Second, time.Minute); err != nil {
		return
	}
	if err := prepareDatabase(ctx, db, cfg, logger); err != nil {
		if pkgerrors.IsConnectivity(err) {
			logger.Warn("database dropped again before it was prepared", zap.Error(err))
			awaitDatabase(ctx, db, cfg, logger)
			return
		}
		logger.Fatal("prepare database", zap.Error(err))
	}
	logger.Info("database reachable again, run POST /api/v1/registrations/sync to push locally stored registrations")
}
