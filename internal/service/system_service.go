package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/model"
	"robolab-portal/pkg/database"
)

// Pinger is anything that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemService runtime diagnostics
type SystemService interface {
	Schema(ctx context.Context) (*database.SchemaReport, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type systemService struct {
	db     *gorm.DB
	redis  Pinger
	store  RegistrationStore
	logger *zap.Logger
}

// NewSystemService creates a SystemService. redis may be nil.
func NewSystemService(db *gorm.DB, redis Pinger, st RegistrationStore, logger *zap.Logger) SystemService {
	return &systemService{db: db, redis: redis, store: st, logger: logger}
}

// Schema compares the live schema with the models.
func (s *systemService) Schema(ctx context.Context) (*database.SchemaReport, error) {
	report, err := database.CheckSchema(ctx, s.db, model.All()...)
	if err != nil {
		s.logger.Error("schema check failed", zap.Error(err))
		return nil, err
	}
	return report, nil
}

func (s *systemService) Health(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp := &dto.HealthResponse{Status: "ok", Database: "up", Redis: "disabled"}

	if err := database.Ping(ctx, s.db); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
	}

	if s.redis != nil {
		resp.Redis = "up"
		if err := s.redis.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Redis = "down"
		}
	}

	if ids, err := s.store.PendingIDs(); err == nil {
		resp.PendingLocal = len(ids)
	}
	return resp
}
