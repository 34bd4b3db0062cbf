package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"robolab-portal/config"
	"robolab-portal/internal/repository"
	"robolab-portal/pkg/jwt"
)

// Service aggregates every business service.
type Service struct {
	Auth         AuthService
	Registration RegistrationService
	TimeSlot     TimeSlotService
	Schedule     ScheduleService
	Payment      PaymentService
	System       SystemService
}

// Deps are the collaborators NewService wires together. Blacklist and Redis
// are nil when Redis is not configured.
type Deps struct {
	DB        *gorm.DB
	Store     RegistrationStore
	Notifier  *Notifier
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Redis     Pinger
}

// NewService creates the Service aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(repo, deps.JWT, deps.Blacklist, logger),
		Registration: NewRegistrationService(cfg, deps.Store, repo, deps.Notifier, logger),
		TimeSlot:     NewTimeSlotService(repo, logger),
		Schedule:     NewScheduleService(repo, logger),
		Payment:      NewPaymentService(cfg, repo, logger),
		System:       NewSystemService(deps.DB, deps.Redis, deps.Store, logger),
	}
}
