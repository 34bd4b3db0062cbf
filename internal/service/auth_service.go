package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	"robolab-portal/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenBlacklist revokes session tokens before they expire.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService administrator authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, remaining time.Duration) error
	Me(ctx context.Context, userID string) (*dto.AdminUserResponse, error)
	// CheckRole asks the role table, not the token, whether userID is an admin.
	CheckRole(ctx context.Context, userID string) (*dto.RoleCheckResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil when Redis is
// not available; logout is then a client-side operation only.
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look up the account
	user, err := s.repo.AdminUser.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load admin user failed", zap.Error(err))
		return nil, err
	}

	// 2. verify the password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. issue the token
	role := ""
	if hasRole(user, model.RoleAdmin) {
		role = model.RoleAdmin
	}
	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Email, role)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("admin logged in", zap.String("user_id", user.ID))
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toAdminUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, remaining); err != nil {
		s.logger.Warn("blacklist token failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.AdminUserResponse, error) {
	user, err := s.repo.AdminUser.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toAdminUserResponse(user)
	return &resp, nil
}

func (s *authService) CheckRole(ctx context.Context, userID string) (*dto.RoleCheckResponse, error) {
	ok, err := s.repo.AdminUser.HasRole(ctx, userID, model.RoleAdmin)
	if err != nil {
		s.logger.Error("role lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.RoleCheckResponse{UserID: userID, Role: model.RoleAdmin, HasRole: ok}, nil
}

func hasRole(u *model.AdminUser, role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

func toAdminUserResponse(u *model.AdminUser) dto.AdminUserResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Role)
	}
	return dto.AdminUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		CreatedAt: u.CreatedAt.UTC().Format(timeLayout),
	}
}
