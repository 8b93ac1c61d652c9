package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"flight-booking/internal/data/entity"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	users         repository.UserRepository
	sessions      repository.SessionRepository
	sessionExpiry time.Duration
	log           *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	expiry := 24 * time.Hour
	if config != nil && config.Session.ExpiryHours > 0 {
		expiry = time.Duration(config.Session.ExpiryHours) * time.Hour
	}

	return &authService{
		users:         repo.User,
		sessions:      repo.Session,
		sessionExpiry: expiry,
		log:           log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 2. email must be free
	existingUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.NewInternal("failed to check email", err)
	}
	if existingUser != nil {
		return nil, utils.NewConflict("email already registered")
	}

	// 3. username must be free
	existingUser, err = s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, utils.NewInternal("failed to check username", err)
	}
	if existingUser != nil {
		return nil, utils.NewConflict("username already taken")
	}

	// 4. hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.NewInternal("failed to process password", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     req.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}

	// 5. save user
	if err := s.users.Create(ctx, user); err != nil {
		return nil, utils.NewInternal("failed to create account", err)
	}

	// 6. log in right away; registration stands even if this fails
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, utils.NewValidation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// identifier may be an email or a username
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		return nil, utils.NewInternal("failed to find user", err)
	}
	if user == nil {
		user, err = s.users.FindByUsername(ctx, req.Username)
		if err != nil {
			return nil, utils.NewInternal("failed to find user", err)
		}
	}

	if user == nil {
		s.log.Warn("User not found for login", zap.String("identifier", req.Username))
		return nil, utils.NewUnauthorized("invalid credentials")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, utils.NewUnauthorized("invalid credentials")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, utils.NewForbidden("account is deactivated")
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, utils.NewInternal("failed to create session", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return utils.NewValidation("invalid token format")
	}

	if err := s.sessions.Revoke(ctx, token); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return utils.NewUnauthorized("session not found or already revoked")
		}
		return utils.NewInternal("failed to logout", err)
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessions.CleanExpiredSessions(ctx)
	if err != nil {
		return 0, utils.NewInternal("failed to clean sessions", err)
	}
	if removed > 0 {
		s.log.Info("Expired sessions removed", zap.Int64("count", removed))
	}
	return removed, nil
}

func (s *authService) createSession(ctx context.Context, userID uuid.UUID) (*entity.Session, error) {
	now := time.Now().UTC()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateSessionToken(),
		ExpiresAt: now.Add(s.sessionExpiry),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
