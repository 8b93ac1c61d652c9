package usecase

import (
	"context"
	"errors"

	"flight-booking/internal/data/repository"
	"flight-booking/internal/dto/request"
	"flight-booking/internal/dto/response"
	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	log      *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		users:    repo.User,
		sessions: repo.Session,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.users.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternal("failed to get profile", err)
	}
	if user == nil {
		return nil, utils.NewNotFound("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	page := req.Normalized()

	users, err := us.users.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, utils.NewInternal("failed to get users", err)
	}

	total, err := us.users.CountAll(ctx)
	if err != nil {
		return nil, utils.NewInternal("failed to count users", err)
	}

	items := make([]response.UserResponse, len(users))
	for i, user := range users {
		items[i] = response.UserToResponse(user)
	}

	us.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", page.Page),
		zap.Int("per_page", page.PerPage),
	)

	return response.NewPaginatedResponse(items, page.Page, page.PerPage, total), nil
}

// DeleteUser soft-deletes the user and revokes their sessions. Bookings stay.
func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return utils.NewValidation("invalid user ID %s", userID)
	}

	if err := us.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return utils.NewNotFound("user %s not found", userID)
		}
		return utils.NewInternal("failed to delete user", err)
	}

	if err := us.sessions.RevokeAllUserSessions(ctx, id); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user",
			zap.Error(err), zap.String("user_id", userID))
	}

	return nil
}
