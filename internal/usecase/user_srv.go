package usecase

import (
	"context"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/response"
	"car-rental/pkg/apperror"

	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, actor Actor) (*response.UserResponse, error)
	// BecomeOwner upgrades a plain user so they can list cars.
	BecomeOwner(ctx context.Context, actor Actor) (*response.UserResponse, error)
}

type userService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger, o *options) UserService {
	return &userService{
		repo: repo,
		now:  o.clock,
		log:  log.With(zap.String("service", "user")),
	}
}

func (s *userService) GetProfile(ctx context.Context, actor Actor) (*response.UserResponse, error) {
	user, err := s.find(ctx, actor)
	if err != nil {
		return nil, err
	}
	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) BecomeOwner(ctx context.Context, actor Actor) (*response.UserResponse, error) {
	user, err := s.find(ctx, actor)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleUser {
		return nil, apperror.InvalidState("You are already allowed to list cars")
	}

	user.Role = entity.RoleOwner
	user.UpdatedAt = s.now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to change role", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, storeError(err, "User", "")
	}

	s.log.Info("User became owner", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) find(ctx context.Context, actor Actor) (*entity.User, error) {
	user, err := s.repo.User.FindByID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to load user", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, storeError(err, "User", "")
	}
	if user == nil {
		return nil, apperror.NotFound("User")
	}
	return user, nil
}
