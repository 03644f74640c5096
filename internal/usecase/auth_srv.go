package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/apperror"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, meta request.SessionMeta) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, meta request.SessionMeta) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to the caller. Blocked users and
	// revoked or expired sessions are rejected.
	Authenticate(ctx context.Context, token string) (*Actor, error)
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger, o *options) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		now:    o.clock,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, meta request.SessionMeta) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
		return nil, storeError(err, "User", "")
	}
	if existing != nil {
		return nil, apperror.Conflict("User already exists")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Internal("Failed to process password", err)
	}

	user := &entity.User{
		Base:         entity.NewBase(s.now()),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         entity.RoleUser,
		Phone:        req.Phone,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, storeError(err, "User", "User already exists")
	}

	session, err := s.createSession(ctx, user.ID, meta)
	if err != nil {
		s.log.Error("Failed to create session after register", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, storeError(err, "Session", "")
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return authResponse(user, session), nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, meta request.SessionMeta) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("email", email))
		return nil, storeError(err, "User", "")
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid credentials", zap.String("email", email))
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if user.IsBlocked {
		s.log.Warn("Blocked user tried to login", zap.String("user_id", user.ID.String()))
		return nil, apperror.Forbidden("Your account is blocked")
	}

	session, err := s.createSession(ctx, user.ID, meta)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, storeError(err, "Session", "")
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return authResponse(user, session), nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenID, err := uuid.Parse(token)
	if err != nil {
		return apperror.Unauthorized("Invalid token")
	}

	err = s.repo.Session.Revoke(ctx, tokenID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err))
		return storeError(err, "Session", "")
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Actor, error) {
	tokenID, err := uuid.Parse(token)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid token")
	}

	session, err := s.repo.Session.FindValidSession(ctx, tokenID)
	if err != nil {
		s.log.Error("Failed to load session", zap.Error(err))
		return nil, storeError(err, "Session", "")
	}
	if session == nil || !session.IsValid(s.now()) {
		return nil, apperror.Unauthorized("Invalid or expired session")
	}

	user, err := s.repo.User.FindByID(ctx, session.UserID)
	if err != nil {
		s.log.Error("Failed to load session user", zap.Error(err))
		return nil, storeError(err, "User", "")
	}
	if user == nil {
		return nil, apperror.Unauthorized("Invalid or expired session")
	}
	if user.IsBlocked {
		return nil, apperror.Forbidden("Your account is blocked")
	}

	return &Actor{UserID: user.ID, Role: user.Role}, nil
}

func (s *authService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.repo.Session.CleanExpiredSessions(ctx, s.now())
	if err != nil {
		s.log.Error("Failed to clean sessions", zap.Error(err))
		return 0, storeError(err, "Session", "")
	}
	return removed, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) createSession(ctx context.Context, userID uuid.UUID, meta request.SessionMeta) (*entity.Session, error) {
	hours := 24
	if s.config != nil && s.config.Session.ExpiryHours > 0 {
		hours = s.config.Session.ExpiryHours
	}
	now := s.now()

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     userID,
		Token:      utils.GenerateSessionToken(),
		ExpiresAt:  now.Add(time.Duration(hours) * time.Hour),
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IPAddress != "" {
		session.IPAddress = &meta.IPAddress
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func authResponse(user *entity.User, session *entity.Session) *response.AuthResponse {
	return &response.AuthResponse{
		Token:     session.Token.String(),
		ExpiresAt: session.ExpiresAt,
		User:      response.UserToResponse(user),
	}
}
