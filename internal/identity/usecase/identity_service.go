package usecase

import (
	"context"
	"fmt"
	"time"

	"bustracker/internal/identity/domain"
	"bustracker/internal/shared/auth"
	"bustracker/internal/shared/logger"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository is what the identity service needs from storage.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByStatus(ctx context.Context, status string) ([]domain.User, error)
	UpdateStatus(ctx context.Context, userID, newStatus string) error
}

// Service implements registration, login and the admin approval flow.
type Service struct {
	users UserRepository
	jwt   *auth.JWTService
	log   *logger.Logger
}

func NewService(users UserRepository, jwt *auth.JWTService, log *logger.Logger) *Service {
	return &Service{users: users, jwt: jwt, log: log}
}

// Register creates a pending account awaiting admin approval.
func (s *Service) Register(ctx context.Context, email, password, role string) (string, error) {
	switch role {
	case domain.RolePassenger, domain.RoleDriver, domain.RoleAdmin:
	default:
		return "", domain.ErrInvalidRole
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return "", domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.StatusPending,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:     "user_registered",
		Message:    id,
		Additional: map[string]any{"role": role},
	})
	return id, nil
}

// Login verifies credentials and returns a token for approved accounts.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsApproved() {
		return "", nil, domain.ErrUserNotApproved
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.Info(logger.Entry{Action: "user_logged_in", Message: user.ID})
	return token, user, nil
}

// Me loads the account behind a validated token.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// PendingUsers lists accounts awaiting approval.
func (s *Service) PendingUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.FindByStatus(ctx, domain.StatusPending)
}

// Approve transitions a pending account to approved.
func (s *Service) Approve(ctx context.Context, userID string) error {
	if err := s.users.UpdateStatus(ctx, userID, domain.StatusApproved); err != nil {
		return err
	}
	s.log.Info(logger.Entry{Action: "user_approved", Message: userID})
	return nil
}

// Reject transitions a pending account to rejected.
func (s *Service) Reject(ctx context.Context, userID string) error {
	if err := s.users.UpdateStatus(ctx, userID, domain.StatusRejected); err != nil {
		return err
	}
	s.log.Info(logger.Entry{Action: "user_rejected", Message: userID})
	return nil
}
