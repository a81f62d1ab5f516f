package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"bustracker/internal/identity/domain"
	"bustracker/internal/shared/auth"
	"bustracker/internal/shared/config"
	"bustracker/internal/shared/logger"
)

// fakeUserRepo is an in-memory stand-in for the accounts store.
type fakeUserRepo struct {
	users     map[string]*domain.User // by id
	createErr error
	nextID    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	cp := *u
	cp.ID = string(rune('a' + f.nextID - 1))
	f.users[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByStatus(_ context.Context, status string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Status == status {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateStatus(_ context.Context, userID, newStatus string) error {
	u, ok := f.users[userID]
	if !ok || u.Status != domain.StatusPending {
		return domain.ErrAlreadyProcessed
	}
	u.Status = newStatus
	return nil
}

func newIdentityFixture() (*fakeUserRepo, *Service) {
	repo := newFakeUserRepo()
	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 30})
	svc := NewService(repo, jwtSvc, logger.NewLoggerWithWriter("identity-test", io.Discard))
	return repo, svc
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newIdentityFixture()

	if _, err := svc.Register(context.Background(), "rider@example.com", "secret", domain.RolePassenger); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "rider@example.com", "other", domain.RolePassenger)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRaceSurfacesEmailTaken(t *testing.T) {
	// Two registrations can pass the FindByEmail check concurrently; the
	// store then rejects the losing insert as a taken email, and that must
	// reach the caller unchanged rather than as an opaque failure.
	repo, svc := newIdentityFixture()
	repo.createErr = domain.ErrEmailTaken

	_, err := svc.Register(context.Background(), "rider@example.com", "secret", domain.RolePassenger)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	_, svc := newIdentityFixture()

	_, err := svc.Register(context.Background(), "x@example.com", "secret", "superuser")
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("error = %v, want ErrInvalidRole", err)
	}
}

func TestLoginRequiresApproval(t *testing.T) {
	_, svc := newIdentityFixture()

	id, err := svc.Register(context.Background(), "rider@example.com", "secret", domain.RolePassenger)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "rider@example.com", "secret"); !errors.Is(err, domain.ErrUserNotApproved) {
		t.Fatalf("pending login error = %v, want ErrUserNotApproved", err)
	}

	if err := svc.Approve(context.Background(), id); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := svc.Approve(context.Background(), id); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("second Approve error = %v, want ErrAlreadyProcessed", err)
	}

	token, user, err := svc.Login(context.Background(), "rider@example.com", "secret")
	if err != nil {
		t.Fatalf("approved login: %v", err)
	}
	if token == "" || user.ID != id {
		t.Errorf("login result = %q, %+v", token, user)
	}
	if user.CreatedAt.After(time.Now().UTC()) {
		t.Errorf("CreatedAt in the future: %v", user.CreatedAt)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, svc := newIdentityFixture()

	id, err := svc.Register(context.Background(), "rider@example.com", "secret", domain.RolePassenger)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Approve(context.Background(), id); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "rider@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "secret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}
