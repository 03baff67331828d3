package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"growt/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn     func(ctx context.Context, token string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			if username != "farmer" {
				t.Errorf("expected normalized username 'farmer', got %q", username)
			}
			return &domain.User{ID: 1, Username: "farmer", PasswordHash: string(hash)}, nil
		},
	}

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			if userID != 1 {
				t.Errorf("expected userID 1, got %d", userID)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			if userAgent != "ua" {
				t.Errorf("expected user agent 'ua', got %q", userAgent)
			}
			if time.Until(expiresAt) > SessionTTL {
				t.Errorf("expiry too far in the future: %v", expiresAt)
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	token, err := svc.Login(ctx, "  Farmer ", password, "ua", "127.0.0.1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "farmer", PasswordHash: string(hash)}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	_, err := svc.Login(context.Background(), "farmer", "wrongpass", "ua", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_SSOUserHasNoPassword(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "sso@farm.example"}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	_, err := svc.Login(context.Background(), "sso@farm.example", "", "ua", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{Token: tok, UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "farmer"}, nil
		},
	}

	svc := NewAuthService(users, sessions)
	user, err := svc.ValidateSession(context.Background(), "validtoken", "ua")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "farmer" {
		t.Errorf("expected username 'farmer', got %s", user.Username)
	}
}

func TestAuthService_ValidateSession_Missing(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	_, err := svc.ValidateSession(context.Background(), "nope", "ua")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	tests := []struct {
		name    string
		session domain.Session
	}{
		{"expired", domain.Session{UserID: 1, UserAgent: "ua", ExpiresAt: time.Now().Add(-time.Hour)}},
		{"user agent changed", domain.Session{UserID: 1, UserAgent: "other", ExpiresAt: time.Now().Add(time.Hour)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			sessions := &mockSessionRepo{
				getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
					s := tc.session
					return &s, nil
				},
				deleteFn: func(ctx context.Context, tok string) error {
					deleted = true
					return nil
				},
			}
			svc := NewAuthService(&mockUserRepo{}, sessions)

			_, err := svc.ValidateSession(context.Background(), "tok", "ua")
			if !errors.Is(err, ErrSessionExpired) {
				t.Errorf("expected ErrSessionExpired, got %v", err)
			}
			if !deleted {
				t.Error("expected session to be deleted")
			}
		})
	}
}

func TestAuthService_CreateInitialUser_Success(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if username != "admin" {
				t.Errorf("expected username 'admin', got %s", username)
			}
			if passwordHash == "" {
				t.Error("password hash should not be empty")
			}
			return &domain.User{ID: 1, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	if err := svc.CreateInitialUser(context.Background(), "admin", "password123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_UsersExist(t *testing.T) {
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 1, nil },
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	err := svc.CreateInitialUser(context.Background(), "admin", "password123")
	if !errors.Is(err, ErrUsersExist) {
		t.Errorf("expected ErrUsersExist, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_ShortPassword(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	err := svc.CreateInitialUser(context.Background(), "admin", "short")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_ValidateForwardAuth_ExistingUser(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 1, Username: "ssouser"}, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			t.Error("existing user must not be re-created")
			return nil, errors.New("unexpected")
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	user, err := svc.ValidateForwardAuth(context.Background(), "ssouser")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "ssouser" {
		t.Errorf("expected username 'ssouser', got %s", user.Username)
	}
}

func TestAuthService_ValidateForwardAuth_NewUser(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if passwordHash != "" {
				t.Error("provisioned users must not get a password")
			}
			return &domain.User{ID: 2, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	user, err := svc.ValidateForwardAuth(context.Background(), "newssouser")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != 2 {
		t.Errorf("expected provisioned user 2, got %d", user.ID)
	}
}

func TestAuthService_ValidateForwardAuth_Empty(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	if _, err := svc.ValidateForwardAuth(context.Background(), " "); err == nil {
		t.Error("expected error for empty header")
	}
}

func TestAuthService_LoginWithUser(t *testing.T) {
	var created int64
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
			created = userID
			return nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions)

	token, err := svc.LoginWithUser(context.Background(), "Rancher@Example.com", "ua", "10.0.0.1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" || created != 1 {
		t.Errorf("expected session for user 1, got token=%q user=%d", token, created)
	}
}
