package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dchesnokov/inkwell/internal/user"
)

type resetToken struct {
	userID    int64
	expiresAt time.Time
}

type mockUserRepo struct {
	nextID int64
	users  []*user.User
	tokens map[string]resetToken
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{tokens: make(map[string]resetToken)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	m.nextID++
	created := *u
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	m.users = append(m.users, &created)
	return &created, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	for _, u := range m.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return errors.New("user not found")
}

func (m *mockUserRepo) CreateResetToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	m.tokens[token] = resetToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *mockUserRepo) ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error) {
	rt, ok := m.tokens[token]
	if !ok {
		return 0, nil
	}
	delete(m.tokens, token)
	if !rt.expiresAt.After(now) {
		return 0, nil
	}
	return rt.userID, nil
}

func signup() *user.SignupRequest {
	return &user.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := user.NewService(newMockUserRepo())

	created, err := svc.Register(context.Background(), signup())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if created.PasswordHash == "correct horse" {
		t.Fatal("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := user.NewService(newMockUserRepo())

	for _, tc := range []struct {
		name  string
		req   user.SignupRequest
		field string
	}{
		{"missing username", user.SignupRequest{Email: "a@b.com", Password: "longenough"}, "username"},
		{"bad username", user.SignupRequest{Username: "no spaces", Email: "a@b.com", Password: "longenough"}, "username"},
		{"bad email", user.SignupRequest{Username: "alice", Email: "not-an-email", Password: "longenough"}, "email"},
		{"short password", user.SignupRequest{Username: "alice", Email: "a@b.com", Password: "short"}, "password"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tc.req)
			var verr *user.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("expected %s field error, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := user.NewService(newMockUserRepo())

	if _, err := svc.Register(context.Background(), signup()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	dup := signup()
	dup.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), dup); !errors.Is(err, user.ErrUsernameAlreadyInUse) {
		t.Errorf("expected ErrUsernameAlreadyInUse, got %v", err)
	}

	dup = signup()
	dup.Username = "alice2"
	if _, err := svc.Register(context.Background(), dup); !errors.Is(err, user.ErrEmailAlreadyInUse) {
		t.Errorf("expected ErrEmailAlreadyInUse, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := user.NewService(newMockUserRepo())

	created, err := svc.Register(context.Background(), signup())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	u, err := svc.Authenticate(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("expected user %d, got %d", created.ID, u.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", "correct horse"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := user.NewService(newMockUserRepo())

	created, err := svc.Register(context.Background(), signup())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), created.ID, "wrong", "new password"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong old password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), created.ID, "correct horse", "new password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "new password"); err != nil {
		t.Errorf("new password should authenticate: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "correct horse"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("old password should be invalid, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newMockUserRepo()
	svc := user.NewService(repo)

	if _, err := svc.Register(context.Background(), signup()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Unknown emails get no token and no error
	token, err := svc.RequestPasswordReset(context.Background(), "unknown@example.com")
	if err != nil || token != "" {
		t.Errorf("expected empty token for unknown email, got %q, %v", token, err)
	}

	token, err = svc.RequestPasswordReset(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token for a known email")
	}

	if err := svc.ResetPassword(context.Background(), token, "brand new pass"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "brand new pass"); err != nil {
		t.Errorf("reset password should authenticate: %v", err)
	}

	// Tokens are single-use
	if err := svc.ResetPassword(context.Background(), token, "another pass"); !errors.Is(err, user.ErrInvalidResetToken) {
		t.Errorf("expected ErrInvalidResetToken on reuse, got %v", err)
	}
}

func TestPasswordResetExpiredToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := user.NewService(repo)

	if _, err := svc.Register(context.Background(), signup()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	repo.tokens["stale"] = resetToken{userID: 1, expiresAt: time.Now().Add(-time.Minute)}

	if err := svc.ResetPassword(context.Background(), "stale", "brand new pass"); !errors.Is(err, user.ErrInvalidResetToken) {
		t.Errorf("expected ErrInvalidResetToken for expired token, got %v", err)
	}
}
