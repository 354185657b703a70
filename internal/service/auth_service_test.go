package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type userRepoStub struct {
	byEmail map[string]*models.User
	created []*models.User
	slow    time.Duration
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.slow > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.slow):
		}
	}
	user.ID = "user-1"
	s.created = append(s.created, user)
	if s.byEmail == nil {
		s.byEmail = map[string]*models.User{}
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, nil
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

type tokenRepoStub struct {
	byHash  map[string]*models.RefreshToken
	revoked []string
}

func (s *tokenRepoStub) Create(ctx context.Context, token *models.RefreshToken) error {
	if s.byHash == nil {
		s.byHash = map[string]*models.RefreshToken{}
	}
	token.ID = "token-1"
	s.byHash[token.TokenHash] = token
	return nil
}

func (s *tokenRepoStub) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	if token, ok := s.byHash[hash]; ok {
		cp := *token
		return &cp, nil
	}
	return nil, nil
}

func (s *tokenRepoStub) Revoke(ctx context.Context, id string) error {
	s.revoked = append(s.revoked, id)
	return nil
}

func (s *tokenRepoStub) RevokeAllForUser(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, "all:"+userID)
	return nil
}

func newAuthService(users *userRepoStub, tokens *tokenRepoStub) *AuthService {
	return NewAuthService(users, tokens, &auditRecorderStub{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:   "test-secret",
		AccessTokenExpiry:   time.Hour,
		RefreshTokenExpiry:  24 * time.Hour,
		Issuer:              "portal-api-test",
		RegistrationTimeout: time.Second,
	})
}

func registerPayload() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
		FullName: "Alice Smith",
		Role:     "STUDENT",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	users := &userRepoStub{}
	service := newAuthService(users, &tokenRepoStub{})

	account, err := service.Register(context.Background(), registerPayload())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, models.RoleStudent, account.Role)
	require.Len(t, users.created, 1)
	assert.NotEqual(t, "supersecret", users.created[0].PasswordHash)
}

func TestAuthServiceRegisterRetryAfterLateSuccessConflicts(t *testing.T) {
	// First attempt landed even though the caller gave up; the retry must
	// not create a duplicate account.
	users := &userRepoStub{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "user-1", Email: "alice@example.com", Active: true},
	}}
	service := newAuthService(users, &tokenRepoStub{})

	_, err := service.Register(context.Background(), registerPayload())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, users.created)
}

func TestAuthServiceRegisterTimesOut(t *testing.T) {
	users := &userRepoStub{slow: 5 * time.Second}
	service := NewAuthService(users, &tokenRepoStub{}, &auditRecorderStub{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:   "test-secret",
		AccessTokenExpiry:   time.Hour,
		RefreshTokenExpiry:  24 * time.Hour,
		RegistrationTimeout: 30 * time.Millisecond,
	})

	_, err := service.Register(context.Background(), registerPayload())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTimeout.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginAndRefresh(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &userRepoStub{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash), FullName: "Alice Smith", Role: models.RoleStudent, Active: true},
	}}
	tokens := &tokenRepoStub{}
	service := newAuthService(users, tokens)

	pair, account, err := service.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "supersecret"}, "127.0.0.1", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "user-1", account.ID)

	claims, err := service.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)

	rotated, err := service.Refresh(context.Background(), models.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Contains(t, tokens.revoked, "token-1")
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &userRepoStub{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash), Active: true},
	}}
	service := newAuthService(users, &tokenRepoStub{})

	_, _, err = service.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "wrongsecret"}, "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &userRepoStub{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash), Active: false},
	}}
	service := newAuthService(users, &tokenRepoStub{})

	_, _, err = service.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "supersecret"}, "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}
