package services

import (
	"context"
	"testing"
	"time"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/config"
	"expensio/internal/core/domain"
	"expensio/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB, *config.Config) {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewSessionRepository(db),
		cfg,
	)
	return svc, db, cfg
}

func registerTestUser(t *testing.T, svc *AuthService, email string) *models.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), &RegisterInput{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc, db, _ := newAuthService(t)

	user := registerTestUser(t, svc, "New.User@Example.COM")
	assert.Equal(t, "new.user@example.com", user.Email)
	assert.Equal(t, "user", user.Role)

	// password never stored in the clear
	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotEqual(t, "password123", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc, "dup@example.com")

	_, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "DUP@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginIssuesSession(t *testing.T) {
	svc, db, cfg := newAuthService(t)
	registerTestUser(t, svc, "login@example.com")

	result, err := svc.Login(context.Background(), &LoginInput{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.SignedToken)

	assert.WithinDuration(t, time.Now().Add(SessionTTL), result.ExpiresAt, 5*time.Second)

	// the signed token references a live session row
	claims, err := jwt.Validate(result.SignedToken, cfg.JWT.Secret)
	require.NoError(t, err)

	var session models.Session
	require.NoError(t, db.Where("token = ?", claims.SessionToken).First(&session).Error)
	assert.Equal(t, result.User.ID, session.UserID)
	assert.WithinDuration(t, result.ExpiresAt, session.ExpiresAt, time.Second)
}

func TestLoginRememberMe(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc, "remember@example.com")

	result, err := svc.Login(context.Background(), &LoginInput{
		Email:      "remember@example.com",
		Password:   "password123",
		RememberMe: true,
	})
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(RememberMeTTL), result.ExpiresAt, 5*time.Second)
}

func TestLoginIdenticalCredentialErrors(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc, "known@example.com")

	_, errUnknown := svc.Login(context.Background(), &LoginInput{
		Email:    "unknown@example.com",
		Password: "password123",
	})
	_, errWrongPass := svc.Login(context.Background(), &LoginInput{
		Email:    "known@example.com",
		Password: "wrong-password",
	})

	require.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPass, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestLoginMissingSecret(t *testing.T) {
	svc, _, cfg := newAuthService(t)
	registerTestUser(t, svc, "nosecret@example.com")
	cfg.JWT.Secret = ""

	_, err := svc.Login(context.Background(), &LoginInput{
		Email:    "nosecret@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrMissingSecret)
}

func TestLoginSweepsExpiredSessions(t *testing.T) {
	svc, db, _ := newAuthService(t)
	user := registerTestUser(t, svc, "sweep@example.com")

	expired := &models.Session{
		Token:     "expiredexpiredexpiredexpiredexpiredexpiredexpiredexpiredexpired",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(expired).Error)

	_, err := svc.Login(context.Background(), &LoginInput{
		Email:    "sweep@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Session{}).Where("token = ?", expired.Token).Count(&count)
	assert.Zero(t, count)
}

func TestVerify(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc, "verify@example.com")

	result, err := svc.Login(context.Background(), &LoginInput{
		Email:    "verify@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	identity, err := svc.Verify(context.Background(), result.SignedToken)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, result.User.ID, identity.UserID)
	assert.Equal(t, "verify@example.com", identity.Email)
	assert.Equal(t, "user", identity.Role)
}

func TestVerifyNegatives(t *testing.T) {
	svc, db, cfg := newAuthService(t)
	user := registerTestUser(t, svc, "negatives@example.com")

	t.Run("empty token", func(t *testing.T) {
		identity, err := svc.Verify(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("garbage token", func(t *testing.T) {
		identity, err := svc.Verify(context.Background(), "not.a.token")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("session row deleted", func(t *testing.T) {
		result, err := svc.Login(context.Background(), &LoginInput{
			Email:    "negatives@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		claims, err := jwt.Validate(result.SignedToken, cfg.JWT.Secret)
		require.NoError(t, err)
		require.NoError(t, db.Where("token = ?", claims.SessionToken).Delete(&models.Session{}).Error)

		identity, err := svc.Verify(context.Background(), result.SignedToken)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("session row expired", func(t *testing.T) {
		sessionToken := "deaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddead"
		require.NoError(t, db.Create(&models.Session{
			Token:     sessionToken,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}).Error)

		signed, err := jwt.Generate(user.ID, user.Email, sessionToken, "user", cfg.JWT.Secret, time.Hour)
		require.NoError(t, err)

		identity, err := svc.Verify(context.Background(), signed)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("missing secret", func(t *testing.T) {
		orig := cfg.JWT.Secret
		cfg.JWT.Secret = ""
		defer func() { cfg.JWT.Secret = orig }()

		_, err := svc.Verify(context.Background(), "some-token")
		assert.ErrorIs(t, err, domain.ErrMissingSecret)
	})
}

func TestLogoutDeletesSession(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerTestUser(t, svc, "logout@example.com")

	result, err := svc.Login(context.Background(), &LoginInput{
		Email:    "logout@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	svc.Logout(context.Background(), result.SignedToken)

	identity, err := svc.Verify(context.Background(), result.SignedToken)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestLogoutToleratesGarbage(t *testing.T) {
	svc, _, _ := newAuthService(t)

	// neither call may panic or error out
	svc.Logout(context.Background(), "")
	svc.Logout(context.Background(), "not.a.token")
}
