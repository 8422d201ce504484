package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/config"
	"expensio/internal/core/domain"
	"expensio/internal/pkg/jwt"
	"expensio/internal/pkg/password"
	"expensio/internal/pkg/token"

	"gorm.io/gorm"
)

// Session lifetimes. The remember-me flag at login picks between them; the
// signed token and the cookie both expire together with the session row.
const (
	SessionTTL    = 12 * time.Hour
	RememberMeTTL = 12 * 24 * time.Hour
)

// Auth errors
var (
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Identity is the authenticated caller of one request, resolved from a valid
// token + session pair. Owned by the request; never cached across requests.
type Identity struct {
	UserID       uint
	Email        string
	SessionToken string
	Role         string
}

// AuthService handles session issuance, verification and cleanup
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	cfg         *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=100"`
}

// LoginInput represents login input
type LoginInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResult represents a successful login
type LoginResult struct {
	User        *models.UserResponse
	SignedToken string
	ExpiresAt   time.Time
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hashedPassword,
		Name:     strings.TrimSpace(input.Name),
		Role:     "user",
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("user registered: %s", user.Email)
	return user.ToResponse(), nil
}

// Login authenticates a user and issues a new session. Both unknown email and
// wrong password map to the same ErrInvalidCredentials — the identical error
// is an anti-enumeration policy, not an accident.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	if s.cfg.JWT.Secret == "" {
		return nil, domain.ErrMissingSecret
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// Sweep this user's expired sessions. Best-effort: a failure here never
	// blocks the login.
	if err := s.sessionRepo.DeleteExpiredByUserID(ctx, user.ID); err != nil {
		log.Printf("session sweep failed for user %d: %v", user.ID, err)
	}

	ttl := SessionTTL
	if input.RememberMe {
		ttl = RememberMeTTL
	}

	sessionToken, err := token.NewSessionToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(ttl)
	session := &models.Session{
		Token:     sessionToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	signed, err := jwt.Generate(user.ID, user.Email, sessionToken, user.Role, s.cfg.JWT.Secret, ttl)
	if err != nil {
		return nil, err
	}

	log.Printf("user logged in: %s", user.Email)

	return &LoginResult{
		User:        user.ToResponse(),
		SignedToken: signed,
		ExpiresAt:   expiresAt,
	}, nil
}

// Verify resolves a signed token to an authenticated identity. A nil identity
// with a nil error means "not authenticated" — a valid negative result, not a
// failure. The backing session row must exist and be unexpired; every request
// re-verifies, nothing is cached.
func (s *AuthService) Verify(ctx context.Context, signedToken string) (*Identity, error) {
	if signedToken == "" {
		return nil, nil
	}
	if s.cfg.JWT.Secret == "" {
		return nil, domain.ErrMissingSecret
	}

	claims, err := jwt.Validate(signedToken, s.cfg.JWT.Secret)
	if err != nil {
		return nil, nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, claims.SessionToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if session.IsExpired() || session.UserID != claims.UserID {
		return nil, nil
	}

	return &Identity{
		UserID:       claims.UserID,
		Email:        claims.Email,
		SessionToken: claims.SessionToken,
		Role:         claims.Role,
	}, nil
}

// Logout deletes the session backing the given token plus any globally
// expired rows. Every step is best-effort; the caller clears the cookie
// regardless of the outcome here.
func (s *AuthService) Logout(ctx context.Context, signedToken string) {
	if signedToken != "" && s.cfg.JWT.Secret != "" {
		if claims, err := jwt.Validate(signedToken, s.cfg.JWT.Secret); err == nil {
			if err := s.sessionRepo.DeleteByToken(ctx, claims.SessionToken); err != nil {
				log.Printf("session delete failed on logout: %v", err)
			}
		}
	}

	if err := s.sessionRepo.DeleteExpired(ctx); err != nil {
		log.Printf("expired session sweep failed on logout: %v", err)
	}

	log.Printf("user logged out")
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
