package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/restapp/backend/internal/auth"
	"github.com/restapp/backend/internal/db"
	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
)

// dummyPassword is hashed once at startup so that logins for unknown emails
// still pay for one bcrypt comparison.
const dummyPassword = "restapp-timing-equalizer"

type UserRepository interface {
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	ConfirmUser(ctx context.Context, userID int64) (bool, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (*model.User, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type AuthService struct {
	users         UserRepository
	hasher        PasswordHasher
	codec         *auth.TokenCodec
	confirmations *ConfirmationService
	accessTTL     time.Duration
	dummyHash     string
	log           logging.Logger
}

func NewAuthService(
	users UserRepository,
	hasher PasswordHasher,
	codec *auth.TokenCodec,
	confirmations *ConfirmationService,
	accessTTL time.Duration,
	log logging.Logger,
) (*AuthService, error) {
	if accessTTL <= 0 {
		return nil, fmt.Errorf("%w: access token ttl must be positive", auth.ErrMisconfigured)
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: hasher unusable: %v", auth.ErrMisconfigured, err)
	}

	return &AuthService{
		users:         users,
		hasher:        hasher,
		codec:         codec,
		confirmations: confirmations,
		accessTTL:     accessTTL,
		dummyHash:     dummyHash,
		log:           log.With("component", "auth"),
	}, nil
}

// SignUp stores a new unconfirmed user and queues the confirmation mail.
// Mail problems never fail the signup.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.User, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if req.Email == "" || firstName == "" || lastName == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, ErrInvalidInput
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, model.User{
		Email:          req.Email,
		FirstName:      firstName,
		LastName:       lastName,
		HashedPassword: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.confirmations.RequestConfirmation(ctx, user); err != nil {
		s.log.Error(ctx, "confirmation request failed after signup", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// Authenticate returns the user for a matching email/password pair. Unknown
// email and wrong password are the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) IssueAccessToken(user *model.User) (string, error) {
	return s.codec.Issue(auth.Claims{
		auth.ClaimUserID: user.ID,
		auth.ClaimEmail:  user.Email,
	}, s.accessTTL)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue access token: %w", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

// ExchangeToken serves the form-based /auth/token endpoint.
func (s *AuthService) ExchangeToken(ctx context.Context, username, password string) (string, error) {
	_, token, err := s.Login(ctx, username, password)
	return token, err
}
