package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/restapp/backend/internal/auth"
	"github.com/restapp/backend/internal/db"
	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
)

const confirmPath = "/auth/confirm-email/"

// Notifier hands a confirmation mail to background delivery. It must not block
// and reports nothing back to the request that queued the mail.
type Notifier interface {
	Enqueue(msg model.ConfirmationEmail)
}

// ConfirmationService issues and redeems email-confirmation tokens. Tokens are
// not stored; an older token stays valid after a new one is requested.
type ConfirmationService struct {
	users    UserRepository
	codec    *auth.TokenCodec
	notifier Notifier
	ttl      time.Duration
	baseURL  string
	now      func() time.Time
	log      logging.Logger
}

func NewConfirmationService(
	users UserRepository,
	codec *auth.TokenCodec,
	notifier Notifier,
	ttl time.Duration,
	publicBaseURL string,
	log logging.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		users:    users,
		codec:    codec,
		notifier: notifier,
		ttl:      ttl,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		now:      time.Now,
		log:      log.With("component", "confirmation"),
	}
}

// RequestConfirmation queues a confirmation mail for an unconfirmed user.
// It reports false when the user is already confirmed and nothing was sent.
func (s *ConfirmationService) RequestConfirmation(ctx context.Context, user *model.User) (bool, error) {
	if user.IsConfirmed {
		return false, nil
	}

	token, err := s.codec.Issue(auth.Claims{auth.ClaimUserID: user.ID}, s.ttl)
	if err != nil {
		return false, fmt.Errorf("issue confirmation token: %w", err)
	}

	s.notifier.Enqueue(model.ConfirmationEmail{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		VerifyURL: s.VerifyURL(token),
		ExpiresAt: s.now().Add(s.ttl),
	})
	s.log.Info(ctx, "confirmation mail queued", "user_id", user.ID)
	return true, nil
}

// RequestByEmail is RequestConfirmation for /auth/request-email.
func (s *ConfirmationService) RequestByEmail(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("get user: %w", err)
	}
	return s.RequestConfirmation(ctx, user)
}

// Confirm redeems a confirmation token. Redeeming for an already confirmed
// user succeeds with alreadyConfirmed=true and changes nothing.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrVerification, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("get user: %w", err)
	}
	if user.IsConfirmed {
		return true, nil
	}

	changed, err := s.users.ConfirmUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("confirm user: %w", err)
	}
	if !changed {
		// lost a race with another confirmation of the same user
		return true, nil
	}

	s.log.Info(ctx, "email confirmed", "user_id", userID)
	return false, nil
}

func (s *ConfirmationService) VerifyURL(token string) string {
	return s.baseURL + confirmPath + url.PathEscape(token)
}
