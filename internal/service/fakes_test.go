package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/restapp/backend/internal/auth"
	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[int64]*model.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	r.nextID++
	user.ID = r.nextID
	stored := user
	r.byID[user.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) ConfirmUser(_ context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok || u.IsConfirmed {
		return false, nil
	}
	u.IsConfirmed = true
	return true, nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, userID int64, avatarURL string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Avatar = &avatarURL
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) get(id int64) model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.byID[id]
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []model.ConfirmationEmail
}

func (n *fakeNotifier) Enqueue(msg model.ConfirmationEmail) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *fakeNotifier) sent() []model.ConfirmationEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.ConfirmationEmail(nil), n.msgs...)
}

// countingHasher wraps a bcrypt hasher and counts Verify calls.
type countingHasher struct {
	*auth.BcryptHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.BcryptHasher.Verify(plaintext, digest)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeUploader struct {
	url   string
	err   error
	calls int
	body  string
}

func (u *fakeUploader) UploadAvatar(_ context.Context, _ int64, file io.Reader, _, _ int) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.body = string(b)
	return u.url, nil
}

var errBoom = errors.New("boom")

type testEnv struct {
	users    *fakeUserRepo
	notifier *fakeNotifier
	hasher   *countingHasher
	clock    *fakeClock
	codec    *auth.TokenCodec
	confirm  *ConfirmationService
	auth     *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := auth.NewTokenCodec("test-secret", "HS256", auth.WithClock(clock.Now))
	require.NoError(t, err)

	env := &testEnv{
		users:    newFakeUserRepo(),
		notifier: &fakeNotifier{},
		hasher:   &countingHasher{BcryptHasher: hasher},
		clock:    clock,
		codec:    codec,
	}
	env.confirm = NewConfirmationService(env.users, codec, env.notifier, 7*24*time.Hour, "http://api.test/", logging.Discard())
	env.confirm.now = clock.Now

	env.auth, err = NewAuthService(env.users, env.hasher, codec, env.confirm, 15*time.Minute, logging.Discard())
	require.NoError(t, err)
	return env
}

func (e *testEnv) signUp(t *testing.T, email, password string) *model.User {
	t.Helper()
	user, err := e.auth.SignUp(context.Background(), model.SignUpRequest{
		Email:     email,
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  password,
	})
	require.NoError(t, err)
	return user
}

// tokenFromURL extracts the confirmation token from a verify URL.
func tokenFromURL(t *testing.T, verifyURL string) string {
	t.Helper()
	idx := strings.LastIndex(verifyURL, confirmPath)
	require.GreaterOrEqual(t, idx, 0)
	return verifyURL[idx+len(confirmPath):]
}
