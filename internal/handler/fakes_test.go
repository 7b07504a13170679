package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/restapp/backend/internal/auth"
	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
	"github.com/restapp/backend/internal/service"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func (r *memUsers) CreateUser(_ context.Context, user model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	r.nextID++
	user.ID = r.nextID
	stored := user
	r.users[user.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUsers) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *u
	return &out, nil
}

func (r *memUsers) ConfirmUser(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.IsConfirmed {
		return false, nil
	}
	u.IsConfirmed = true
	return true, nil
}

func (r *memUsers) UpdateAvatar(_ context.Context, id int64, avatarURL string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Avatar = &avatarURL
	out := *u
	return &out, nil
}

func (r *memUsers) byEmail(email string) model.User {
	u, _ := r.GetUserByEmail(context.Background(), email)
	return *u
}

type memContacts struct {
	nextID   int64
	contacts map[int64]model.Contact
}

func (r *memContacts) CreateContact(_ context.Context, ownerID int64, req model.ContactRequest) (*model.Contact, error) {
	for _, c := range r.contacts {
		if req.Email != "" && c.Email == req.Email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	r.nextID++
	c := model.Contact{ID: r.nextID, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone, Birthday: req.Birthday, OwnerID: ownerID}
	r.contacts[c.ID] = c
	return &c, nil
}

func (r *memContacts) ListContacts(_ context.Context, ownerID int64, filter model.ContactFilter) ([]model.Contact, error) {
	var out []model.Contact
	for _, c := range r.contacts {
		if c.OwnerID != ownerID {
			continue
		}
		if filter.Name != "" && !strings.Contains(c.FirstName+" "+c.LastName, filter.Name) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memContacts) GetContact(_ context.Context, ownerID, id int64) (*model.Contact, error) {
	c, ok := r.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r *memContacts) UpdateContact(_ context.Context, ownerID, id int64, req model.ContactRequest) (*model.Contact, error) {
	c, ok := r.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, pgx.ErrNoRows
	}
	c.FirstName, c.LastName, c.Email = req.FirstName, req.LastName, req.Email
	r.contacts[id] = c
	return &c, nil
}

func (r *memContacts) DeleteContact(_ context.Context, ownerID, id int64) (bool, error) {
	c, ok := r.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return false, nil
	}
	delete(r.contacts, id)
	return true, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []model.ConfirmationEmail
}

func (n *recordingNotifier) Enqueue(msg model.ConfirmationEmail) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) last(t *testing.T) model.ConfirmationEmail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.msgs)
	return n.msgs[len(n.msgs)-1]
}

type stubUploader struct {
	url string
	err error
}

func (u *stubUploader) UploadAvatar(_ context.Context, _ int64, file io.Reader, _, _ int) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	_, _ = io.Copy(io.Discard, file)
	return u.url, nil
}

type stubLimiter struct {
	mu    sync.Mutex
	limit int
	hits  map[string]int
	err   error
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits[key]++
	return l.hits[key] <= l.limit, nil
}

type testApp struct {
	router   *gin.Engine
	users    *memUsers
	notifier *recordingNotifier
	codec    *auth.TokenCodec
	now      time.Time
	authSvc  *service.AuthService
}

type appOption func(*RouterDeps, *memUsers)

func withLimiter(l RateLimiter) appOption {
	return func(d *RouterDeps, _ *memUsers) { d.MeLimiter = l }
}

func withTrustedProxies(proxies ...string) appOption {
	return func(d *RouterDeps, _ *memUsers) { d.TrustedProxies = proxies }
}

func withUploader(u service.AvatarUploader) appOption {
	return func(d *RouterDeps, users *memUsers) {
		d.Avatars = service.NewAvatarService(users, u)
	}
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		users:    &memUsers{users: map[int64]*model.User{}},
		notifier: &recordingNotifier{},
		now:      time.Now(),
	}
	clock := func() time.Time { return app.now }

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	app.codec, err = auth.NewTokenCodec("handler-secret", "HS256", auth.WithClock(clock))
	require.NoError(t, err)

	log := logging.Discard()
	confirmations := service.NewConfirmationService(app.users, app.codec, app.notifier, 7*24*time.Hour, "http://api.test", log)
	app.authSvc, err = service.NewAuthService(app.users, hasher, app.codec, confirmations, 15*time.Minute, log)
	require.NoError(t, err)

	deps := RouterDeps{
		Auth:          app.authSvc,
		Confirmations: confirmations,
		Identity:      service.NewIdentityResolver(app.codec),
		Contacts:      service.NewContactService(&memContacts{contacts: map[int64]model.Contact{}}),
		Log:           log,
	}
	for _, opt := range opts {
		opt(&deps, app.users)
	}
	app.router, err = NewRouter(deps)
	require.NoError(t, err)
	return app
}

func (a *testApp) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) signUp(t *testing.T, email, password string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/auth/sign-up",
		`{"email":"`+email+`","first_name":"Alice","last_name":"Smith","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
