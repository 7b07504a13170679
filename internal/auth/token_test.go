package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec("super-secret", "HS256", WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 4, 8, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	tok, err := codec.Issue(Claims{ClaimUserID: int64(42), ClaimEmail: "alice@example.com"}, 15*time.Minute)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	email, err := claims.Email()
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	exp, err := jwt.MapClaims(claims).GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(15*time.Minute).Unix(), exp.Unix())

	iat, err := jwt.MapClaims(claims).GetIssuedAt()
	require.NoError(t, err)
	assert.Equal(t, clock.now.Unix(), iat.Unix())
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 4, 8, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	tok, err := codec.Issue(Claims{ClaimUserID: int64(1)}, time.Minute)
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	_, err = codec.Verify(tok)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	other, err := NewTokenCodec("another-secret", "HS256", WithClock(clock.Now))
	require.NoError(t, err)

	tok, err := other.Issue(Claims{ClaimUserID: int64(1)}, time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalidSignature)
}

func TestTokenCodec_TamperedToken(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Now()}
	codec := newTestCodec(t, clock)

	tok, err := codec.Issue(Claims{ClaimUserID: int64(7), ClaimEmail: "bob@example.com"}, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	tamperedPayload := strings.Join([]string{parts[0], flipChar(parts[1], len(parts[1])/2), parts[2]}, ".")
	tamperedSignature := strings.Join([]string{parts[0], parts[1], flipChar(parts[2], len(parts[2])/2)}, ".")

	for name, bad := range map[string]string{"payload": tamperedPayload, "signature": tamperedSignature} {
		_, err := codec.Verify(bad)
		require.Error(t, err, name)
		assert.True(t,
			errors.Is(err, ErrTokenInvalidSignature) || errors.Is(err, ErrTokenMalformed),
			"%s: unexpected error %v", name, err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t, &fakeClock{now: time.Now()})

	for _, bad := range []string{"", "not-a-jwt", "not.a.jwt", "a.b.c.d"} {
		_, err := codec.Verify(bad)
		require.ErrorIs(t, err, ErrTokenMalformed, "input %q", bad)
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t, &fakeClock{now: time.Now()})
	exp := time.Now().Add(time.Hour).Unix()

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1, "exp": exp}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Verify(unsigned)
	require.ErrorIs(t, err, ErrTokenInvalidSignature)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"user_id": 1, "exp": exp}).
		SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = codec.Verify(hs512)
	require.ErrorIs(t, err, ErrTokenInvalidSignature)
}

func TestTokenCodec_RequiresExpiry(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t, &fakeClock{now: time.Now()})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}).
		SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewTokenCodec_Misconfigured(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec("", "HS256")
	require.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewTokenCodec("secret", "RS256")
	require.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewTokenCodec("secret", "nope")
	require.ErrorIs(t, err, ErrMisconfigured)

	codec, err := NewTokenCodec("secret", "")
	require.NoError(t, err)
	assert.Equal(t, "HS256", codec.method.Alg())
}

func TestClaims_Accessors(t *testing.T) {
	t.Parallel()

	_, err := Claims{}.UserID()
	require.ErrorIs(t, err, ErrTokenMalformed)

	_, err = Claims{ClaimUserID: "abc"}.UserID()
	require.ErrorIs(t, err, ErrTokenMalformed)

	_, err = Claims{ClaimUserID: 1.5}.UserID()
	require.ErrorIs(t, err, ErrTokenMalformed)

	id, err := Claims{ClaimUserID: "12"}.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = Claims{ClaimEmail: ""}.Email()
	require.ErrorIs(t, err, ErrTokenMalformed)

	_, err = Claims{ClaimEmail: 5}.Email()
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
