package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimUserID    = "user_id"
	ClaimEmail     = "email"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
)

var (
	ErrMisconfigured         = errors.New("auth config invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
)

// Claims is the decoded payload of a token. Numbers decode as json.Number.
type Claims map[string]any

// UserID returns the user_id claim. Absence or a non-integer value is ErrTokenMalformed.
func (c Claims) UserID() (int64, error) {
	switch v := c[ClaimUserID].(type) {
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, ErrTokenMalformed
		}
		return id, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, ErrTokenMalformed
		}
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrTokenMalformed
		}
		return id, nil
	default:
		return 0, ErrTokenMalformed
	}
}

// Email returns the email claim. Absence or an empty value is ErrTokenMalformed.
func (c Claims) Email() (string, error) {
	email, ok := c[ClaimEmail].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return "", ErrTokenMalformed
	}
	return email, nil
}

// TokenCodec signs and verifies compact JWTs with one symmetric secret and one
// HMAC algorithm. Both access and confirmation tokens go through it; callers
// tell them apart by the claims they require.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(secret, algorithm string, opts ...CodecOption) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: signing secret is required", ErrMisconfigured)
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unsupported signing algorithm %q", ErrMisconfigured, algorithm)
	}

	c := &TokenCodec{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs claims plus iat and exp=now+ttl.
func (c *TokenCodec) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := c.now()
	payload := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		payload[k] = v
	}
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = now.Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(c.method, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claims. The error is
// always one of ErrTokenMalformed, ErrTokenInvalidSignature or ErrTokenExpired.
func (c *TokenCodec) Verify(tokenStr string) (Claims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
		jwt.WithJSONNumber(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, classify(err)
	}
	return Claims(claims), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
