package service

import (
	"github.com/restapp/backend/internal/auth"
	"github.com/restapp/backend/internal/model"
)

// IdentityResolver turns a bearer token into the caller's identity. It never
// reads the database, so a token stays usable for its whole lifetime even if
// the user row changes.
type IdentityResolver struct {
	codec *auth.TokenCodec
}

func NewIdentityResolver(codec *auth.TokenCodec) *IdentityResolver {
	return &IdentityResolver{codec: codec}
}

// Resolve requires both user_id and email, which rejects confirmation tokens.
// Every failure is ErrUnauthorized.
func (r *IdentityResolver) Resolve(token string) (*model.IdentityClaim, error) {
	claims, err := r.codec.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	email, err := claims.Email()
	if err != nil {
		return nil, ErrUnauthorized
	}
	return &model.IdentityClaim{UserID: userID, Email: email}, nil
}
