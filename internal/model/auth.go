package model

import "time"

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email,max=100"`
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Password  string `json:"password" binding:"required,min=6,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

// TokenRequest is the OAuth2 password-grant style form used by /auth/token.
type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type RequestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AccessToken string `json:"access_token"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IdentityClaim is what the bearer-token resolver attaches to a request.
type IdentityClaim struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HashedPassword string    `json:"-"`
	IsConfirmed    bool      `json:"is_confirmed"`
	Avatar         *string   `json:"avatar"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
