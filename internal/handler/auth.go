package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
	"github.com/restapp/backend/internal/service"
)

const (
	msgUserCreated      = "User is created successfully."
	msgCheckEmail       = "Check your email for confirmation."
	msgAlreadyConfirmed = "Your email is already confirmed."
	msgEmailConfirmed   = "Your email is confirmed."
	msgCouldNotValidate = "Could not validate user."
)

type AuthHandler struct {
	auth          *service.AuthService
	confirmations *service.ConfirmationService
	log           logging.Logger
}

func NewAuthHandler(auth *service.AuthService, confirmations *service.ConfirmationService, log logging.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, confirmations: confirmations, log: log}
}

// SignUp godoc
// @Summary Sign up for new users
// @Description Creates an unconfirmed user and sends a confirmation email.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.SignUpRequest true "New user"
// @Success 201 {object} model.InfoResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.auth.SignUp(c.Request.Context(), req); err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.InfoResponse{Message: msgUserCreated})
}

// Login godoc
// @Summary Login an existing user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.LoginResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		AccessToken: token,
	})
}

// Token godoc
// @Summary Exchange form credentials for an access token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} model.TokenResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req model.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgCouldNotValidate})
		return
	}

	token, err := h.auth.ExchangeToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgCouldNotValidate})
			return
		}
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// RequestEmail godoc
// @Summary Request email confirmation
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RequestEmailRequest true "Email"
// @Success 200 {object} model.InfoResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/request-email [post]
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req model.RequestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	queued, err := h.confirmations.RequestByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	if !queued {
		c.JSON(http.StatusOK, model.InfoResponse{Message: msgAlreadyConfirmed})
		return
	}
	c.JSON(http.StatusOK, model.InfoResponse{Message: msgCheckEmail})
}

// ConfirmEmail godoc
// @Summary Confirm email
// @Tags auth
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} model.InfoResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /auth/confirm-email/{token} [get]
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	already, err := h.confirmations.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrVerification) || errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification error"})
			return
		}
		h.writeAuthError(c, err)
		return
	}
	if already {
		c.JSON(http.StatusOK, model.InfoResponse{Message: msgAlreadyConfirmed})
		return
	}
	c.JSON(http.StatusOK, model.InfoResponse{Message: msgEmailConfirmed})
}

// Me godoc
// @Summary Get current identity
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.IdentityClaim
// @Failure 401 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to login with provided credentials."})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "User with such email already exists."})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User with such email does not exist."})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		h.log.Error(c.Request.Context(), "auth request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
