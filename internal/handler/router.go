package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/restapp/backend/docs"
	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/service"
)

// RouterDeps collects what NewRouter wires. Avatars and MeLimiter are
// optional; a nil value leaves that feature off. With no TrustedProxies the
// client IP is always the connection's peer address.
type RouterDeps struct {
	Auth           *service.AuthService
	Confirmations  *service.ConfirmationService
	Identity       *service.IdentityResolver
	Contacts       *service.ContactService
	Avatars        *service.AvatarService
	MeLimiter      RateLimiter
	AllowedOrigins []string
	TrustedProxies []string
	Log            logging.Logger
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Log), CORSMiddleware(deps.AllowedOrigins, true))

	meta := NewMetaHandler(docs.SwaggerInfo)
	r.GET("/ping", meta.Ping)
	r.GET("/", meta.Root)
	r.GET("/openapi.json", meta.OpenAPI)

	authHandler := NewAuthHandler(deps.Auth, deps.Confirmations, deps.Log)
	authGroup := r.Group("/auth")
	authGroup.POST("/sign-up", authHandler.SignUp)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/token", authHandler.Token)
	authGroup.POST("/request-email", authHandler.RequestEmail)
	authGroup.GET("/confirm-email/:token", authHandler.ConfirmEmail)

	requireAuth := AuthMiddleware(deps.Identity)

	meChain := []gin.HandlerFunc{requireAuth}
	if deps.MeLimiter != nil {
		meChain = append(meChain, RateLimitMiddleware(deps.MeLimiter, deps.Log))
	}
	meChain = append(meChain, authHandler.Me)
	r.GET("/me", meChain...)

	if deps.Avatars != nil {
		userHandler := NewUserHandler(deps.Avatars, deps.Log)
		r.PATCH("/users/avatar", requireAuth, userHandler.UpdateAvatar)
	}

	contactHandler := NewContactHandler(deps.Contacts, deps.Log)
	contacts := r.Group("/contacts", requireAuth)
	contacts.POST("", contactHandler.CreateContact)
	contacts.GET("", contactHandler.ListContacts)
	contacts.GET("/:id", contactHandler.GetContact)
	contacts.PUT("/:id", contactHandler.UpdateContact)
	contacts.DELETE("/:id", contactHandler.DeleteContact)

	return r, nil
}
