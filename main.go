package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restapp/backend/internal/auth"
	"github.com/restapp/backend/internal/client"
	"github.com/restapp/backend/internal/config"
	"github.com/restapp/backend/internal/db"
	"github.com/restapp/backend/internal/handler"
	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/service"
)

// @title Contacts REST API
// @version 1.0
// @description User accounts, email confirmation and per-user contacts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level)
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB 연결 + 마이그레이션
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	store := db.NewPostgres(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// 토큰/해시 설정 오류는 요청 처리 전에 종료
	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}

	// 메일 전송 수단 선택
	var sender service.MailSender
	switch cfg.Mail.Transport {
	case "kafka":
		publisher := client.NewKafkaPublisher(cfg.Kafka)
		defer publisher.Close()
		sender = publisher
	default:
		sender = client.NewSMTPSender(cfg.Mail)
	}
	delivery := service.NewMailDeliveryService(sender, cfg.Mail.Workers, cfg.Mail.QueueSize, logger)

	confirmations := service.NewConfirmationService(
		store, codec, delivery, cfg.Auth.ConfirmationTokenTTL(), cfg.Server.PublicBaseURL, logger)
	authService, err := service.NewAuthService(store, hasher, codec, confirmations, cfg.Auth.AccessTokenTTL(), logger)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	deps := handler.RouterDeps{
		Auth:           authService,
		Confirmations:  confirmations,
		Identity:       service.NewIdentityResolver(codec),
		Contacts:       service.NewContactService(store),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Log:            logger,
	}

	if cfg.Cloudinary.CloudName != "" {
		uploader, err := client.NewCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		deps.Avatars = service.NewAvatarService(store, uploader)
	} else {
		logger.Warn(ctx, "CLD_NAME not set, avatar upload disabled")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		deps.MeLimiter = client.NewRedisLimiter(rdb, "ratelimit:me", cfg.Redis.MeRateLimit, cfg.Redis.MeWindow)
	} else {
		logger.Warn(ctx, "REDIS_ADDR not set, /me rate limiting disabled")
	}

	router, err := handler.NewRouter(deps)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown", "error", err)
	}
	delivery.Close()
}
