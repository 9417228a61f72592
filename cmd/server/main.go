// Package main runs the guest-list platform HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/categories"
	"github.com/gatherly/backend/internal/emaillogs"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/guests"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/internal/rsvp"
	"github.com/gatherly/backend/pkg/database"
	"github.com/gatherly/backend/pkg/mailer"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/redis"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	var mail mailer.EmailClient
	if cfg.Email.APIKey != "" {
		mail = mailer.NewSendGridClient(cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, emails will be logged instead of sent")
		mail = mailer.NewLogMailer(logger)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Guests
	guestRepo := guests.NewRepository(pool)
	guestHandler := guests.NewHandler(guestRepo, authRepo, s3Client, logger)

	// Categories
	categoryRepo := categories.NewRepository(pool)
	categoryHandler := categories.NewHandler(categoryRepo)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, guestRepo)

	// RSVP workflow
	emailLogsRepo := emaillogs.NewRepository(pool)
	rsvpRepo := rsvp.NewRepository(pool)
	issuer := rsvp.NewIssuer(guestRepo, rsvpRepo, eventRepo, emailLogsRepo, mail, logger)
	rsvpHandler := rsvp.NewHandler(rsvpRepo, guestRepo, eventRepo, issuer, hub, cfg.RSVP.BaseURL, logger)

	// Email logs and reminder resends (delivery runs in the worker)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo, eventRepo, issuer, jobQueue, cfg.RSVP.BaseURL, logger)

	jwtValidate := func(token string) (userID string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: invitation links opened by guests (no account, no JWT)
	router.GET("/rsvp/:token", rsvpHandler.Resolve)
	router.POST("/rsvp/:token", rsvpHandler.Respond)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin only)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)
		api.PATCH("/users/:id/plan", middleware.RequireRole("admin"), authHandler.UpdatePlan)

		// Guests
		api.POST("/guests", guestHandler.Create)
		api.GET("/guests", guestHandler.List)
		api.GET("/guests/:id", guestHandler.GetByID)
		api.PATCH("/guests/:id", guestHandler.Update)
		api.DELETE("/guests/:id", guestHandler.Delete)
		api.POST("/guests/import", guestHandler.Import)
		api.GET("/guests/export", guestHandler.Export)

		// Categories
		api.POST("/categories", categoryHandler.Create)
		api.GET("/categories", categoryHandler.List)
		api.DELETE("/categories/:id", categoryHandler.Delete)

		// Events
		api.POST("/events", eventHandler.Create)
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.POST("/events/:id/guests", eventHandler.AttachGuests)
		api.GET("/events/:id/guests", eventHandler.ListGuests)
		api.DELETE("/events/:id/guests/:guestId", eventHandler.DetachGuest)

		// Invitations and email history
		api.POST("/events/:id/invites", rsvpHandler.SendInvites)
		api.GET("/events/:id/emails", emailLogsHandler.ListByEvent)
		api.POST("/events/:id/emails/resend", emailLogsHandler.Resend)
	}

	// WebSocket dashboard feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
