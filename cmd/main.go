package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/matchsquad/config"
	"github.com/Dosada05/matchsquad/db"
	"github.com/Dosada05/matchsquad/handlers"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/repositories"
	api "github.com/Dosada05/matchsquad/routes"
	"github.com/Dosada05/matchsquad/services"
	"github.com/Dosada05/matchsquad/storage"
)

const shutdownTimeout = 15 * time.Second

// @title MatchSquad API
// @version 1.0
// @description API панели администрирования MatchSquad: вход по одноразовому коду, организации, участники, приглашения и категории.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Введите "Bearer" и JWT через пробел.
func main() {
	if err := run(); err != nil {
		slog.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("application exited")
}

func run() error {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	otpStore := storage.NewRedisOTPStore(redisClient)

	// Cloudflare R2 опционален: без него не работает только загрузка логотипов
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("init Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, logo upload is disabled")
	}

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	organizationRepo := repositories.NewPostgresOrganizationRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	invitationRepo := repositories.NewPostgresInvitationRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	transactor := repositories.NewPostgresTransactor(dbConn)

	// Сервисы
	guard := services.NewAccessGuard(userRepo, membershipRepo)
	emailService, err := services.NewEmailServiceFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("init email service: %w", err)
	}

	userService := services.NewUserService(userRepo, membershipRepo, guard, logger)
	authService := services.NewAuthService(services.AuthServiceDeps{
		Users:     userRepo,
		OTP:       otpStore,
		Email:     emailService,
		Landing:   userService.LandingPath,
		JWTSecret: []byte(cfg.JWTSecretKey),
		Logger:    logger,
	})
	organizationService := services.NewOrganizationService(organizationRepo, guard, uploader, hub, logger)
	membershipService := services.NewMembershipService(membershipRepo, invitationRepo, guard, uploader, hub, logger)
	invitationService := services.NewInvitationService(services.InvitationServiceDeps{
		Invitations:   invitationRepo,
		Organizations: organizationRepo,
		Users:         userRepo,
		Memberships:   membershipRepo,
		Tx:            transactor,
		Guard:         guard,
		Email:         emailService,
		Events:        hub,
		Logger:        logger,
	})
	categoryService := services.NewCategoryService(categoryRepo, organizationRepo, guard, hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService),
		AdminUser:    handlers.NewAdminUserHandler(userService),
		Organization: handlers.NewOrganizationHandler(organizationService),
		Membership:   handlers.NewMembershipHandler(membershipService),
		Invitation:   handlers.NewInvitationHandler(invitationService),
		Category:     handlers.NewCategoryHandler(categoryService),
		WebSocket:    handlers.NewWebSocketHandler(hub, guard, cfg.CORSAllowedOrigins),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
