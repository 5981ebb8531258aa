package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/videotube-backend/internal/config"
	"github.com/AnshRaj112/videotube-backend/internal/database"
	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/logging"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/routes"
	"github.com/AnshRaj112/videotube-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}
	cfg := config.Load()
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	users, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Disconnect()

	audit := openAuditRecorder(ctx, cfg, logger)
	defer database.DisconnectPostgres()

	var limiter *middleware.RedisRateLimiter
	if cfg.RedisURI != "" {
		if err := database.ConnectRedis(ctx, cfg.RedisURI); err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", "error", err)
		} else {
			limiter = middleware.NewRedisRateLimiter(database.RedisClient, logger)
			defer database.DisconnectRedis()
		}
	}

	var media services.MediaUploader
	if cfg.CloudinaryConfigured() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			logger.Warn("failed to initialize Cloudinary, uploads unavailable", "error", err)
		} else {
			media = cld
			logger.Info("cloudinary service initialized")
		}
	} else {
		logger.Warn("cloudinary credentials not found, uploads unavailable")
	}

	tokens, err := services.NewTokenIssuer(services.TokenConfig{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        cfg.TokenIssuer,
	})
	if err != nil {
		return err
	}

	sessions := services.NewSessionManager(users, tokens, services.SessionOptions{
		Audit:                  audit,
		Logger:                 logger,
		RevokeOnPasswordChange: cfg.RevokeSessionsOnPasswordChange,
	})
	userService := services.NewUserService(users, media, audit, logger)

	h := handlers.NewUserHandler(userService, sessions, handlers.Options{
		Logger:         logger,
		Cookies:        handlers.CookiePolicy{Secure: cfg.CookieSecure, SameSite: http.SameSiteStrictMode},
		AccessTTL:      cfg.AccessTokenExpiry,
		RefreshTTL:     cfg.RefreshTokenExpiry,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	router := routes.NewRouter(h, sessions, routes.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		AllowedHost:    cfg.AllowedHost,
		RateLimiter:    limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return serve(ctx, srv, logger)
}

func openUserStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.UserStore, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory user store, data is lost on restart")
		return services.NewMemoryUserStore(), nil
	}

	if err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase); err != nil {
		return nil, err
	}
	store := services.NewMongoUserStore(database.DB.Collection(services.UsersCollection))
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	logger.Info("mongodb user indexes ensured")
	return store, nil
}

func openAuditRecorder(ctx context.Context, cfg *config.Config, logger *slog.Logger) services.AuditRecorder {
	if cfg.PostgresURI == "" {
		return services.NewLogAuditRecorder(logger)
	}
	if err := database.ConnectPostgres(ctx, cfg.PostgresURI); err != nil {
		logger.Warn("postgres unavailable, auth events go to the log", "error", err)
		return services.NewLogAuditRecorder(logger)
	}
	return services.NewPostgresAuditRecorder(database.PostgresDB)
}

// serve runs srv until ctx is cancelled, then shuts down within shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("videotube backend listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
