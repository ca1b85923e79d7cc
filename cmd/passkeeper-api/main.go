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

	"github.com/dimitrije/passkeeper/internal/config"
	"github.com/dimitrije/passkeeper/internal/database"
	"github.com/dimitrije/passkeeper/internal/handlers"
	"github.com/dimitrije/passkeeper/internal/logger"
	authmw "github.com/dimitrije/passkeeper/internal/middleware"
	"github.com/dimitrije/passkeeper/internal/password"
	"github.com/dimitrije/passkeeper/internal/secret"
	"github.com/dimitrije/passkeeper/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.LogLevel)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	cipher, err := secret.New(cfg.Cipher.Mode, cfg.Cipher.KDF)
	if err != nil {
		log.Error("invalid cipher configuration", "mode", cfg.Cipher.Mode, "error", err)
		os.Exit(1)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db, cfg.BcryptCost)
	tokenService := services.NewTokenService(db)
	credentialService := services.NewCredentialService(db, cipher, log)

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService, credentialService)
	credentialHandler := handlers.NewCredentialHandler(credentialService)
	passwordHandler := handlers.NewPasswordHandler(password.NewGenerator(password.CryptoSource{}))

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", authmw.MasterPasswordHeader},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	api.Post("/passwords/generate", passwordHandler.Generate)
	api.Post("/passwords/strength", passwordHandler.Strength)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)
	protected.Get("/users/me", userHandler.GetMe)
	protected.Delete("/credentials/:credentialId", credentialHandler.Delete)

	vault := protected.Group("")
	vault.Use(authmw.MasterPassword(userService))

	vault.Get("/credentials", credentialHandler.List)
	vault.Post("/credentials", credentialHandler.Create)
	vault.Get("/credentials/:credentialId", credentialHandler.Get)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupRefreshTokens(ctx, tokenService, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "cipher", cfg.Cipher.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}

// cleanupRefreshTokens drops expired refresh tokens hourly until ctx ends.
func cleanupRefreshTokens(ctx context.Context, tokens *services.TokenService, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tokens.CleanupExpired(ctx); err != nil {
				log.Warn("failed to clean up expired refresh tokens", "error", err)
			}
		}
	}
}
