// @title Setlistr API
// @version 1.0
// @description Band setlists, song libraries and setlist templates.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/setlistr/setlistr/docs"
	"github.com/setlistr/setlistr/internal/api/handlers"
	"github.com/setlistr/setlistr/internal/api/router"
	"github.com/setlistr/setlistr/internal/billing"
	"github.com/setlistr/setlistr/internal/cache"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/email"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/validator"
	"github.com/setlistr/setlistr/internal/repository/postgres"
	"github.com/setlistr/setlistr/internal/services"
	"github.com/setlistr/setlistr/internal/storage"
	"github.com/setlistr/setlistr/internal/worker"
	"github.com/setlistr/setlistr/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if err := run(cfg, log); err != nil {
		log.ErrorWithErr(err, "Server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(ctx, db, migrationsFS)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"driver":  cfg.Database.Driver,
		"applied": len(applied),
	}).Info("Database ready")

	// Optional member session cache
	var sessionCache member.SessionCache
	var cachePinger handlers.Pinger
	if cfg.Redis.Enabled {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		c := cache.NewSessionCache(client, cfg.Redis.SessionTTL, log)
		sessionCache = c
		cachePinger = c
		log.WithFields(map[string]interface{}{"addr": cfg.Redis.Addr()}).Info("Member session cache enabled")
	}

	files, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	var payments billing.Provider
	if cfg.Billing.Enabled() {
		payments = billing.NewStripeProvider(cfg.Billing, log)
	} else {
		log.Warn("Billing disabled: checkout and webhooks are unavailable")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	bandRepo := postgres.NewBandRepository(db)
	songRepo := postgres.NewSongRepository(db)
	setlistRepo := postgres.NewSetlistRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	memberRepo := postgres.NewMemberRepository(db)

	// Services
	authz := services.NewAuthorizer(bandRepo)
	subscriptionService := services.NewSubscriptionService(userRepo, payments, db, cfg.Billing, cfg.Server.FrontendURL, log)
	userService := services.NewUserService(userRepo, bandRepo, db, cfg.Auth, log)
	bandService := services.NewBandService(bandRepo, authz, log)
	songService := services.NewSongService(songRepo, authz, db, log)
	setlistService := services.NewSetlistService(setlistRepo, songRepo, authz, db, subscriptionService, log)
	templateService := services.NewTemplateService(templateRepo, setlistRepo, songRepo, authz, db, log)
	memberService := services.NewMemberService(memberRepo, bandRepo, authz, db, services.MemberServiceConfig{
		Cache:       sessionCache,
		Mailer:      email.NewSender(cfg.Email, log),
		FrontendURL: cfg.Server.FrontendURL,
	}, log)
	storageService := services.NewStorageService(files, cfg.Storage.URLExpiry, log)

	// Handlers
	val := validator.New()
	h := &router.Handlers{
		Health:        handlers.NewHealthHandler(db.DB, cachePinger, log),
		Auth:          handlers.NewAuthHandler(userService, cfg.Auth, log, val),
		Band:          handlers.NewBandHandler(bandService, log, val),
		Song:          handlers.NewSongHandler(songService, log, val),
		Setlist:       handlers.NewSetlistHandler(setlistService, log, val),
		Template:      handlers.NewTemplateHandler(templateService, log, val),
		Member:        handlers.NewMemberHandler(memberService, log, val),
		MemberSession: handlers.NewMemberSessionHandler(memberService, bandService, songService, setlistService, cfg.Auth.CookieSecure, log, val),
		Billing:       handlers.NewBillingHandler(subscriptionService, log),
		Storage:       handlers.NewStorageHandler(storageService, log, val),
	}

	if cfg.Sweeper.Enabled {
		sweeper, err := worker.NewSubscriptionSweeper(subscriptionService, cfg.Sweeper.Schedule, log)
		if err != nil {
			return err
		}
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, memberService, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
